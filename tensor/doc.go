// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense tensor type shared by the opref operators.
//
// # Overview
//
// A RawTensor is a row-major byte buffer with a Shape and a DataType. This package provides:
//   - Constructors from typed slices (FromFloat32, FromFloat64, FromFloat16, FromBool)
//   - Zero-copy typed views (AsFloat32, AsFloat64, AsFloat16, AsBool)
//   - Seeded random fills for test inputs (Uniform, RandBool)
//   - Axis normalization and NumPy-style broadcasting rules
//
// # Basic Usage
//
//	import "github.com/born-ml/opref/tensor"
//
//	func main() {
//	    x, _ := tensor.FromBool([]bool{true, false, false, false}, tensor.Shape{2, 2})
//	    axes, _ := tensor.NormalizeAxes([]int{-1}, x.Shape().Rank()) // [1]
//	}
//
// # Supported Data Types
//
//   - Float16 (IEEE 754 half precision, via github.com/x448/float16)
//   - Float32, Float64
//   - Bool
//
// Operators never modify their input tensors; every output is freshly allocated.
package tensor
