// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/x448/float16"

	"github.com/born-ml/opref/internal/tensor"
)

// RawTensor is the dense tensor representation.
//
// RawTensor provides:
//   - Shape and type information via Shape(), DType()
//   - Type-safe data access via AsFloat32(), AsBool(), etc.
//   - Deep copies via Clone()
//
// Example:
//
//	raw, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
//	data := raw.AsFloat32()  // Type-safe access
//	clone := raw.Clone()     // Independent buffer
type RawTensor = tensor.RawTensor

// NewRaw allocates a zero-filled tensor.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// FromFloat32 creates a float32 tensor holding a copy of data.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat32(data, shape)
}

// FromFloat64 creates a float64 tensor holding a copy of data.
func FromFloat64(data []float64, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat64(data, shape)
}

// FromFloat16 creates a float16 tensor holding a copy of data.
func FromFloat16(data []float16.Float16, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat16(data, shape)
}

// FromBool creates a bool tensor holding a copy of data.
func FromBool(data []bool, shape Shape) (*RawTensor, error) {
	return tensor.FromBool(data, shape)
}

// Zeros creates a zero-filled tensor. It panics on an invalid shape.
func Zeros(shape Shape, dtype DataType) *RawTensor {
	return tensor.Zeros(shape, dtype)
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float64, dtype DataType) (*RawTensor, error) {
	return tensor.Full(shape, value, dtype)
}

// Uniform creates a floating point tensor with values drawn from [lo, hi).
func Uniform(shape Shape, lo, hi float64, dtype DataType, rng *rand.Rand) (*RawTensor, error) {
	return tensor.Uniform(shape, lo, hi, dtype, rng)
}

// RandBool creates a bool tensor with fair random values.
func RandBool(shape Shape, rng *rand.Rand) (*RawTensor, error) {
	return tensor.RandBool(shape, rng)
}
