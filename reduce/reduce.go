// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package reduce provides boolean reductions and element-wise boolean operators.
//
// # Basic Usage
//
//	x, _ := tensor.FromBool(data, tensor.Shape{5, 6, 10})
//
//	y, err := reduce.Any(x, []int{-1}, false) // shape (5, 6)
//	z, err := reduce.Any(x, []int{1}, true)   // shape (5, 1, 10)
//
// Axes may be negative and are accepted in any order. An out-of-range or
// duplicate axis returns ErrInvalidAxis and no output.
package reduce

import (
	"github.com/born-ml/opref/internal/reduce"
	"github.com/born-ml/opref/tensor"
)

// Errors returned by the reductions.
var (
	ErrInvalidAxis = reduce.ErrInvalidAxis
	ErrDType       = reduce.ErrDType
)

// Any reduces a bool tensor with logical OR over axes.
func Any(x *tensor.RawTensor, axes []int, keepDims bool) (*tensor.RawTensor, error) {
	return reduce.Any(x, axes, keepDims)
}

// All reduces a bool tensor with logical AND over axes.
func All(x *tensor.RawTensor, axes []int, keepDims bool) (*tensor.RawTensor, error) {
	return reduce.All(x, axes, keepDims)
}

// OutputShape returns the shape a reduction over normalized axes produces.
func OutputShape(shape tensor.Shape, axes []int, keepDims bool) tensor.Shape {
	return reduce.OutputShape(shape, axes, keepDims)
}

// Or computes a || b with NumPy broadcasting.
func Or(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return reduce.Or(a, b)
}

// And computes a && b with NumPy broadcasting.
func And(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return reduce.And(a, b)
}

// Not computes !x.
func Not(x *tensor.RawTensor) (*tensor.RawTensor, error) {
	return reduce.Not(x)
}
