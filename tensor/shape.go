// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/opref/internal/tensor"
)

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// DataType identifies the element type of a tensor.
type DataType = tensor.DataType

// Supported data types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
	Float16 = tensor.Float16
	Bool    = tensor.Bool
)

// Errors returned by shape and dtype checks.
var (
	ErrInvalidShape = tensor.ErrInvalidShape
	ErrInvalidAxis  = tensor.ErrInvalidAxis
	ErrDType        = tensor.ErrDType
)

// NormalizeAxes maps negative axes to rank+axis and returns them sorted.
// Out-of-range or duplicate axes return ErrInvalidAxis.
//
// Example:
//
//	axes, _ := tensor.NormalizeAxes([]int{-1, 0}, 3) // [0 2]
func NormalizeAxes(axes []int, rank int) ([]int, error) {
	return tensor.NormalizeAxes(axes, rank)
}

// BroadcastShapes computes the NumPy broadcast of a and b.
// The bool result reports whether broadcasting was needed.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// ParseDataType is the inverse of DataType.String.
func ParseDataType(s string) (DataType, error) {
	return tensor.ParseDataType(s)
}
