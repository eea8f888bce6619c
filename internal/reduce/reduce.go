// Package reduce implements boolean reductions and element-wise boolean ops over RawTensors.
package reduce

import (
	"fmt"

	"github.com/born-ml/opref/internal/tensor"
)

// Errors returned by the reductions. They alias the tensor package sentinels so
// callers can match with errors.Is against either.
var (
	ErrInvalidAxis = tensor.ErrInvalidAxis
	ErrDType       = tensor.ErrDType
)

// Any computes the logical OR of x over the given axes.
//
// Parameters:
//   - axes: dimensions to reduce (supports negative indexing: -1 = last dim); must be non-empty
//   - keepDims: if true, keep each reduced dimension with size 1; if false, remove it
//
// Example:
//
//	x, _ := tensor.RandBool(tensor.Shape{5, 6, 10}, rng)
//	y, _ := reduce.Any(x, []int{-1}, false) // shape: [5, 6]
//	z, _ := reduce.Any(x, []int{1}, true)   // shape: [5, 1, 10]
func Any(x *tensor.RawTensor, axes []int, keepDims bool) (*tensor.RawTensor, error) {
	return boolReduce("any", x, axes, keepDims, false, func(acc, v bool) bool { return acc || v })
}

// All computes the logical AND of x over the given axes.
// Axis handling and output shape follow Any.
func All(x *tensor.RawTensor, axes []int, keepDims bool) (*tensor.RawTensor, error) {
	return boolReduce("all", x, axes, keepDims, true, func(acc, v bool) bool { return acc && v })
}

// OutputShape returns the shape produced by reducing shape over axes.
// axes must already be normalized (see tensor.NormalizeAxes).
func OutputShape(shape tensor.Shape, axes []int, keepDims bool) tensor.Shape {
	reduced := make(map[int]bool, len(axes))
	for _, a := range axes {
		reduced[a] = true
	}

	out := make(tensor.Shape, 0, len(shape))
	for d, size := range shape {
		switch {
		case !reduced[d]:
			out = append(out, size)
		case keepDims:
			out = append(out, 1)
		}
	}
	return out
}

func boolReduce(
	name string,
	x *tensor.RawTensor,
	axes []int,
	keepDims bool,
	identity bool,
	combine func(acc, v bool) bool,
) (*tensor.RawTensor, error) {
	if x == nil {
		return nil, fmt.Errorf("reduce_%s: nil input", name)
	}
	if x.DType() != tensor.Bool {
		return nil, fmt.Errorf("reduce_%s: %w: input is %s, want bool", name, ErrDType, x.DType())
	}
	if len(axes) == 0 {
		return nil, fmt.Errorf("reduce_%s: %w: at least one axis is required", name, ErrInvalidAxis)
	}

	shape := x.Shape()
	normalized, err := tensor.NormalizeAxes(axes, len(shape))
	if err != nil {
		return nil, fmt.Errorf("reduce_%s: %w", name, err)
	}

	// Dropping size-1 dims leaves the row-major layout unchanged, so the
	// reduction always runs against the keep-dims shape.
	keepShape := OutputShape(shape, normalized, true)
	result, err := tensor.NewRaw(keepShape, tensor.Bool)
	if err != nil {
		return nil, fmt.Errorf("reduce_%s: %w", name, err)
	}

	dst := result.AsBool()
	for i := range dst {
		dst[i] = identity
	}
	reduceInto(x.AsBool(), dst, shape, keepShape, combine)

	if keepDims {
		return result, nil
	}
	return result.Reshape(OutputShape(shape, normalized, false))
}

// reduceInto folds every input element into its output slot.
// Reduced dimensions have size 1 in keepShape, so their coordinate is dropped.
func reduceInto(data, result []bool, shape, keepShape tensor.Shape, combine func(acc, v bool) bool) {
	strides := shape.ComputeStrides()
	outStrides := keepShape.ComputeStrides()

	for i, v := range data {
		// Compute multi-dimensional index
		outIdx := 0
		temp := i
		for d := range shape {
			coord := temp / strides[d]
			temp %= strides[d]

			if keepShape[d] != 1 {
				outIdx += coord * outStrides[d]
			}
		}

		result[outIdx] = combine(result[outIdx], v)
	}
}
