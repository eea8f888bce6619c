package reduce

import (
	"fmt"

	"github.com/born-ml/opref/internal/tensor"
)

// Boolean operations - work on bool tensors.

// Or computes element-wise logical OR with NumPy-style broadcasting.
func Or(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return elementwise("or", a, b, func(x, y bool) bool { return x || y })
}

// And computes element-wise logical AND with NumPy-style broadcasting.
func And(a, b *tensor.RawTensor) (*tensor.RawTensor, error) {
	return elementwise("and", a, b, func(x, y bool) bool { return x && y })
}

// Not computes element-wise logical NOT.
func Not(x *tensor.RawTensor) (*tensor.RawTensor, error) {
	if x.DType() != tensor.Bool {
		return nil, fmt.Errorf("not: %w: tensor must be bool, got %s", ErrDType, x.DType())
	}

	result, err := tensor.NewRaw(x.Shape(), tensor.Bool)
	if err != nil {
		return nil, fmt.Errorf("not: %w", err)
	}

	src := x.AsBool()
	dst := result.AsBool()
	for i := range dst {
		dst[i] = !src[i]
	}
	return result, nil
}

func elementwise(name string, a, b *tensor.RawTensor, op func(x, y bool) bool) (*tensor.RawTensor, error) {
	if a.DType() != tensor.Bool || b.DType() != tensor.Bool {
		return nil, fmt.Errorf("%s: %w: both tensors must be bool, got %s and %s", name, ErrDType, a.DType(), b.DType())
	}

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	result, err := tensor.NewRaw(outShape, tensor.Bool)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	if needsBroadcast {
		withBroadcast(result, a, b, outShape, op)
	} else {
		vectorized(result, a, b, op)
	}
	return result, nil
}

// ============================================================================
// Vectorized implementation
// ============================================================================

func vectorized(result, a, b *tensor.RawTensor, op func(x, y bool) bool) {
	aData := a.AsBool()
	bData := b.AsBool()
	dst := result.AsBool()

	for i := range dst {
		dst[i] = op(aData[i], bData[i])
	}
}

// ============================================================================
// Broadcast implementation
// ============================================================================

func withBroadcast(result, a, b *tensor.RawTensor, outShape tensor.Shape, op func(x, y bool) bool) {
	aData := a.AsBool()
	bData := b.AsBool()
	dst := result.AsBool()

	outStrides := outShape.ComputeStrides()
	aStrides := a.Shape().BroadcastStrides(outShape)
	bStrides := b.Shape().BroadcastStrides(outShape)

	for i := range dst {
		aIdx, bIdx := 0, 0
		temp := i
		for d := range outShape {
			coord := temp / outStrides[d]
			temp %= outStrides[d]
			aIdx += coord * aStrides[d]
			bIdx += coord * bStrides[d]
		}
		dst[i] = op(aData[aIdx], bData[bIdx])
	}
}
