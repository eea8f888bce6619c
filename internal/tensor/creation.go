package tensor

import (
	"fmt"
	"math/rand"

	"github.com/x448/float16"
)

// Zeros creates a tensor filled with zeros (false for Bool).
//
// Example:
//
//	t := tensor.Zeros(Shape{3, 4}, tensor.Float32)
func Zeros(shape Shape, dtype DataType) *RawTensor {
	raw, err := NewRaw(shape, dtype)
	if err != nil {
		panic(err) // Callers pass validated shapes
	}

	// Data is already zero-initialized by make()
	return raw
}

// Full creates a floating point tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full(Shape{1}, 0.5, tensor.Float32)
func Full(shape Shape, value float64, dtype DataType) (*RawTensor, error) {
	raw, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	if err := fill(raw, func() float64 { return value }); err != nil {
		return nil, err
	}
	return raw, nil
}

// Uniform creates a floating point tensor with values drawn uniformly from [lo, hi).
// Note: Uses math/rand (not crypto/rand) - appropriate for reproducible test inputs.
//
// Example:
//
//	rng := rand.New(rand.NewSource(2021))
//	param, _ := tensor.Uniform(Shape{105, 102}, -1, 1, tensor.Float32, rng)
func Uniform(shape Shape, lo, hi float64, dtype DataType, rng *rand.Rand) (*RawTensor, error) {
	if hi < lo {
		return nil, fmt.Errorf("uniform: hi %v < lo %v", hi, lo)
	}
	raw, err := NewRaw(shape, dtype)
	if err != nil {
		return nil, err
	}
	span := hi - lo
	if err := fill(raw, func() float64 { return lo + span*rng.Float64() }); err != nil {
		return nil, err
	}
	return raw, nil
}

// RandBool creates a bool tensor where each element is true with probability 1/2.
func RandBool(shape Shape, rng *rand.Rand) (*RawTensor, error) {
	raw, err := NewRaw(shape, Bool)
	if err != nil {
		return nil, err
	}
	data := raw.AsBool()
	for i := range data {
		data[i] = rng.Intn(2) == 1
	}
	return raw, nil
}

func fill(raw *RawTensor, next func() float64) error {
	switch raw.DType() {
	case Float32:
		data := raw.AsFloat32()
		for i := range data {
			data[i] = float32(next())
		}
	case Float64:
		data := raw.AsFloat64()
		for i := range data {
			data[i] = next()
		}
	case Float16:
		data := raw.AsFloat16()
		for i := range data {
			data[i] = float16.Fromfloat32(float32(next()))
		}
	default:
		return fmt.Errorf("%w: cannot fill %s tensor with floating point values", ErrDType, raw.DType())
	}
	return nil
}
