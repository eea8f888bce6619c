package tensor

import (
	"fmt"
	"unsafe"

	"github.com/x448/float16"
)

// RawTensor is the low-level tensor representation: a dense row-major buffer
// with runtime shape and dtype.
//
// The reference operators treat every RawTensor they receive as immutable and
// always return freshly allocated outputs.
type RawTensor struct {
	data  []byte   // Backing buffer
	shape Shape    // Tensor dimensions
	dtype DataType // Runtime type information
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is allocated but not initialized (contains zeros).
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	return &RawTensor{
		data:  make([]byte, shape.NumElements()*dtype.Size()),
		shape: shape.Clone(),
		dtype: dtype,
	}, nil
}

// FromFloat32 creates a float32 tensor holding a copy of data.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	r, err := newForSlice(len(data), shape, Float32)
	if err != nil {
		return nil, err
	}
	copy(r.AsFloat32(), data)
	return r, nil
}

// FromFloat64 creates a float64 tensor holding a copy of data.
func FromFloat64(data []float64, shape Shape) (*RawTensor, error) {
	r, err := newForSlice(len(data), shape, Float64)
	if err != nil {
		return nil, err
	}
	copy(r.AsFloat64(), data)
	return r, nil
}

// FromFloat16 creates a float16 tensor holding a copy of data.
func FromFloat16(data []float16.Float16, shape Shape) (*RawTensor, error) {
	r, err := newForSlice(len(data), shape, Float16)
	if err != nil {
		return nil, err
	}
	copy(r.AsFloat16(), data)
	return r, nil
}

// FromBool creates a bool tensor holding a copy of data.
func FromBool(data []bool, shape Shape) (*RawTensor, error) {
	r, err := newForSlice(len(data), shape, Bool)
	if err != nil {
		return nil, err
	}
	copy(r.AsBool(), data)
	return r, nil
}

// FromBytes wraps an already-encoded buffer. The buffer is copied.
func FromBytes(data []byte, shape Shape, dtype DataType) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if want := shape.NumElements() * dtype.Size(); len(data) != want {
		return nil, fmt.Errorf("%w: shape %v %s requires %d bytes, but got %d",
			ErrInvalidShape, shape, dtype, want, len(data))
	}
	r := &RawTensor{
		data:  make([]byte, len(data)),
		shape: shape.Clone(),
		dtype: dtype,
	}
	copy(r.data, data)
	return r, nil
}

func newForSlice(n int, shape Shape, dtype DataType) (*RawTensor, error) {
	if shape.NumElements() != n {
		return nil, fmt.Errorf("%w: shape %v requires %d elements, but got %d",
			ErrInvalidShape, shape, shape.NumElements(), n)
	}
	return NewRaw(shape, dtype)
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return len(r.data)
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat16 interprets the data as []float16.Float16.
// Panics if the tensor's dtype is not Float16.
func (r *RawTensor) AsFloat16() []float16.Float16 {
	if r.dtype != Float16 {
		panic(fmt.Sprintf("tensor dtype is %s, not float16", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float16.Float16)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsBool interprets the data as []bool.
// Panics if the tensor's dtype is not Bool.
func (r *RawTensor) AsBool() []bool {
	if r.dtype != Bool {
		panic(fmt.Sprintf("tensor dtype is %s, not bool", r.dtype))
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*bool)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// Float64s returns the values of a floating point tensor widened to float64.
// The result is a new slice.
func (r *RawTensor) Float64s() ([]float64, error) {
	out := make([]float64, r.NumElements())
	switch r.dtype {
	case Float32:
		for i, v := range r.AsFloat32() {
			out[i] = float64(v)
		}
	case Float64:
		copy(out, r.AsFloat64())
	case Float16:
		for i, v := range r.AsFloat16() {
			out[i] = float64(v.Float32())
		}
	default:
		return nil, fmt.Errorf("%w: %s is not a floating point type", ErrDType, r.dtype)
	}
	return out, nil
}

// Scalar reads a single-element floating point tensor.
//
// Runtime hyperparameters (learning rate, beta tensors) arrive as 1-element
// tensors; Scalar turns them into a plain value.
func (r *RawTensor) Scalar() (float64, error) {
	if r.NumElements() != 1 {
		return 0, fmt.Errorf("%w: scalar requires 1 element, tensor has shape %v", ErrInvalidShape, r.shape)
	}
	vals, err := r.Float64s()
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

// Clone creates a deep copy of the RawTensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:  data,
		shape: r.shape.Clone(),
		dtype: r.dtype,
	}
}

// Reshape returns a copy of the tensor with a new shape holding the same number of elements.
func (r *RawTensor) Reshape(shape Shape) (*RawTensor, error) {
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("%w: cannot reshape %v into %v", ErrInvalidShape, r.shape, shape)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	c := r.Clone()
	c.shape = shape.Clone()
	return c, nil
}

// String implements fmt.Stringer with a short summary (no element dump).
func (r *RawTensor) String() string {
	return fmt.Sprintf("Tensor(%s, shape=%v)", r.dtype, []int(r.shape))
}
