package opcheck

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/opref/internal/tensor"
)

func f32Tensor(t *testing.T, vals ...float32) *tensor.RawTensor {
	t.Helper()
	x, err := tensor.FromFloat32(vals, tensor.Shape{len(vals)})
	require.NoError(t, err)
	return x
}

func boolTensor(t *testing.T, vals ...bool) *tensor.RawTensor {
	t.Helper()
	x, err := tensor.FromBool(vals, tensor.Shape{len(vals)})
	require.NoError(t, err)
	return x
}

func TestCompare_Equal(t *testing.T) {
	out := Outputs{"Out": boolTensor(t, true, false), "ParamOut": f32Tensor(t, 1, 2, 3)}
	assert.NoError(t, Compare(out, out, Tolerance{}))
}

func TestCompare_WithinTolerance(t *testing.T) {
	want := Outputs{"ParamOut": f32Tensor(t, 1, 2, 3)}
	got := Outputs{"ParamOut": f32Tensor(t, 1.000001, 2, 2.999995)}

	assert.NoError(t, Compare(want, got, Tolerance{Abs: 1e-5}))
	assert.ErrorIs(t, Compare(want, got, Tolerance{}), ErrMismatch)
}

func TestCompare_RelTolerance(t *testing.T) {
	want := Outputs{"ParamOut": f32Tensor(t, 1000)}
	got := Outputs{"ParamOut": f32Tensor(t, 1000.5)}

	assert.Error(t, Compare(want, got, Tolerance{Abs: 1e-3}))
	assert.NoError(t, Compare(want, got, Tolerance{Abs: 1e-3, Rel: 1e-3}))
}

func TestCompare_ValueMismatch(t *testing.T) {
	want := Outputs{"ParamOut": f32Tensor(t, 1, 2, 3, 4)}
	got := Outputs{"ParamOut": f32Tensor(t, 1, 2.5, 3, 1)}

	err := Compare(want, got, Tolerance{Abs: 1e-5})
	var mErr *MismatchError
	require.ErrorAs(t, err, &mErr)
	assert.Equal(t, "ParamOut", mErr.Output)
	assert.Equal(t, "value", mErr.Reason)
	assert.Equal(t, 1, mErr.Index)
	assert.Equal(t, 2, mErr.Count)
	assert.InDelta(t, 3.0, mErr.MaxAbsDiff, 1e-12)
	assert.Contains(t, err.Error(), "first at index 1")
}

func TestCompare_BoolMismatch(t *testing.T) {
	want := Outputs{"Out": boolTensor(t, true, false, true)}
	got := Outputs{"Out": boolTensor(t, true, true, true)}

	var mErr *MismatchError
	require.ErrorAs(t, Compare(want, got, Tolerance{Abs: 1}), &mErr)
	assert.Equal(t, 1, mErr.Index)
	assert.Equal(t, 1, mErr.Count)
}

func TestCompare_Structural(t *testing.T) {
	want := Outputs{"Out": boolTensor(t, true, false)}

	tests := []struct {
		name   string
		actual Outputs
		reason string
	}{
		{"missing", Outputs{}, "missing"},
		{"shape", Outputs{"Out": boolTensor(t, true)}, "shape"},
		{"dtype", Outputs{"Out": f32Tensor(t, 1, 0)}, "dtype"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mErr *MismatchError
			require.ErrorAs(t, Compare(want, tt.actual, Tolerance{}), &mErr)
			assert.Equal(t, tt.reason, mErr.Reason)
		})
	}
}

func TestCompare_NoCheck(t *testing.T) {
	want := Outputs{"ParamOut": f32Tensor(t, 1), "Moment2MaxOut": f32Tensor(t, 0)}
	got := Outputs{"ParamOut": f32Tensor(t, 1), "Moment2MaxOut": f32Tensor(t, 123)}

	assert.Error(t, Compare(want, got, Tolerance{}))
	assert.NoError(t, Compare(want, got, Tolerance{}, "Moment2MaxOut"))

	// Excluded outputs may be absent altogether.
	delete(got, "Moment2MaxOut")
	assert.NoError(t, Compare(want, got, Tolerance{}, "Moment2MaxOut"))
}

func TestCompare_NaN(t *testing.T) {
	nan := float32(math.NaN())
	want := Outputs{"ParamOut": f32Tensor(t, nan, 1)}

	assert.NoError(t, Compare(want, Outputs{"ParamOut": f32Tensor(t, nan, 1)}, Tolerance{}))
	assert.Error(t, Compare(want, Outputs{"ParamOut": f32Tensor(t, 0, 1)}, Tolerance{Abs: 10}))
}

func TestOpTolerance(t *testing.T) {
	tol, err := OpTolerance(OpAdamW)
	require.NoError(t, err)
	assert.Equal(t, 1e-5, tol.Abs)

	tol, err = OpTolerance(OpReduceAny)
	require.NoError(t, err)
	assert.Equal(t, Tolerance{}, tol)

	_, err = OpTolerance("matmul")
	assert.Error(t, err)
}
