package reduce

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/opref/internal/tensor"
)

func randBool(t *testing.T, shape tensor.Shape, seed int64) *tensor.RawTensor {
	t.Helper()
	x, err := tensor.RandBool(shape, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	return x
}

func TestAny_LastDim(t *testing.T) {
	x := randBool(t, tensor.Shape{5, 6, 10}, 2021)

	out, err := Any(x, []int{-1}, false)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{5, 6}, out.Shape())

	src := x.AsBool()
	got := out.AsBool()
	for i := 0; i < 5; i++ {
		for j := 0; j < 6; j++ {
			want := false
			for k := 0; k < 10; k++ {
				want = want || src[i*60+j*10+k]
			}
			assert.Equal(t, want, got[i*6+j], "out[%d,%d]", i, j)
		}
	}
}

func TestAny_KeepDim(t *testing.T) {
	x := randBool(t, tensor.Shape{5, 6, 10}, 7)

	out, err := Any(x, []int{1}, true)
	require.NoError(t, err)
	require.Equal(t, tensor.Shape{5, 1, 10}, out.Shape())

	src := x.AsBool()
	got := out.AsBool()
	for i := 0; i < 5; i++ {
		for k := 0; k < 10; k++ {
			want := false
			for j := 0; j < 6; j++ {
				want = want || src[i*60+j*10+k]
			}
			assert.Equal(t, want, got[i*10+k], "out[%d,0,%d]", i, k)
		}
	}
}

func TestAny_KnownValues(t *testing.T) {
	// [[F F] [F T] [F F]] over rows and columns.
	x, _ := tensor.FromBool([]bool{false, false, false, true, false, false}, tensor.Shape{3, 2})

	rows, err := Any(x, []int{1}, false)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, rows.AsBool())

	cols, err := Any(x, []int{0}, true)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 2}, cols.Shape())
	assert.Equal(t, []bool{false, true}, cols.AsBool())

	all, err := Any(x, []int{0, 1}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, len(all.Shape()))
	assert.Equal(t, []bool{true}, all.AsBool())
}

func TestAll_KnownValues(t *testing.T) {
	x, _ := tensor.FromBool([]bool{true, true, false, true}, tensor.Shape{2, 2})

	rows, err := All(x, []int{-1}, false)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, rows.AsBool())

	cols, err := All(x, []int{0}, false)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true}, cols.AsBool())
}

func TestAny_Rank8(t *testing.T) {
	shape := tensor.Shape{2, 5, 3, 2, 2, 3, 4, 2}
	x := randBool(t, shape, 11)

	tests := []struct {
		name     string
		axes     []int
		keepDims bool
		want     tensor.Shape
	}{
		{"dims 3,5,4", []int{3, 5, 4}, false, tensor.Shape{2, 5, 3, 4, 2}},
		{"dims 3,6", []int{3, 6}, false, tensor.Shape{2, 5, 3, 2, 3, 2}},
		{"dim 1 keep", []int{1}, true, tensor.Shape{2, 1, 3, 2, 2, 3, 4, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Any(x, tt.axes, tt.keepDims)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Shape())
			assert.Equal(t, naiveAny(x, tt.axes), boolsOf(t, out))
		})
	}
}

func TestAny_RankProperty(t *testing.T) {
	shape := tensor.Shape{3, 4, 2, 5}
	x := randBool(t, shape, 3)

	// Every non-empty subset of the 4 axes.
	for mask := 1; mask < 1<<len(shape); mask++ {
		var axes []int
		for d := range shape {
			if mask&(1<<d) != 0 {
				axes = append(axes, d)
			}
		}

		dropped, err := Any(x, axes, false)
		require.NoError(t, err)
		assert.Len(t, dropped.Shape(), len(shape)-len(axes), "axes %v", axes)

		kept, err := Any(x, axes, true)
		require.NoError(t, err)
		require.Len(t, kept.Shape(), len(shape))
		for d := range shape {
			if mask&(1<<d) != 0 {
				assert.Equal(t, 1, kept.Shape()[d], "axes %v dim %d", axes, d)
			} else {
				assert.Equal(t, shape[d], kept.Shape()[d], "axes %v dim %d", axes, d)
			}
		}
		assert.Equal(t, dropped.AsBool(), kept.AsBool(), "axes %v", axes)
	}
}

func TestAny_AxisOrderInvariant(t *testing.T) {
	x := randBool(t, tensor.Shape{2, 5, 3, 2, 2, 3, 4, 2}, 5)

	a, err := Any(x, []int{3, 5, 4}, false)
	require.NoError(t, err)
	b, err := Any(x, []int{4, -3, 3}, false)
	require.NoError(t, err)

	assert.Equal(t, a.Shape(), b.Shape())
	assert.Equal(t, a.AsBool(), b.AsBool())
}

func TestAny_KeepDimRoundTrip(t *testing.T) {
	x := randBool(t, tensor.Shape{5, 6, 10}, 9)
	axes := []int{0, 2}

	r, err := Any(x, axes, true)
	require.NoError(t, err)

	// Broadcasting r back over the reduced axes and OR-ing with the input
	// cannot change the reduction.
	merged, err := Or(x, r)
	require.NoError(t, err)
	require.Equal(t, x.Shape(), merged.Shape())

	again, err := Any(merged, axes, true)
	require.NoError(t, err)
	assert.Equal(t, r.Shape(), again.Shape())
	assert.Equal(t, r.AsBool(), again.AsBool())

	self, err := Or(r, r)
	require.NoError(t, err)
	assert.Equal(t, r.AsBool(), self.AsBool())
}

func TestAny_InvalidAxis(t *testing.T) {
	x := randBool(t, tensor.Shape{5, 6, 10}, 1)
	before := append([]bool(nil), x.AsBool()...)

	tests := []struct {
		name string
		axes []int
	}{
		{"axis equals rank", []int{3}},
		{"too negative", []int{-4}},
		{"duplicate", []int{2, -1}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Any(x, tt.axes, false)
			assert.ErrorIs(t, err, ErrInvalidAxis)
			assert.Nil(t, out)
		})
	}

	assert.Equal(t, before, x.AsBool(), "input must not be modified")
}

func TestAny_RequiresBool(t *testing.T) {
	x, _ := tensor.FromFloat32([]float32{1, 0}, tensor.Shape{2})
	_, err := Any(x, []int{0}, false)
	assert.ErrorIs(t, err, ErrDType)
}

func TestAny_DoesNotAliasInput(t *testing.T) {
	x, _ := tensor.FromBool([]bool{true, false}, tensor.Shape{2, 1})
	out, err := Any(x, []int{1}, true)
	require.NoError(t, err)

	out.AsBool()[0] = false
	assert.True(t, x.AsBool()[0])
}

// naiveAny reduces over axes by enumerating every output coordinate and
// scanning all inputs that project onto it.
func naiveAny(x *tensor.RawTensor, axes []int) []bool {
	shape := x.Shape()
	norm, _ := tensor.NormalizeAxes(axes, len(shape))
	reduced := map[int]bool{}
	for _, a := range norm {
		reduced[a] = true
	}

	keep := OutputShape(shape, norm, true)
	out := make([]bool, keep.NumElements())
	strides := shape.ComputeStrides()
	keepStrides := keep.ComputeStrides()
	src := x.AsBool()

	for o := range out {
		for i, v := range src {
			match := true
			for d := range shape {
				if reduced[d] {
					continue
				}
				if (i/strides[d])%shape[d] != (o/keepStrides[d])%keep[d] {
					match = false
					break
				}
			}
			if match && v {
				out[o] = true
				break
			}
		}
	}
	return out
}

func boolsOf(t *testing.T, x *tensor.RawTensor) []bool {
	t.Helper()
	return append([]bool(nil), x.AsBool()...)
}
