package opcheck

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/opref/internal/fixture"
	"github.com/born-ml/opref/internal/optim"
	"github.com/born-ml/opref/internal/tensor"
)

func scenarioByName(t *testing.T, name string) Scenario {
	t.Helper()
	for _, sc := range DefaultScenarios() {
		if sc.Name == name {
			return sc
		}
	}
	t.Fatalf("no scenario %q", name)
	return Scenario{}
}

func buildReference(t *testing.T, name string) (Inputs, Outputs) {
	t.Helper()
	sc := scenarioByName(t, name)
	in, err := sc.Build(rand.New(rand.NewSource(2021)))
	require.NoError(t, err)
	out, err := Reference(sc.Op, in)
	require.NoError(t, err)
	return in, out
}

func TestDefaultScenarios_Valid(t *testing.T) {
	seen := map[string]bool{}
	for _, sc := range DefaultScenarios() {
		assert.False(t, seen[sc.Name], "duplicate scenario %s", sc.Name)
		seen[sc.Name] = true
		assert.NoError(t, fixture.ValidateName(sc.Name))
		_, err := sc.Tolerance()
		assert.NoError(t, err, sc.Name)
	}
}

func TestReference_ReduceShapes(t *testing.T) {
	tests := []struct {
		name string
		want tensor.Shape
	}{
		{"reduce_any_last_dim", tensor.Shape{5, 6}},
		{"reduce_any_keep_dim", tensor.Shape{5, 1, 10}},
		{"reduce_all_keep_dim", tensor.Shape{1, 6, 1}},
		{"reduce_any_rank8_three_axes", tensor.Shape{2, 5, 3, 4, 2}},
		{"reduce_any_rank8_two_axes", tensor.Shape{2, 5, 3, 2, 3, 2}},
		{"reduce_any_rank8_keep_dim", tensor.Shape{2, 1, 3, 2, 2, 3, 4, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out := buildReference(t, tt.name)
			assert.Equal(t, tt.want, out["Out"].Shape())
			assert.Equal(t, tensor.Bool, out["Out"].DType())
		})
	}
}

func TestReference_AdamWSkipUpdate(t *testing.T) {
	for _, name := range []string{"adamw_skip_update", "adamw_skip_update_no_decay"} {
		in, out := buildReference(t, name)
		s := in.AdamW.State

		assert.Equal(t, s.Param.Data(), out["ParamOut"].Data(), name)
		assert.Equal(t, s.Moment1.Data(), out["Moment1Out"].Data(), name)
		assert.Equal(t, s.Moment2.Data(), out["Moment2Out"].Data(), name)
		assert.Equal(t, s.Beta1Pow, out["Beta1PowOut"].AsFloat64()[0], name)
		assert.Equal(t, s.Beta2Pow, out["Beta2PowOut"].AsFloat64()[0], name)
	}
}

func TestReference_AdamWBasic(t *testing.T) {
	in, out := buildReference(t, "adamw_basic")
	s := in.AdamW.State

	assert.Equal(t, tensor.Shape{105, 102}, out["ParamOut"].Shape())
	assert.Equal(t, tensor.Float32, out["ParamOut"].DType())
	assert.Equal(t, s.Beta1Pow*0.78, out["Beta1PowOut"].AsFloat64()[0])
	assert.Equal(t, s.Beta2Pow*0.836, out["Beta2PowOut"].AsFloat64()[0])

	// Builds are deterministic for a seed.
	in2, _ := buildReference(t, "adamw_basic")
	assert.Equal(t, s.Param.Data(), in2.AdamW.State.Param.Data())
}

func TestReference_RuntimeBetasMatchFixed(t *testing.T) {
	in, out := buildReference(t, "adamw_runtime_betas")
	require.NotNil(t, in.AdamW.State.Beta1Tensor)

	b1, err := in.AdamW.State.Beta1Tensor.Scalar()
	require.NoError(t, err)
	b2, err := in.AdamW.State.Beta2Tensor.Scalar()
	require.NoError(t, err)

	fixed := *in.AdamW
	fixed.State.Beta1Tensor, fixed.State.Beta2Tensor = nil, nil
	fixed.Config.Beta1 = optim.Fixed(b1)
	fixed.Config.Beta2 = optim.Fixed(b2)

	want, err := Reference(OpAdamW, Inputs{AdamW: &fixed})
	require.NoError(t, err)
	assert.NoError(t, Compare(want, out, Tolerance{}))
}

func TestReference_UnknownOp(t *testing.T) {
	_, err := Reference("conv2d", Inputs{})
	assert.Error(t, err)

	_, err = Reference(OpAdamW, Inputs{})
	assert.Error(t, err)
}
