package opcheck

import (
	"math"
	"math/rand"
	"slices"

	"github.com/born-ml/opref/internal/optim"
	"github.com/born-ml/opref/internal/tensor"
)

// TagRank8 marks the 8-D reduction scenarios.
const TagRank8 = "rank8"

// Scenario is one operator check: how to build its inputs and which outputs to compare.
type Scenario struct {
	Name    string
	Op      string
	Build   func(rng *rand.Rand) (Inputs, error)
	NoCheck []string   // Outputs excluded from comparison
	Tol     *Tolerance // Overrides the op default when set
	Tags    []string
}

// HasTag reports whether s carries tag.
func (s Scenario) HasTag(tag string) bool {
	return slices.Contains(s.Tags, tag)
}

// Tolerance returns the scenario override or the op default.
func (s Scenario) Tolerance() (Tolerance, error) {
	if s.Tol != nil {
		return *s.Tol, nil
	}
	return OpTolerance(s.Op)
}

// DefaultScenarios returns the built-in reduction and AdamW checks.
func DefaultScenarios() []Scenario {
	rank8 := tensor.Shape{2, 5, 3, 2, 2, 3, 4, 2}

	return []Scenario{
		reduceScenario("reduce_any_last_dim", OpReduceAny, tensor.Shape{5, 6, 10}, []int{-1}, false),
		reduceScenario("reduce_any_keep_dim", OpReduceAny, tensor.Shape{5, 6, 10}, []int{1}, true),
		reduceScenario("reduce_all_keep_dim", OpReduceAll, tensor.Shape{5, 6, 10}, []int{0, 2}, true),
		reduceScenario("reduce_any_rank8_three_axes", OpReduceAny, rank8, []int{3, 5, 4}, false, TagRank8),
		reduceScenario("reduce_any_rank8_two_axes", OpReduceAny, rank8, []int{3, 6}, false, TagRank8),
		reduceScenario("reduce_any_rank8_keep_dim", OpReduceAny, rank8, []int{1}, true, TagRank8),
		{
			Name:    "adamw_basic",
			Op:      OpAdamW,
			NoCheck: []string{"Moment2MaxOut"},
			Build: adamwBuilder(adamwCase{
				shape: tensor.Shape{105, 102},
				lr:    0.5, beta1: 0.78, beta2: 0.836, eps: 1e-4,
				coeff: 0.9, withDecay: true,
			}),
		},
		{
			Name:    "adamw_skip_update",
			Op:      OpAdamW,
			NoCheck: []string{"Moment2MaxOut"},
			Build: adamwBuilder(adamwCase{
				shape: tensor.Shape{102, 105},
				lr:    0.004, beta1: 0.78, beta2: 0.836, eps: 1e-4,
				coeff: 0.02, withDecay: true, runtimeBetas: true, skipUpdate: true,
			}),
		},
		{
			Name:    "adamw_skip_update_no_decay",
			Op:      OpAdamW,
			NoCheck: []string{"Moment2MaxOut"},
			Build: adamwBuilder(adamwCase{
				shape: tensor.Shape{102, 105},
				lr:    0.004, beta1: 0.78, beta2: 0.836, eps: 1e-4,
				coeff: 0.02, runtimeBetas: true, skipUpdate: true,
			}),
		},
		{
			Name:    "adamw_runtime_betas",
			Op:      OpAdamW,
			NoCheck: []string{"Moment2MaxOut"},
			Build: adamwBuilder(adamwCase{
				shape: tensor.Shape{102, 105},
				lr:    0.004, beta1: 0.78, beta2: 0.836, eps: 1e-4,
				coeff: 0.02, withDecay: true, runtimeBetas: true,
			}),
		},
		{
			Name: "adamw_amsgrad",
			Op:   OpAdamW,
			Build: adamwBuilder(adamwCase{
				shape: tensor.Shape{64, 48},
				lr:    0.01, beta1: 0.9, beta2: 0.999, eps: 1e-8,
				coeff: 0.01, withDecay: true, amsgrad: true,
			}),
		},
	}
}

func reduceScenario(name, op string, shape tensor.Shape, axes []int, keepDims bool, tags ...string) Scenario {
	return Scenario{
		Name: name,
		Op:   op,
		Tags: tags,
		Build: func(rng *rand.Rand) (Inputs, error) {
			x, err := tensor.RandBool(shape, rng)
			if err != nil {
				return Inputs{}, err
			}
			return Inputs{Reduce: &ReduceInputs{X: x, Axes: slices.Clone(axes), KeepDims: keepDims}}, nil
		},
	}
}

type adamwCase struct {
	shape                 tensor.Shape
	lr, beta1, beta2, eps float64
	coeff                 float64
	withDecay             bool
	runtimeBetas          bool
	skipUpdate            bool
	amsgrad               bool
}

// adamwBuilder draws float32 inputs: param, grad and moment1 uniform in [-1, 1),
// moment2 in [0, 1). Scalars are rounded through float32 like the tensors.
func adamwBuilder(c adamwCase) func(rng *rand.Rand) (Inputs, error) {
	return func(rng *rand.Rand) (Inputs, error) {
		draws := []struct {
			lo, hi float64
		}{{-1, 1}, {-1, 1}, {-1, 1}, {0, 1}}
		ts := make([]*tensor.RawTensor, len(draws))
		for i, d := range draws {
			t, err := tensor.Uniform(c.shape, d.lo, d.hi, tensor.Float32, rng)
			if err != nil {
				return Inputs{}, err
			}
			ts[i] = t
		}

		state := optim.AdamWState{
			Param:        ts[0],
			Grad:         ts[1],
			Moment1:      ts[2],
			Moment2:      ts[3],
			LearningRate: f32(c.lr),
			Beta1Pow:     f32(math.Pow(c.beta1, 10)),
			Beta2Pow:     f32(math.Pow(c.beta2, 10)),
		}
		cfg := optim.AdamWConfig{
			Epsilon:    c.eps,
			Coeff:      c.coeff,
			WithDecay:  c.withDecay,
			SkipUpdate: c.skipUpdate,
			AMSGrad:    c.amsgrad,
		}

		if c.amsgrad {
			m2max, err := tensor.Uniform(c.shape, 0, 1, tensor.Float32, rng)
			if err != nil {
				return Inputs{}, err
			}
			state.Moment2Max = m2max
		} else {
			state.Moment2Max = tensor.Zeros(c.shape, tensor.Float32)
		}

		if c.runtimeBetas {
			b1, err := tensor.FromFloat32([]float32{float32(c.beta1)}, tensor.Shape{1})
			if err != nil {
				return Inputs{}, err
			}
			b2, err := tensor.FromFloat32([]float32{float32(c.beta2)}, tensor.Shape{1})
			if err != nil {
				return Inputs{}, err
			}
			state.Beta1Tensor, state.Beta2Tensor = b1, b2
		} else {
			cfg.Beta1, cfg.Beta2 = optim.Fixed(c.beta1), optim.Fixed(c.beta2)
		}

		return Inputs{AdamW: &AdamWInputs{State: state, Config: cfg}}, nil
	}
}

func f32(v float64) float64 {
	return float64(float32(v))
}
