package optim

import (
	"math"

	"github.com/x448/float16"

	"github.com/born-ml/opref/internal/parallel"
	"github.com/born-ml/opref/internal/tensor"
)

// AdamWConfig holds the attributes of a single AdamW step.
//
// Beta1 and Beta2 take precedence over the runtime tensors in AdamWState;
// leave them unset to read the betas from AdamWState.Beta1Tensor/Beta2Tensor.
type AdamWConfig struct {
	Epsilon    float64    // Term for numerical stability (must be > 0)
	Beta1      Hyperparam // First moment decay, in [0, 1)
	Beta2      Hyperparam // Second moment decay, in [0, 1)
	Coeff      float64    // Decoupled weight decay coefficient
	WithDecay  bool       // Apply param *= 1 - lr*coeff before the update
	SkipUpdate bool       // Return every input unchanged
	AMSGrad    bool       // Track the running max of the second moment

	// Parallel controls how the element-wise update is split across goroutines.
	// The zero value runs sequentially.
	Parallel parallel.Config
}

// AdamWState holds the tensors and scalars a step reads.
//
// Param, Grad, Moment1 and Moment2 must share one shape and floating point dtype.
// Moment2Max is optional; when present it must match as well.
type AdamWState struct {
	Param      *tensor.RawTensor
	Grad       *tensor.RawTensor
	Moment1    *tensor.RawTensor
	Moment2    *tensor.RawTensor
	Moment2Max *tensor.RawTensor

	// Runtime overrides for the betas, used when AdamWConfig leaves them unset.
	Beta1Tensor *tensor.RawTensor
	Beta2Tensor *tensor.RawTensor

	LearningRate float64
	Beta1Pow     float64 // beta1^t accumulator
	Beta2Pow     float64 // beta2^t accumulator
}

// AdamWResult holds the outputs of a step. Every tensor is freshly allocated.
//
// Moment2MaxOut is only meaningful when AdamWConfig.AMSGrad is set. Otherwise it
// is a same-shaped placeholder (a copy of Moment2Max, or zeros) whose contents
// callers must not compare.
type AdamWResult struct {
	ParamOut      *tensor.RawTensor
	Moment1Out    *tensor.RawTensor
	Moment2Out    *tensor.RawTensor
	Moment2MaxOut *tensor.RawTensor
	Beta1PowOut   float64
	Beta2PowOut   float64
}

// stepParams are the hyperparameters after resolution.
type stepParams struct {
	beta1, beta2 float64
	eps          float64
	decay        float64 // 1 - lr*coeff, or 1 without decay
	lrT          float64 // lr * sqrt(1-beta2^t) / (1-beta1^t)
	amsgrad      bool
}

// AdamWStep computes one AdamW update.
//
// Update rule:
//
//	param'  = param * (1 - lr*coeff)                     // only WithDecay
//	m1      = beta1 * m1 + (1-beta1) * grad              // First moment
//	m2      = beta2 * m2 + (1-beta2) * grad²             // Second moment
//	m2max   = max(m2max, m2)                             // only AMSGrad
//	lr_t    = lr * sqrt(1 - beta2^t) / (1 - beta1^t)     // Bias correction
//	param   = param' - lr_t * m1 / (sqrt(m2 or m2max) + eps)
//	beta1^t = beta1^t * beta1, beta2^t = beta2^t * beta2
//
// Validation runs before anything is allocated. The inputs are never modified.
// With SkipUpdate every output is a copy of the matching input.
//
// Element math is carried out in float64 and rounded to the tensor dtype on store.
// Float16 tensors are widened to float32 first.
func AdamWStep(state AdamWState, cfg AdamWConfig) (*AdamWResult, error) {
	if err := validateTensors(state); err != nil {
		return nil, err
	}
	params, err := resolveParams(state, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.SkipUpdate {
		return &AdamWResult{
			ParamOut:      state.Param.Clone(),
			Moment1Out:    state.Moment1.Clone(),
			Moment2Out:    state.Moment2.Clone(),
			Moment2MaxOut: moment2MaxPlaceholder(state),
			Beta1PowOut:   state.Beta1Pow,
			Beta2PowOut:   state.Beta2Pow,
		}, nil
	}

	res := &AdamWResult{
		Beta1PowOut: state.Beta1Pow * params.beta1,
		Beta2PowOut: state.Beta2Pow * params.beta2,
	}

	switch state.Param.DType() {
	case tensor.Float32:
		res.ParamOut, res.Moment1Out, res.Moment2Out, res.Moment2MaxOut = stepFloat32(state, params, cfg.Parallel)
	case tensor.Float64:
		res.ParamOut, res.Moment1Out, res.Moment2Out, res.Moment2MaxOut = stepFloat64(state, params, cfg.Parallel)
	case tensor.Float16:
		res.ParamOut, res.Moment1Out, res.Moment2Out, res.Moment2MaxOut = stepFloat16(state, params, cfg.Parallel)
	}

	if !params.amsgrad {
		res.Moment2MaxOut = moment2MaxPlaceholder(state)
	}
	return res, nil
}

func validateTensors(state AdamWState) error {
	named := []struct {
		name string
		t    *tensor.RawTensor
	}{
		{"Param", state.Param},
		{"Grad", state.Grad},
		{"Moment1", state.Moment1},
		{"Moment2", state.Moment2},
	}
	for _, n := range named {
		if n.t == nil {
			return shapeErr(n.name, "missing tensor")
		}
	}

	shape := state.Param.Shape()
	dtype := state.Param.DType()
	if !dtype.IsFloat() {
		return shapeErr("Param", "dtype %s is not floating point", dtype)
	}

	if state.Moment2Max != nil {
		named = append(named, struct {
			name string
			t    *tensor.RawTensor
		}{"Moment2Max", state.Moment2Max})
	}
	for _, n := range named[1:] {
		if !n.t.Shape().Equal(shape) {
			return shapeErr(n.name, "shape %v does not match Param shape %v", n.t.Shape(), shape)
		}
		if n.t.DType() != dtype {
			return shapeErr(n.name, "dtype %s does not match Param dtype %s", n.t.DType(), dtype)
		}
	}
	return nil
}

func resolveParams(state AdamWState, cfg AdamWConfig) (stepParams, error) {
	var p stepParams

	if !(cfg.Epsilon > 0) || math.IsInf(cfg.Epsilon, 0) {
		return p, configErr("epsilon", "got %v, must be a finite value > 0", cfg.Epsilon)
	}
	p.eps = cfg.Epsilon

	var err error
	if p.beta1, err = resolveFirst("beta1", cfg.Beta1, Runtime(state.Beta1Tensor)); err != nil {
		return p, err
	}
	if p.beta2, err = resolveFirst("beta2", cfg.Beta2, Runtime(state.Beta2Tensor)); err != nil {
		return p, err
	}
	if !inUnitInterval(p.beta1) {
		return p, configErr("beta1", "got %v, must be in [0, 1)", p.beta1)
	}
	if !inUnitInterval(p.beta2) {
		return p, configErr("beta2", "got %v, must be in [0, 1)", p.beta2)
	}

	lr := state.LearningRate
	if math.IsNaN(lr) || math.IsInf(lr, 0) {
		return p, configErr("LearningRate", "got %v, must be finite", lr)
	}
	if !inUnitInterval(state.Beta1Pow) {
		return p, configErr("Beta1Pow", "got %v, must be in [0, 1)", state.Beta1Pow)
	}
	if !(state.Beta2Pow >= 0 && state.Beta2Pow <= 1) {
		return p, configErr("Beta2Pow", "got %v, must be in [0, 1]", state.Beta2Pow)
	}
	if math.IsNaN(cfg.Coeff) || math.IsInf(cfg.Coeff, 0) {
		return p, configErr("coeff", "got %v, must be finite", cfg.Coeff)
	}

	p.decay = 1
	if cfg.WithDecay {
		p.decay = 1 - lr*cfg.Coeff
	}
	p.lrT = lr * math.Sqrt(1-state.Beta2Pow) / (1 - state.Beta1Pow)
	p.amsgrad = cfg.AMSGrad
	return p, nil
}

func inUnitInterval(v float64) bool {
	return v >= 0 && v < 1
}

// moment2MaxPlaceholder returns the don't-care Moment2MaxOut.
func moment2MaxPlaceholder(state AdamWState) *tensor.RawTensor {
	if state.Moment2Max != nil {
		return state.Moment2Max.Clone()
	}
	return tensor.Zeros(state.Param.Shape(), state.Param.DType())
}

type floatElem interface {
	~float32 | ~float64
}

// adamwKernel updates [start, end) of the output slices. m2max and m2maxOut are
// only touched when amsgrad is set.
func adamwKernel[T floatElem](
	param, grad, m1, m2, m2max []T,
	paramOut, m1Out, m2Out, m2maxOut []T,
	p stepParams,
	start, end int,
) {
	oneMinusBeta1 := 1 - p.beta1
	oneMinusBeta2 := 1 - p.beta2

	for i := start; i < end; i++ {
		g := float64(grad[i])

		mom1 := p.beta1*float64(m1[i]) + oneMinusBeta1*g
		mom2 := p.beta2*float64(m2[i]) + oneMinusBeta2*g*g

		denom := mom2
		if p.amsgrad {
			denom = math.Max(float64(m2max[i]), mom2)
			m2maxOut[i] = T(denom)
		}

		paramOut[i] = T(float64(param[i])*p.decay - p.lrT*mom1/(math.Sqrt(denom)+p.eps))
		m1Out[i] = T(mom1)
		m2Out[i] = T(mom2)
	}
}

// newOutputs allocates ParamOut, Moment1Out, Moment2Out and Moment2MaxOut.
func newOutputs(shape tensor.Shape, dtype tensor.DataType) (po, m1o, m2o, mmo *tensor.RawTensor) {
	return tensor.Zeros(shape, dtype), tensor.Zeros(shape, dtype), tensor.Zeros(shape, dtype), tensor.Zeros(shape, dtype)
}

func stepFloat32(state AdamWState, p stepParams, cfg parallel.Config) (po, m1o, m2o, mmo *tensor.RawTensor) {
	po, m1o, m2o, mmo = newOutputs(state.Param.Shape(), tensor.Float32)

	var m2max []float32
	if p.amsgrad {
		m2max = moment2MaxOrZeros(state).AsFloat32()
	}
	param, grad := state.Param.AsFloat32(), state.Grad.AsFloat32()
	m1, m2 := state.Moment1.AsFloat32(), state.Moment2.AsFloat32()
	paramOut, m1Out, m2Out, m2maxOut := po.AsFloat32(), m1o.AsFloat32(), m2o.AsFloat32(), mmo.AsFloat32()

	parallel.ForRange(len(param), func(s, e int) {
		adamwKernel(param, grad, m1, m2, m2max, paramOut, m1Out, m2Out, m2maxOut, p, s, e)
	}, cfg)
	return po, m1o, m2o, mmo
}

func stepFloat64(state AdamWState, p stepParams, cfg parallel.Config) (po, m1o, m2o, mmo *tensor.RawTensor) {
	po, m1o, m2o, mmo = newOutputs(state.Param.Shape(), tensor.Float64)

	var m2max []float64
	if p.amsgrad {
		m2max = moment2MaxOrZeros(state).AsFloat64()
	}
	param, grad := state.Param.AsFloat64(), state.Grad.AsFloat64()
	m1, m2 := state.Moment1.AsFloat64(), state.Moment2.AsFloat64()
	paramOut, m1Out, m2Out, m2maxOut := po.AsFloat64(), m1o.AsFloat64(), m2o.AsFloat64(), mmo.AsFloat64()

	parallel.ForRange(len(param), func(s, e int) {
		adamwKernel(param, grad, m1, m2, m2max, paramOut, m1Out, m2Out, m2maxOut, p, s, e)
	}, cfg)
	return po, m1o, m2o, mmo
}

// stepFloat16 widens every input to float32, runs the float32 step and narrows the outputs.
func stepFloat16(state AdamWState, p stepParams, cfg parallel.Config) (po, m1o, m2o, mmo *tensor.RawTensor) {
	wide := state
	wide.Param = widen16(state.Param)
	wide.Grad = widen16(state.Grad)
	wide.Moment1 = widen16(state.Moment1)
	wide.Moment2 = widen16(state.Moment2)
	if state.Moment2Max != nil {
		wide.Moment2Max = widen16(state.Moment2Max)
	}

	po, m1o, m2o, mmo = stepFloat32(wide, p, cfg)
	return narrow16(po), narrow16(m1o), narrow16(m2o), narrow16(mmo)
}

func moment2MaxOrZeros(state AdamWState) *tensor.RawTensor {
	if state.Moment2Max != nil {
		return state.Moment2Max
	}
	return tensor.Zeros(state.Param.Shape(), state.Param.DType())
}

func widen16(t *tensor.RawTensor) *tensor.RawTensor {
	out := tensor.Zeros(t.Shape(), tensor.Float32)
	dst := out.AsFloat32()
	for i, v := range t.AsFloat16() {
		dst[i] = v.Float32()
	}
	return out
}

func narrow16(t *tensor.RawTensor) *tensor.RawTensor {
	out := tensor.Zeros(t.Shape(), tensor.Float16)
	dst := out.AsFloat16()
	for i, v := range t.AsFloat32() {
		dst[i] = float16.Fromfloat32(v)
	}
	return out
}
