package opcheck

import (
	"bytes"
	"fmt"

	"github.com/born-ml/opref/internal/optim"
	"github.com/born-ml/opref/internal/reduce"
	"github.com/born-ml/opref/internal/tensor"
)

// ReduceInputs are the inputs of a boolean reduction.
type ReduceInputs struct {
	X        *tensor.RawTensor
	Axes     []int
	KeepDims bool
}

// AdamWInputs are the tensors, scalars and attributes of one AdamW step.
type AdamWInputs struct {
	State  optim.AdamWState
	Config optim.AdamWConfig
}

// Inputs carries the operands of one scenario. Exactly one of Reduce and
// AdamW is set, matching the scenario's op.
type Inputs struct {
	Scenario string // Name of the scenario the inputs were built for
	Reduce   *ReduceInputs
	AdamW    *AdamWInputs
}

// Reference computes the reference outputs of op.
//
// Output names:
//   - reduce_any, reduce_all: Out
//   - adamw: ParamOut, Moment1Out, Moment2Out, Moment2MaxOut, Beta1PowOut, Beta2PowOut
//
// Scalar outputs are 1-element float64 tensors.
func Reference(op string, in Inputs) (Outputs, error) {
	switch op {
	case OpReduceAny, OpReduceAll:
		if in.Reduce == nil {
			return nil, fmt.Errorf("opcheck: %s: missing reduce inputs", op)
		}
		fn := reduce.Any
		if op == OpReduceAll {
			fn = reduce.All
		}
		out, err := fn(in.Reduce.X, in.Reduce.Axes, in.Reduce.KeepDims)
		if err != nil {
			return nil, err
		}
		return Outputs{"Out": out}, nil

	case OpAdamW:
		if in.AdamW == nil {
			return nil, fmt.Errorf("opcheck: %s: missing adamw inputs", op)
		}
		res, err := optim.AdamWStep(in.AdamW.State, in.AdamW.Config)
		if err != nil {
			return nil, err
		}
		return Outputs{
			"ParamOut":      res.ParamOut,
			"Moment1Out":    res.Moment1Out,
			"Moment2Out":    res.Moment2Out,
			"Moment2MaxOut": res.Moment2MaxOut,
			"Beta1PowOut":   ScalarOutput(res.Beta1PowOut),
			"Beta2PowOut":   ScalarOutput(res.Beta2PowOut),
		}, nil

	default:
		return nil, fmt.Errorf("opcheck: unknown op %q", op)
	}
}

// tensors lists every input tensor by name.
func (in Inputs) tensors() map[string]*tensor.RawTensor {
	out := make(map[string]*tensor.RawTensor)
	if in.Reduce != nil {
		out["X"] = in.Reduce.X
	}
	if in.AdamW != nil {
		s := in.AdamW.State
		for name, t := range map[string]*tensor.RawTensor{
			"Param":       s.Param,
			"Grad":        s.Grad,
			"Moment1":     s.Moment1,
			"Moment2":     s.Moment2,
			"Moment2Max":  s.Moment2Max,
			"Beta1Tensor": s.Beta1Tensor,
			"Beta2Tensor": s.Beta2Tensor,
		} {
			if t != nil {
				out[name] = t
			}
		}
	}
	return out
}

// snapshot copies every input buffer so later mutation can be detected.
func (in Inputs) snapshot() map[string][]byte {
	snap := make(map[string][]byte)
	for name, t := range in.tensors() {
		snap[name] = bytes.Clone(t.Data())
	}
	return snap
}

// mutated returns the name of the first input whose buffer differs from snap.
func (in Inputs) mutated(snap map[string][]byte) (string, bool) {
	for name, t := range in.tensors() {
		if !bytes.Equal(snap[name], t.Data()) {
			return name, true
		}
	}
	return "", false
}
