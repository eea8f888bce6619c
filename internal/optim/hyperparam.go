package optim

import (
	"errors"
	"strconv"

	"github.com/born-ml/opref/internal/tensor"
)

type hyperparamKind uint8

const (
	hyperparamUnset hyperparamKind = iota
	hyperparamFixed
	hyperparamRuntime
)

// Hyperparam is a scalar hyperparameter supplied either as a fixed value or as
// a 1-element runtime tensor. The zero value is unset.
//
// Both forms are resolved into a plain float64 once, when a step starts.
//
// Example:
//
//	cfg.Beta1 = optim.Fixed(0.9)
//	cfg.Beta2 = optim.Runtime(beta2Tensor)
type Hyperparam struct {
	kind   hyperparamKind
	value  float64
	tensor *tensor.RawTensor
}

// Fixed returns a Hyperparam holding v.
func Fixed(v float64) Hyperparam {
	return Hyperparam{kind: hyperparamFixed, value: v}
}

// Runtime returns a Hyperparam read from a 1-element floating point tensor.
// A nil tensor yields an unset Hyperparam.
func Runtime(t *tensor.RawTensor) Hyperparam {
	if t == nil {
		return Hyperparam{}
	}
	return Hyperparam{kind: hyperparamRuntime, tensor: t}
}

// IsSet reports whether h carries a value.
func (h Hyperparam) IsSet() bool {
	return h.kind != hyperparamUnset
}

// Resolve returns the concrete value.
func (h Hyperparam) Resolve() (float64, error) {
	switch h.kind {
	case hyperparamFixed:
		return h.value, nil
	case hyperparamRuntime:
		return h.tensor.Scalar()
	default:
		return 0, errors.New("hyperparameter not set")
	}
}

// String implements fmt.Stringer.
func (h Hyperparam) String() string {
	switch h.kind {
	case hyperparamFixed:
		return strconv.FormatFloat(h.value, 'g', -1, 64)
	case hyperparamRuntime:
		return "runtime" + h.tensor.String()
	default:
		return "unset"
	}
}

// resolveFirst resolves the first set Hyperparam in order of precedence.
func resolveFirst(name string, candidates ...Hyperparam) (float64, error) {
	for _, h := range candidates {
		if !h.IsSet() {
			continue
		}
		v, err := h.Resolve()
		if err != nil {
			return 0, configErr(name, "%v", err)
		}
		return v, nil
	}
	return 0, configErr(name, "neither a fixed value nor a runtime tensor was supplied")
}
