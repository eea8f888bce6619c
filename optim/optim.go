// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/opref/internal/optim"
	"github.com/born-ml/opref/tensor"
)

// Errors returned by AdamWStep.
var (
	ErrShapeMismatch = optim.ErrShapeMismatch
	ErrInvalidConfig = optim.ErrInvalidConfig
)

// InputError names the input that failed validation.
type InputError = optim.InputError

// Hyperparam is a scalar given either as a fixed value or as a runtime tensor.
type Hyperparam = optim.Hyperparam

// Fixed returns a Hyperparam holding v.
func Fixed(v float64) Hyperparam {
	return optim.Fixed(v)
}

// Runtime returns a Hyperparam read from a 1-element tensor.
func Runtime(t *tensor.RawTensor) Hyperparam {
	return optim.Runtime(t)
}

// AdamW (single step)

// AdamWConfig holds the attributes of one step.
type AdamWConfig = optim.AdamWConfig

// AdamWState holds the tensors and scalars one step reads.
type AdamWState = optim.AdamWState

// AdamWResult holds the outputs of one step.
type AdamWResult = optim.AdamWResult

// AdamWStep computes one AdamW update without modifying its inputs.
//
// Example:
//
//	res, err := optim.AdamWStep(state, optim.AdamWConfig{
//	    Epsilon: 1e-8,
//	    Beta1:   optim.Fixed(0.9),
//	    Beta2:   optim.Fixed(0.999),
//	})
func AdamWStep(state AdamWState, cfg AdamWConfig) (*AdamWResult, error) {
	return optim.AdamWStep(state, cfg)
}

// AdamW (driver)

// Param is a named trainable tensor.
type Param = optim.Param

// Config contains configuration for the AdamW driver.
type Config = optim.Config

// AdamW keeps optimizer state for a set of parameters.
type AdamW = optim.AdamW

// NewAdamW creates a new AdamW driver.
//
// Example:
//
//	opt := optim.NewAdamW(params, optim.Config{
//	    LR:          0.001,
//	    Betas:       [2]float64{0.9, 0.999},
//	    WeightDecay: 0.01,
//	})
func NewAdamW(params []*Param, config Config) *AdamW {
	return optim.NewAdamW(params, config)
}
