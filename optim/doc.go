// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the AdamW optimizer.
//
// # Overview
//
// This package contains:
//   - AdamWStep: one pure AdamW update with decoupled weight decay
//   - AdamW: a driver that keeps per-parameter state across steps
//
// # Single Step
//
//	res, err := optim.AdamWStep(
//	    optim.AdamWState{
//	        Param: param, Grad: grad, Moment1: m1, Moment2: m2,
//	        LearningRate: 0.001,
//	        Beta1Pow:     0.9,
//	        Beta2Pow:     0.999,
//	    },
//	    optim.AdamWConfig{
//	        Epsilon:   1e-8,
//	        Beta1:     optim.Fixed(0.9),
//	        Beta2:     optim.Fixed(0.999),
//	        Coeff:     0.01,
//	        WithDecay: true,
//	    },
//	)
//
// Betas can also be supplied at runtime as 1-element tensors through
// AdamWState.Beta1Tensor/Beta2Tensor; a fixed value in the config wins.
//
// # Training Loop Pattern
//
//	opt := optim.NewAdamW(params, optim.Config{LR: 0.001, WeightDecay: 0.01})
//	for epoch := range numEpochs {
//	    grads := computeGrads(params)
//	    if err := opt.Step(ctx, grads); err != nil {
//	        return err
//	    }
//	}
package optim
