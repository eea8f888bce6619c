// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/opref/optim"
	"github.com/born-ml/opref/tensor"
)

func TestAdamWStep_PublicAPI(t *testing.T) {
	p, _ := tensor.FromFloat64([]float64{1, 2}, tensor.Shape{2})
	g, _ := tensor.FromFloat64([]float64{0.1, -0.1}, tensor.Shape{2})
	m := tensor.Zeros(tensor.Shape{2}, tensor.Float64)

	res, err := optim.AdamWStep(
		optim.AdamWState{Param: p, Grad: g, Moment1: m, Moment2: m, LearningRate: 0.1, Beta1Pow: 0.9, Beta2Pow: 0.999},
		optim.AdamWConfig{Epsilon: 1e-8, Beta1: optim.Fixed(0.9), Beta2: optim.Fixed(0.999)},
	)
	require.NoError(t, err)
	assert.Less(t, res.ParamOut.AsFloat64()[0], 1.0)
	assert.Greater(t, res.ParamOut.AsFloat64()[1], 2.0)

	_, err = optim.AdamWStep(optim.AdamWState{Param: p, Grad: g, Moment1: m, Moment2: m}, optim.AdamWConfig{})
	assert.ErrorIs(t, err, optim.ErrInvalidConfig)
}

func TestAdamW_PublicAPI(t *testing.T) {
	p, _ := tensor.FromFloat64([]float64{1}, tensor.Shape{1})
	g, _ := tensor.FromFloat64([]float64{1}, tensor.Shape{1})
	param := &optim.Param{Name: "w", Value: p}

	opt := optim.NewAdamW([]*optim.Param{param}, optim.Config{LR: 0.1})
	require.NoError(t, opt.Step(context.Background(), map[string]*tensor.RawTensor{"w": g}))
	assert.InDelta(t, 0.9, param.Value.AsFloat64()[0], 1e-6)
}
