// Package optim implements the AdamW optimizer step and a multi-parameter driver around it.
//
// This package provides:
//   - AdamWStep: pure single-tensor update (no retained state)
//   - AdamW: holds per-parameter moments and power accumulators, feeds each
//     step's outputs into the next, and updates independent parameters concurrently
package optim

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/born-ml/opref/internal/parallel"
	"github.com/born-ml/opref/internal/tensor"
)

// Param is a named trainable tensor.
type Param struct {
	Name  string
	Value *tensor.RawTensor
}

// Config holds configuration for the AdamW driver.
type Config struct {
	LR             float64    // Learning rate (default: 0.001)
	Betas          [2]float64 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps            float64    // Term for numerical stability (default: 1e-8)
	WeightDecay    float64    // Decoupled decay coefficient; 0 disables decay
	AMSGrad        bool       // Use the running max of the second moment
	MaxConcurrency int        // Parameters stepped at once (default: GOMAXPROCS-sized pool via parallel.DefaultConfig)
}

// slot is the optimizer state carried between steps for one parameter.
type slot struct {
	moment1, moment2, moment2Max *tensor.RawTensor
	beta1Pow, beta2Pow           float64
}

// AdamW applies AdamWStep to a set of parameters and keeps their state.
//
// Example:
//
//	opt := optim.NewAdamW(params, optim.Config{LR: 0.01, WeightDecay: 0.02})
//	for range steps {
//	    grads := computeGrads(params)
//	    if err := opt.Step(ctx, grads); err != nil {
//	        return err
//	    }
//	}
type AdamW struct {
	mu     sync.Mutex
	params []*Param
	slots  map[string]*slot
	cfg    Config
	pcfg   parallel.Config
	t      int
}

// NewAdamW creates a new AdamW driver.
//
// Default hyperparameters:
//   - LR: 0.001
//   - Beta1: 0.9
//   - Beta2: 0.999
//   - Eps: 1e-8
func NewAdamW(params []*Param, config Config) *AdamW {
	// Set defaults
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	pcfg := parallel.DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = pcfg.NumWorkers
	}

	return &AdamW{
		params: params,
		slots:  make(map[string]*slot, len(params)),
		cfg:    config,
		pcfg:   pcfg,
	}
}

// Step performs a single optimization step over every parameter that has a gradient.
//
// Parameters without a gradient are skipped. Parameters are updated concurrently;
// if any update fails, or ctx is cancelled, no parameter or state is changed.
func (o *AdamW) Step(ctx context.Context, grads map[string]*tensor.RawTensor) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	logger := zerolog.Ctx(ctx)
	results := make([]*AdamWResult, len(o.params))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.MaxConcurrency)

	for i, p := range o.params {
		grad, ok := grads[p.Name]
		if !ok || grad == nil {
			logger.Debug().Str("param", p.Name).Msg("no gradient, skipping")
			continue
		}
		state := o.stateFor(p, grad)

		i, p := i, p // per-iteration copies (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := AdamWStep(state, o.stepConfig())
			if err != nil {
				return fmt.Errorf("param %q: %w", p.Name, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logger.Warn().Err(err).Int("step", o.t+1).Msg("adamw step failed, state unchanged")
		return err
	}

	for i, res := range results {
		if res == nil {
			continue
		}
		p := o.params[i]
		p.Value = res.ParamOut
		o.slots[p.Name] = &slot{
			moment1:    res.Moment1Out,
			moment2:    res.Moment2Out,
			moment2Max: res.Moment2MaxOut,
			beta1Pow:   res.Beta1PowOut,
			beta2Pow:   res.Beta2PowOut,
		}
	}
	o.t++

	logger.Debug().Int("step", o.t).Float64("lr", o.cfg.LR).Msg("adamw step")
	return nil
}

// stateFor builds the step input for p, initializing state on first use.
// The power accumulators start at beta so the first step uses 1-beta for bias correction.
func (o *AdamW) stateFor(p *Param, grad *tensor.RawTensor) AdamWState {
	s, ok := o.slots[p.Name]
	if !ok {
		shape, dtype := p.Value.Shape(), p.Value.DType()
		s = &slot{
			moment1:  tensor.Zeros(shape, dtype),
			moment2:  tensor.Zeros(shape, dtype),
			beta1Pow: o.cfg.Betas[0],
			beta2Pow: o.cfg.Betas[1],
		}
		if o.cfg.AMSGrad {
			s.moment2Max = tensor.Zeros(shape, dtype)
		}
	}

	return AdamWState{
		Param:        p.Value,
		Grad:         grad,
		Moment1:      s.moment1,
		Moment2:      s.moment2,
		Moment2Max:   s.moment2Max,
		LearningRate: o.cfg.LR,
		Beta1Pow:     s.beta1Pow,
		Beta2Pow:     s.beta2Pow,
	}
}

func (o *AdamW) stepConfig() AdamWConfig {
	return AdamWConfig{
		Epsilon:   o.cfg.Eps,
		Beta1:     Fixed(o.cfg.Betas[0]),
		Beta2:     Fixed(o.cfg.Betas[1]),
		Coeff:     o.cfg.WeightDecay,
		WithDecay: o.cfg.WeightDecay != 0,
		AMSGrad:   o.cfg.AMSGrad,
		Parallel:  o.pcfg,
	}
}

// GetLR returns the current learning rate.
func (o *AdamW) GetLR() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cfg.LR
}

// SetLR updates the learning rate.
//
// Useful for learning rate scheduling during training.
func (o *AdamW) SetLR(lr float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cfg.LR = lr
}

// GetTimestep returns the number of completed steps.
func (o *AdamW) GetTimestep() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.t
}

// Moments returns the current first and second moments of a parameter,
// or nils if it has not been stepped yet.
func (o *AdamW) Moments(name string) (m1, m2 *tensor.RawTensor) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s, ok := o.slots[name]
	if !ok {
		return nil, nil
	}
	return s.moment1, s.moment2
}
