package opcheck

import (
	"context"
	"fmt"

	"github.com/born-ml/opref/internal/fixture"
)

// Kernel is the operator implementation under test.
type Kernel interface {
	Name() string
	Run(ctx context.Context, op string, in Inputs) (Outputs, error)
}

// ReferenceKernel runs the reference implementation itself. Checking it
// against Reference exercises the harness end to end.
type ReferenceKernel struct{}

// Name implements Kernel.
func (ReferenceKernel) Name() string { return "reference" }

// Run implements Kernel.
func (ReferenceKernel) Run(ctx context.Context, op string, in Inputs) (Outputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Reference(op, in)
}

// GoldenKernel replays outputs recorded in fixture files, one per scenario,
// at fixture.Path(Dir, scenario).
//
// An external operator implementation hands over its results by writing these
// files from the same seed and inputs.
type GoldenKernel struct {
	Dir string
}

// Name implements Kernel.
func (g GoldenKernel) Name() string { return "golden:" + g.Dir }

// Run implements Kernel.
func (g GoldenKernel) Run(ctx context.Context, op string, in Inputs) (Outputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := fixture.Load(fixture.Path(g.Dir, in.Scenario))
	if err != nil {
		return nil, err
	}
	if f.Scenario != in.Scenario {
		return nil, fmt.Errorf("opcheck: fixture for %q holds scenario %q", in.Scenario, f.Scenario)
	}
	return Outputs(f.Tensors), nil
}

// Record writes out as the fixture for scenario inside dir.
func Record(dir, scenario string, out Outputs) error {
	return fixture.Save(fixture.Path(dir, scenario), scenario, fixture.Set(out))
}
