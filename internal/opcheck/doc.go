// Package opcheck compares an operator implementation against reference outputs.
//
// A Scenario builds seeded inputs for one op. The Runner computes the reference
// outputs with Reference, runs the Kernel under test on the same inputs and
// checks the results with Compare, using the op's Tolerance and skipping
// don't-care outputs listed in Scenario.NoCheck.
//
// Example:
//
//	r := &opcheck.Runner{Kernel: opcheck.GoldenKernel{Dir: "out"}, Seed: 2021, Logger: log.Logger}
//	report, err := r.Run(ctx, opcheck.DefaultScenarios())
//	if err != nil {
//	    return err
//	}
//	if !report.OK() {
//	    ...
//	}
package opcheck
