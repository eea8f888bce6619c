package opcheck

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("opref-opcheck")

// Runner checks a Kernel against the reference outputs of a list of scenarios.
//
// Every scenario draws its inputs from a fresh rand.Rand seeded with Seed, so a
// scenario's inputs do not depend on which other scenarios run.
type Runner struct {
	Kernel    Kernel
	Seed      int64
	Logger    zerolog.Logger
	Filter    *regexp.Regexp // Only scenarios whose name matches run; nil runs all
	Tags      []string       // Tagged scenarios run only if one of their tags is listed
	RecordDir string         // When set, reference outputs are saved as fixtures
}

// CaseResult is the outcome of one scenario.
type CaseResult struct {
	Scenario string
	Op       string
	Result   string // "pass", "fail" or "error"
	Err      error
	Duration time.Duration
}

// Report summarizes a run.
type Report struct {
	Kernel  string
	Results []CaseResult
	Skipped []string
}

// Count returns the number of cases with the given result.
func (r *Report) Count(result string) int {
	n := 0
	for _, c := range r.Results {
		if c.Result == result {
			n++
		}
	}
	return n
}

// OK reports whether every scenario passed.
func (r *Report) OK() bool {
	return r.Count(resultPass) == len(r.Results)
}

// Failures returns the cases that did not pass.
func (r *Report) Failures() []CaseResult {
	var out []CaseResult
	for _, c := range r.Results {
		if c.Result != resultPass {
			out = append(out, c)
		}
	}
	return out
}

// Run executes scenarios in order. It only returns an error if ctx is done;
// scenario failures are reported in the Report.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) (*Report, error) {
	if r.Kernel == nil {
		return nil, errors.New("opcheck: runner has no kernel")
	}

	ctx, span := tracer.Start(ctx, "Run", trace.WithAttributes(
		attribute.String("kernel", r.Kernel.Name()),
		attribute.Int64("seed", r.Seed),
	))
	defer span.End()

	report := &Report{Kernel: r.Kernel.Name()}
	for _, sc := range scenarios {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			return report, err
		}
		if !r.selected(sc) {
			report.Skipped = append(report.Skipped, sc.Name)
			r.Logger.Debug().Str("scenario", sc.Name).Msg("skipped")
			continue
		}

		res := r.runCase(ctx, sc)
		report.Results = append(report.Results, res)
	}

	span.SetAttributes(
		attribute.Int("passed", report.Count(resultPass)),
		attribute.Int("failed", len(report.Results)-report.Count(resultPass)),
	)
	if !report.OK() {
		span.SetStatus(codes.Error, "scenarios failed")
	}
	return report, nil
}

func (r *Runner) selected(sc Scenario) bool {
	if r.Filter != nil && !r.Filter.MatchString(sc.Name) {
		return false
	}
	if len(sc.Tags) == 0 {
		return true
	}
	return slices.ContainsFunc(sc.Tags, func(tag string) bool {
		return slices.Contains(r.Tags, tag)
	})
}

func (r *Runner) runCase(ctx context.Context, sc Scenario) CaseResult {
	ctx, span := tracer.Start(ctx, "Scenario", trace.WithAttributes(
		attribute.String("scenario", sc.Name),
		attribute.String("op", sc.Op),
	))
	defer span.End()

	start := time.Now()
	err := r.check(ctx, sc)
	elapsed := time.Since(start)

	res := CaseResult{Scenario: sc.Name, Op: sc.Op, Result: resultPass, Err: err, Duration: elapsed}
	var mErr *MismatchError
	switch {
	case err == nil:
	case errors.As(err, &mErr):
		res.Result = resultFail
		mismatchedElements.WithLabelValues(sc.Op).Add(float64(max(mErr.Count, 1)))
	default:
		res.Result = resultError
	}

	casesTotal.WithLabelValues(sc.Op, res.Result).Inc()
	caseDuration.WithLabelValues(sc.Op).Observe(elapsed.Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, res.Result)
		r.Logger.Error().Err(err).
			Str("scenario", sc.Name).
			Str("op", sc.Op).
			Str("result", res.Result).
			Dur("elapsed", elapsed).
			Msg("scenario failed")
	} else {
		r.Logger.Info().
			Str("scenario", sc.Name).
			Str("op", sc.Op).
			Dur("elapsed", elapsed).
			Msg("scenario passed")
	}
	return res
}

func (r *Runner) check(ctx context.Context, sc Scenario) error {
	tol, err := sc.Tolerance()
	if err != nil {
		return err
	}

	in, err := sc.Build(rand.New(rand.NewSource(r.Seed)))
	if err != nil {
		return fmt.Errorf("build inputs: %w", err)
	}
	in.Scenario = sc.Name

	expected, err := Reference(sc.Op, in)
	if err != nil {
		return fmt.Errorf("reference: %w", err)
	}
	if r.RecordDir != "" {
		if err := Record(r.RecordDir, sc.Name, expected); err != nil {
			return fmt.Errorf("record: %w", err)
		}
	}

	snap := in.snapshot()
	actual, err := r.Kernel.Run(ctx, sc.Op, in)
	if err != nil {
		return fmt.Errorf("kernel %s: %w", r.Kernel.Name(), err)
	}
	if name, ok := in.mutated(snap); ok {
		return fmt.Errorf("kernel %s modified input %s", r.Kernel.Name(), name)
	}

	return Compare(expected, actual, tol, sc.NoCheck...)
}
