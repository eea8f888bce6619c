package opcheck

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/born-ml/opref/internal/tensor"
)

// ErrMismatch is returned (wrapped in *MismatchError) when outputs differ.
var ErrMismatch = errors.New("output mismatch")

// Outputs maps output names (e.g. "Out", "ParamOut", "Beta1PowOut") to tensors.
type Outputs map[string]*tensor.RawTensor

// Names returns the output names in sorted order.
func (o Outputs) Names() []string {
	names := make([]string, 0, len(o))
	for name := range o {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ScalarOutput wraps v as a 1-element float64 tensor.
func ScalarOutput(v float64) *tensor.RawTensor {
	t, _ := tensor.FromFloat64([]float64{v}, tensor.Shape{1})
	return t
}

// MismatchError describes the first output that differs from its reference.
type MismatchError struct {
	Output     string  // Output name
	Reason     string  // "missing", "shape", "dtype" or "value"
	Index      int     // First offending flat index (value mismatches)
	Expected   float64 // Reference value at Index
	Actual     float64 // Actual value at Index
	Count      int     // Number of offending elements
	MaxAbsDiff float64 // Largest absolute difference over the output
	Details    string
}

// Error implements the error interface.
func (e *MismatchError) Error() string {
	if e.Reason != "value" {
		return fmt.Sprintf("%s: %s: %s", e.Output, e.Reason, e.Details)
	}
	return fmt.Sprintf("%s: %d elements differ, first at index %d: expected %v, got %v (max abs diff %g)",
		e.Output, e.Count, e.Index, e.Expected, e.Actual, e.MaxAbsDiff)
}

// Unwrap returns ErrMismatch.
func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}

// Compare checks every expected output not named in noCheck against actual.
//
// Shapes and dtypes must match exactly. Bool outputs must be identical; float
// outputs must agree element-wise within tol, where a pair passes if it is within
// either tol.Abs or tol.Rel. NaN matches NaN. Outputs present only in actual are
// ignored.
func Compare(expected, actual Outputs, tol Tolerance, noCheck ...string) error {
	for _, name := range expected.Names() {
		if slices.Contains(noCheck, name) {
			continue
		}
		if err := compareOne(name, expected[name], actual[name], tol); err != nil {
			return err
		}
	}
	return nil
}

func compareOne(name string, want, got *tensor.RawTensor, tol Tolerance) error {
	if got == nil {
		return &MismatchError{Output: name, Reason: "missing", Details: "not produced"}
	}
	if !want.Shape().Equal(got.Shape()) {
		return &MismatchError{Output: name, Reason: "shape", Details: fmt.Sprintf("expected %v, got %v", want.Shape(), got.Shape())}
	}
	if want.DType() != got.DType() {
		return &MismatchError{Output: name, Reason: "dtype", Details: fmt.Sprintf("expected %s, got %s", want.DType(), got.DType())}
	}

	if want.DType() == tensor.Bool {
		return compareBool(name, want.AsBool(), got.AsBool())
	}

	w, err := want.Float64s()
	if err != nil {
		return err
	}
	g, err := got.Float64s()
	if err != nil {
		return err
	}
	return compareFloat(name, w, g, tol)
}

func compareBool(name string, want, got []bool) error {
	var mErr *MismatchError
	for i := range want {
		if want[i] == got[i] {
			continue
		}
		if mErr == nil {
			mErr = &MismatchError{Output: name, Reason: "value", Index: i, Expected: b2f(want[i]), Actual: b2f(got[i]), MaxAbsDiff: 1}
		}
		mErr.Count++
	}
	if mErr != nil {
		return mErr
	}
	return nil
}

func compareFloat(name string, want, got []float64, tol Tolerance) error {
	var mErr *MismatchError
	for i := range want {
		if closeEnough(want[i], got[i], tol) {
			continue
		}
		if mErr == nil {
			mErr = &MismatchError{Output: name, Reason: "value", Index: i, Expected: want[i], Actual: got[i]}
		}
		mErr.Count++
	}
	if mErr == nil {
		return nil
	}

	diff := make([]float64, len(want))
	floats.SubTo(diff, want, got)
	mErr.MaxAbsDiff = floats.Norm(diff, math.Inf(1))
	return mErr
}

func closeEnough(want, got float64, tol Tolerance) bool {
	if math.IsNaN(want) || math.IsNaN(got) {
		return math.IsNaN(want) && math.IsNaN(got)
	}
	if want == got {
		return true
	}
	return scalar.EqualWithinAbsOrRel(want, got, tol.Abs, tol.Rel)
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
