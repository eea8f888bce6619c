package optim

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrInvalidConfig = errors.New("invalid config")
)

// InputError describes which named input of an optimizer step failed validation.
type InputError struct {
	Op      string // Operator name (e.g. "adamw")
	Input   string // Offending input or attribute (e.g. "Moment1", "beta1")
	Details string // Additional details
	Err     error  // ErrShapeMismatch or ErrInvalidConfig
}

// Error implements the error interface.
func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %v: %s: %s", e.Op, e.Err, e.Input, e.Details)
}

// Unwrap returns the sentinel so errors.Is works.
func (e *InputError) Unwrap() error {
	return e.Err
}

func shapeErr(input, format string, args ...any) error {
	return &InputError{Op: "adamw", Input: input, Details: fmt.Sprintf(format, args...), Err: ErrShapeMismatch}
}

func configErr(input, format string, args ...any) error {
	return &InputError{Op: "adamw", Input: input, Details: fmt.Sprintf(format, args...), Err: ErrInvalidConfig}
}
