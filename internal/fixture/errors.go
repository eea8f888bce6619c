package fixture

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrTooManyTensors     = errors.New("too many tensors in file")
	ErrInvalidName        = errors.New("invalid name")
	ErrSizeMismatch       = errors.New("data size does not match shape and dtype")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type    string // Type of error (e.g., "invalid_name", "size_mismatch")
	Tensor  string // Tensor name involved, if any
	Details string // Additional details
	Err     error  // Matching sentinel
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}

// Unwrap returns the sentinel so errors.Is works.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
