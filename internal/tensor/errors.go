package tensor

import "errors"

// Common errors.
var (
	ErrInvalidShape = errors.New("invalid shape")
	ErrInvalidAxis  = errors.New("invalid axis")
	ErrDType        = errors.New("unsupported dtype")
)
