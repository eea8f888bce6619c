package fixture

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/born-ml/opref/internal/tensor"
)

// Validation limits.
const (
	MaxTensorCount = 1024 // Maximum number of tensors in a file
	MaxNameLen     = 256  // Maximum tensor or scenario name length
)

// ValidateName checks tensor and scenario names. Scenario names double as
// file names, so path separators and traversal are rejected.
func ValidateName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Type: "invalid_name", Details: "empty name", Err: ErrInvalidName}
	case len(name) > MaxNameLen:
		return &ValidationError{
			Type:    "invalid_name",
			Tensor:  name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxNameLen),
			Err:     ErrInvalidName,
		}
	case strings.Contains(name, ".."):
		return &ValidationError{Type: "invalid_name", Tensor: name, Details: "contains '..'", Err: ErrInvalidName}
	case strings.ContainsAny(name, "/\\\x00"):
		return &ValidationError{Type: "invalid_name", Tensor: name, Details: "contains path separator or null byte", Err: ErrInvalidName}
	}
	return nil
}

// validateRecord checks a decoded record against its own shape and dtype.
func validateRecord(r record) (tensor.DataType, error) {
	if err := ValidateName(r.Name); err != nil {
		return 0, err
	}
	dtype, err := tensor.ParseDataType(r.DType)
	if err != nil {
		return 0, &ValidationError{Type: "invalid_dtype", Tensor: r.Name, Details: err.Error(), Err: err}
	}
	shape := tensor.Shape(r.Shape)
	if err := shape.Validate(); err != nil {
		return 0, &ValidationError{Type: "invalid_shape", Tensor: r.Name, Details: err.Error(), Err: err}
	}
	if want := shape.NumElements() * dtype.Size(); want != len(r.Data) {
		return 0, &ValidationError{
			Type:    "size_mismatch",
			Tensor:  r.Name,
			Details: fmt.Sprintf("shape %v of %s needs %d bytes, got %d", shape, dtype, want, len(r.Data)),
			Err:     ErrSizeMismatch,
		}
	}
	if dtype == tensor.Bool {
		for i, b := range r.Data {
			if b > 1 {
				return 0, &ValidationError{
					Type:    "invalid_bool",
					Tensor:  r.Name,
					Details: fmt.Sprintf("byte %d is %d, must be 0 or 1", i, b),
					Err:     ErrSizeMismatch,
				}
			}
		}
	}
	return dtype, nil
}

// computeChecksum hashes every record's name and data in order.
func computeChecksum(records []record) [32]byte {
	h := sha256.New()
	for _, r := range records {
		h.Write([]byte(r.Name))
		h.Write([]byte{0})
		h.Write(r.Data)
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}
