package serialization

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrChecksumMismatch  = errors.New("checksum mismatch: file may be corrupted")
	ErrOutOfBounds       = errors.New("tensor extends beyond data section")
	ErrInvalidTensorName = errors.New("invalid tensor name")
	ErrHeaderTooLarge    = errors.New("header exceeds maximum size")
	ErrUnknownDType      = errors.New("unknown dtype")
)

// MaxHeaderSize bounds the JSON header accepted by the reader.
const MaxHeaderSize = 100 * 1024 * 1024

// ValidationError provides detailed information about a malformed file.
type ValidationError struct {
	Type    string // Type of error (e.g., "out_of_bounds", "metadata")
	Tensor  string // Tensor name involved
	Details string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Tensor != "" {
		return fmt.Sprintf("%s: tensor %q: %s", e.Type, e.Tensor, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}
