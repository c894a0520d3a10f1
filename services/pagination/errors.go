package pagination

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching
var (
	// ErrInvalidGeometry is matched by every *InvalidGeometryError
	ErrInvalidGeometry = errors.New("invalid page geometry")

	// ErrInvalidInput is matched by every *InvalidInputError
	ErrInvalidInput = errors.New("invalid content block")
)

// InvalidGeometryError reports a page geometry or modifier value that makes layout impossible
type InvalidGeometryError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("invalid page geometry: %s=%v %s", e.Field, e.Value, e.Reason)
}

func (e *InvalidGeometryError) Is(target error) bool {
	return target == ErrInvalidGeometry
}

// InvalidInputError reports a content block whose measurement is unusable
type InvalidInputError struct {
	BlockID string
	Field   string
	Value   float64
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid content block %q: %s=%v must be a finite, non-negative number", e.BlockID, e.Field, e.Value)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}
