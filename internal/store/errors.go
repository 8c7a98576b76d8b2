package store

import (
	"errors"
	"fmt"
)

// ErrProfileNotFound reports a lookup for a profile id that does not exist.
var ErrProfileNotFound = errors.New("device profile not found")

// ErrCoordinateNotFound reports a lookup for a coordinate that does not exist.
var ErrCoordinateNotFound = errors.New("coordinate not found")

// ErrDuplicateElement reports a create for a (profile, element kind) pair that
// already has a record. Callers wanting overwrite semantics use Upsert.
var ErrDuplicateElement = errors.New("coordinate already exists for element")

// ValidationError reports malformed input, rejected before any state mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a validation failure, as opposed to a
// not-found or storage error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validateCoordinate(x, y int, confidence float64, touchRadius int) error {
	if x < 0 {
		return &ValidationError{Field: "x", Reason: "must be >= 0"}
	}
	if y < 0 {
		return &ValidationError{Field: "y", Reason: "must be >= 0"}
	}
	if confidence < 0 || confidence > 1 {
		return &ValidationError{Field: "confidence", Reason: "must be in [0,1]"}
	}
	if touchRadius < 1 {
		return &ValidationError{Field: "touch_radius", Reason: "must be >= 1"}
	}
	return nil
}
