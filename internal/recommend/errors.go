package recommend

import (
	"errors"
	"fmt"
)

// ErrInvalidLimit is returned when a result limit is not positive.
var ErrInvalidLimit = errors.New("limit must be positive")

// InputError reports a malformed request. Callers are expected to validate
// input before calling the engine, so an InputError is a programming error.
type InputError struct {
	Field string
	Cause error
}

func (e *InputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid %s: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("invalid %s", e.Field)
}

func (e *InputError) Unwrap() error {
	return e.Cause
}

func checkLimit(limit int) error {
	if limit <= 0 {
		return &InputError{Field: "limit", Cause: ErrInvalidLimit}
	}
	return nil
}
