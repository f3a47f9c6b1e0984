package workout

import (
	"errors"
	"fmt"
)

// Sentinel kinds for workout errors.
var (
	ErrValidation  = errors.New("invalid workout")
	ErrUnknownKind = errors.New("unknown workout kind")
	ErrDecode      = errors.New("decode workouts failed")
)

// ValidationError reports the first offending field of a rejected workout.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
