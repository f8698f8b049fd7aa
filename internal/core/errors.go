package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks input that failed type or range checks.
	ErrValidation = errors.New("validation error")
	// ErrInvalidID marks an identifier that is not in the store's id format.
	ErrInvalidID = errors.New("invalid expense ID")
	// ErrNotFound marks a well-formed identifier with no matching record.
	ErrNotFound = errors.New("expense not found")
	// ErrNoFieldsProvided marks an update without any updatable field.
	ErrNoFieldsProvided = errors.New("no fields provided for update")
	// ErrStoreUnavailable marks a backend that cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError describes which field was rejected and why.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
