// Package errors holds the error taxonomy shared by the service layers.
// Handlers map these to HTTP status codes; everything else is opaque.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrNotFound is returned when an entity does not exist in the store.
var ErrNotFound = stderrors.New("not found")

// ErrInvalidTransition is wrapped by status changes that are not allowed.
var ErrInvalidTransition = stderrors.New("invalid status transition")

// ValidationError reports a bad input scoped to a single field.
type ValidationError struct {
	Field   string            `json:"field"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: map[string]string{field: message},
	}
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// Is, As and Join re-export the standard helpers so callers need one import.
func Is(err, target error) bool { return stderrors.Is(err, target) }

func As(err error, target any) bool { return stderrors.As(err, target) }

func Join(errs ...error) error { return stderrors.Join(errs...) }

// New mirrors errors.New.
func New(text string) error { return stderrors.New(text) }
