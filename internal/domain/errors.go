package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrEmptyProfileName is returned when a profile name is empty or blank.
	ErrEmptyProfileName = fmt.Errorf("%w: profile name cannot be empty", ErrValidation)

	// ErrProfileNameTooLong is returned when a profile name exceeds MaxProfileNameLength.
	ErrProfileNameTooLong = fmt.Errorf("%w: profile name too long", ErrValidation)

	// ErrNilParameters is returned when a profile carries no parameter map at all.
	ErrNilParameters = fmt.Errorf("%w: parameters cannot be nil", ErrValidation)

	// ErrEmptyParameters is returned when at least one parameter is required.
	ErrEmptyParameters = fmt.Errorf("%w: at least one parameter is required", ErrValidation)
)

// ValidationError describes a single field that failed validation.
// It unwraps to the sentinel that classifies it, so errors.Is(err, ErrValidation)
// holds for every ValidationError built with NewValidationError.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the wrapped sentinel to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrValidation
	}
	return e.Err
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
