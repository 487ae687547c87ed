package store

import (
	"errors"
	"fmt"
)

// Common store errors.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity.
	ErrDuplicate = errors.New("entity already exists")

	// ErrTransactionFailed is returned when a transaction function fails in an
	// unexpected way (for example by panicking). Nothing is committed.
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrProfileNotFound indicates that the requested profile does not exist.
	ErrProfileNotFound = fmt.Errorf("%w: profile", ErrNotFound)

	// ErrProfileExists indicates that a profile with the same trimmed name already exists.
	ErrProfileExists = fmt.Errorf("%w: profile", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "profile")
	Operation string // The operation that failed (e.g., "create", "update")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// ProfileError reports a failure tied to one profile name. Its message is
// safe to show to clients; Err carries the classification.
type ProfileError struct {
	Name string
	Err  error // ErrProfileExists or ErrProfileNotFound
}

// Error implements the error interface for ProfileError.
func (e *ProfileError) Error() string {
	if errors.Is(e.Err, ErrDuplicate) {
		return fmt.Sprintf("a profile named '%s' already exists", e.Name)
	}
	return fmt.Sprintf("profile '%s' not found", e.Name)
}

// Unwrap returns the classifying sentinel.
func (e *ProfileError) Unwrap() error {
	return e.Err
}

// ProfileExistsError builds the Conflict error returned when name is already taken.
func ProfileExistsError(name string) error {
	return &ProfileError{Name: name, Err: ErrProfileExists}
}

// ProfileNotFoundError builds the NotFound error for name.
func ProfileNotFoundError(name string) error {
	return &ProfileError{Name: name, Err: ErrProfileNotFound}
}
