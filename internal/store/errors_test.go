package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "generic error", err: errors.New("some error"), expected: false},
		{name: "ErrNotFound", err: ErrNotFound, expected: true},
		{name: "ErrProfileNotFound", err: ErrProfileNotFound, expected: true},
		{
			name:     "wrapped ErrProfileNotFound",
			err:      fmt.Errorf("failed to find profile: %w", ErrProfileNotFound),
			expected: true,
		},
		{name: "constructed not found", err: ProfileNotFoundError("ADMIN"), expected: true},
		{name: "duplicate is not not-found", err: ErrProfileExists, expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsNotFoundError(tc.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil error", err: nil, expected: false},
		{name: "ErrDuplicate", err: ErrDuplicate, expected: true},
		{name: "ErrProfileExists", err: ErrProfileExists, expected: true},
		{name: "constructed conflict", err: ProfileExistsError("ADMIN"), expected: true},
		{name: "not found is not duplicate", err: ErrProfileNotFound, expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsDuplicateError(tc.err))
		})
	}
}

func TestProfileExistsErrorMessage(t *testing.T) {
	err := ProfileExistsError("alpha")
	assert.Equal(t, "a profile named 'alpha' already exists", err.Error())

	var profileErr *ProfileError
	require.True(t, errors.As(err, &profileErr))
	assert.Equal(t, "alpha", profileErr.Name)
	assert.ErrorIs(t, err, ErrProfileExists)
}

func TestProfileNotFoundErrorMessage(t *testing.T) {
	err := ProfileNotFoundError("beta")
	assert.Equal(t, "profile 'beta' not found", err.Error())
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.False(t, IsDuplicateError(err))
}

func TestStoreError(t *testing.T) {
	baseErr := errors.New("base error")

	t.Run("with wrapped error", func(t *testing.T) {
		err := NewStoreError("profile", "create", "failed to create", baseErr)
		assert.Equal(t, "create operation on profile failed: failed to create: base error", err.Error())
		assert.True(t, errors.Is(err, baseErr))
	})

	t.Run("without wrapped error", func(t *testing.T) {
		err := NewStoreError("profile", "delete", "not allowed", nil)
		assert.Equal(t, "delete operation on profile failed: not allowed", err.Error())
		assert.Nil(t, errors.Unwrap(err))
	})

	t.Run("errors.As", func(t *testing.T) {
		wrapped := fmt.Errorf("outer: %w", NewStoreError("profile", "transact", "panic", ErrTransactionFailed))
		var storeErr *StoreError
		assert.True(t, errors.As(wrapped, &storeErr))
		assert.Equal(t, "transact", storeErr.Operation)
		assert.True(t, errors.Is(wrapped, ErrTransactionFailed))
	})
}
