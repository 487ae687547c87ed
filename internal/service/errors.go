// Package service provides the profile commands, queries and the dispatcher that routes them.
package service

import (
	"context"
	"errors"

	"github.com/phrazzld/profile-api/internal/domain"
	"github.com/phrazzld/profile-api/internal/store"
)

// Kind classifies a failure independently of any transport.
type Kind string

// Failure kinds. Every error returned by this package maps to exactly one.
const (
	// KindInvalid is a malformed request: bad name, missing parameters.
	KindInvalid Kind = "invalid"
	// KindConflict is a create whose name already exists.
	KindConflict Kind = "conflict"
	// KindNotFound references a profile that is not in the registry.
	KindNotFound Kind = "not_found"
	// KindCanceled means the caller's context ended before the work committed.
	KindCanceled Kind = "canceled"
	// KindInternal is any unexpected failure.
	KindInternal Kind = "internal"
)

// KindOf classifies err. It returns "" for a nil error.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrValidation):
		return KindInvalid
	case store.IsDuplicateError(err):
		return KindConflict
	case store.IsNotFoundError(err):
		return KindNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
