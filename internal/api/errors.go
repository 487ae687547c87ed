package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/phrazzld/profile-api/internal/api/shared"
	"github.com/phrazzld/profile-api/internal/domain"
	"github.com/phrazzld/profile-api/internal/service"
	"github.com/phrazzld/profile-api/internal/store"
)

// MapErrorToStatusCode maps an error's kind to an HTTP status code.
func MapErrorToStatusCode(err error) int {
	switch service.KindOf(err) {
	case service.KindInvalid:
		return http.StatusBadRequest
	case service.KindConflict:
		return http.StatusConflict
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindCanceled:
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for err. Messages of
// our own error types are safe to show; anything else is replaced by a
// generic message.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError
	var profileErr *store.ProfileError

	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &profileErr):
		return profileErr.Error()
	}

	switch service.KindOf(err) {
	case service.KindInvalid:
		return "Invalid request"
	case service.KindConflict:
		return "Profile already exists"
	case service.KindNotFound:
		return "Profile not found"
	case service.KindCanceled:
		return "Request canceled"
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError turns validator errors into a short message
// naming the first failing field, without exposing Go type names.
func SanitizeValidationError(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "Validation error"
	}

	fe := validationErrs[0]
	return fmt.Sprintf("Invalid %s: %s", strings.ToLower(fe.Field()), getValidationTagMessage(fe.Tag()))
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "min":
		return "too short"
	case "max":
		return "too long"
	default:
		return "validation failed"
	}
}

// HandleAPIError writes the error response for err, choosing the status
// code and message from its kind.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, opts ...shared.ResponseOption) {
	status := MapErrorToStatusCode(err)
	if status == http.StatusConflict {
		opts = append(opts, shared.WithElevatedLogLevel())
	}
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err, opts...)
}
