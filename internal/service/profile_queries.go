package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/profile-api/internal/domain"
	"github.com/phrazzld/profile-api/internal/platform/logger"
	"github.com/phrazzld/profile-api/internal/store"
)

// ListProfilesQuery asks for every profile.
type ListProfilesQuery struct{}

// RequestName implements Request.
func (ListProfilesQuery) RequestName() string { return "list_profiles" }

// GetProfileQuery asks for the profile named Name.
type GetProfileQuery struct {
	Name string
}

// RequestName implements Request.
func (GetProfileQuery) RequestName() string { return "get_profile" }

// ValidateParameterQuery asks whether Parameter is enabled on profile Name.
type ValidateParameterQuery struct {
	Name      string
	Parameter string
}

// RequestName implements Request.
func (ValidateParameterQuery) RequestName() string { return "validate_parameter" }

// ListProfilesHandler handles ListProfilesQuery.
type ListProfilesHandler struct {
	registry Registry
}

// NewListProfilesHandler creates a ListProfilesHandler.
func NewListProfilesHandler(registry Registry) *ListProfilesHandler {
	return &ListProfilesHandler{registry: registry}
}

// Handle returns a snapshot of all profiles in insertion order.
func (h *ListProfilesHandler) Handle(ctx context.Context, _ ListProfilesQuery) ([]domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.registry.Snapshot(), nil
}

// GetProfileHandler handles GetProfileQuery.
type GetProfileHandler struct {
	registry Registry
	logger   *slog.Logger
}

// NewGetProfileHandler creates a GetProfileHandler.
func NewGetProfileHandler(registry Registry, log *slog.Logger) *GetProfileHandler {
	return &GetProfileHandler{registry: registry, logger: log}
}

// Handle returns the profile whose name equals Name exactly.
func (h *GetProfileHandler) Handle(ctx context.Context, q GetProfileQuery) (domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, err
	}

	profiles := h.registry.Snapshot()
	i := store.FindByName(profiles, q.Name)
	if i < 0 {
		logger.FromContextOrDefault(ctx, h.logger).Debug("profile not found",
			slog.String("profile_name", q.Name))
		return domain.Profile{}, store.ProfileNotFoundError(q.Name)
	}
	return profiles[i], nil
}

// ValidateParameterHandler handles ValidateParameterQuery.
type ValidateParameterHandler struct {
	profiles *GetProfileHandler
}

// NewValidateParameterHandler creates a ValidateParameterHandler that looks
// profiles up through get.
func NewValidateParameterHandler(get *GetProfileHandler) *ValidateParameterHandler {
	return &ValidateParameterHandler{profiles: get}
}

// Handle reports whether the parameter's value case-insensitively equals
// "true". A parameter missing from an existing profile is simply false.
func (h *ValidateParameterHandler) Handle(ctx context.Context, q ValidateParameterQuery) (bool, error) {
	profile, err := h.profiles.Handle(ctx, GetProfileQuery{Name: q.Name})
	if err != nil {
		return false, err
	}
	return profile.ParameterEnabled(q.Parameter), nil
}
