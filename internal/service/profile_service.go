package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/profile-api/internal/domain"
	"github.com/phrazzld/profile-api/internal/events"
)

// ErrServiceNotConfigured is returned when a required dependency is missing.
var ErrServiceNotConfigured = errors.New("profile service not configured")

// ProfileService is the entry point for every profile operation.
type ProfileService interface {
	// CreateProfile adds a profile. Fails with a conflict if the trimmed name exists.
	CreateProfile(ctx context.Context, profile domain.Profile) (domain.Profile, error)

	// UpdateProfile replaces the profile named oldName with profile.
	UpdateProfile(ctx context.Context, oldName string, profile domain.Profile) (domain.Profile, error)

	// DeleteProfile removes the named profile and reports whether one was removed.
	DeleteProfile(ctx context.Context, name string) (bool, error)

	// ListProfiles returns every profile in insertion order.
	ListProfiles(ctx context.Context) ([]domain.Profile, error)

	// GetProfile returns the profile with exactly this name.
	GetProfile(ctx context.Context, name string) (domain.Profile, error)

	// ValidateParameter reports whether the named parameter is enabled.
	ValidateParameter(ctx context.Context, name, parameter string) (bool, error)
}

// profileServiceImpl sends every call through a Dispatcher.
type profileServiceImpl struct {
	dispatcher *Dispatcher
}

// NewProfileService returns a ProfileService backed by d. Handlers for every
// profile request must already be registered on d.
func NewProfileService(d *Dispatcher) (ProfileService, error) {
	if d == nil {
		return nil, fmt.Errorf("%w: dispatcher cannot be nil", ErrServiceNotConfigured)
	}
	return &profileServiceImpl{dispatcher: d}, nil
}

// NewProfileDispatcher builds a Dispatcher with all profile command and query
// handlers registered against registry. emitter may be nil.
func NewProfileDispatcher(registry Registry, emitter events.EventEmitter, log *slog.Logger) (*Dispatcher, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: registry cannot be nil", ErrServiceNotConfigured)
	}
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "profile_service")

	d := NewDispatcher(log)
	get := NewGetProfileHandler(registry, log)

	err := errors.Join(
		Register[CreateProfileCommand, domain.Profile](d, NewCreateProfileHandler(registry, emitter, log)),
		Register[UpdateProfileCommand, domain.Profile](d, NewUpdateProfileHandler(registry, emitter, log)),
		Register[DeleteProfileCommand, bool](d, NewDeleteProfileHandler(registry, emitter, log)),
		Register[ListProfilesQuery, []domain.Profile](d, NewListProfilesHandler(registry)),
		Register[GetProfileQuery, domain.Profile](d, get),
		Register[ValidateParameterQuery, bool](d, NewValidateParameterHandler(get)),
	)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// CreateProfile implements ProfileService.
func (s *profileServiceImpl) CreateProfile(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	return Send[domain.Profile](ctx, s.dispatcher, CreateProfileCommand{Profile: profile})
}

// UpdateProfile implements ProfileService.
func (s *profileServiceImpl) UpdateProfile(
	ctx context.Context,
	oldName string,
	profile domain.Profile,
) (domain.Profile, error) {
	return Send[domain.Profile](ctx, s.dispatcher, UpdateProfileCommand{OldName: oldName, Profile: profile})
}

// DeleteProfile implements ProfileService.
func (s *profileServiceImpl) DeleteProfile(ctx context.Context, name string) (bool, error) {
	return Send[bool](ctx, s.dispatcher, DeleteProfileCommand{Name: name})
}

// ListProfiles implements ProfileService.
func (s *profileServiceImpl) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	return Send[[]domain.Profile](ctx, s.dispatcher, ListProfilesQuery{})
}

// GetProfile implements ProfileService.
func (s *profileServiceImpl) GetProfile(ctx context.Context, name string) (domain.Profile, error) {
	return Send[domain.Profile](ctx, s.dispatcher, GetProfileQuery{Name: name})
}

// ValidateParameter implements ProfileService.
func (s *profileServiceImpl) ValidateParameter(ctx context.Context, name, parameter string) (bool, error) {
	return Send[bool](ctx, s.dispatcher, ValidateParameterQuery{Name: name, Parameter: parameter})
}
