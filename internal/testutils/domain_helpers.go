package testutils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/profile-api/internal/domain"
	"github.com/stretchr/testify/require"
)

// ProfileOption customizes a test profile.
type ProfileOption func(*domain.Profile)

// WithName sets the profile name.
func WithName(name string) ProfileOption {
	return func(p *domain.Profile) {
		p.Name = name
	}
}

// WithParameter sets one parameter.
func WithParameter(key, value string) ProfileOption {
	return func(p *domain.Profile) {
		p.Parameters[key] = value
	}
}

// CreateTestProfile builds a valid profile with a unique name and one
// enabled parameter. It does not store it anywhere.
func CreateTestProfile(t *testing.T, opts ...ProfileOption) domain.Profile {
	t.Helper()

	profile := domain.NewProfile("profile-"+uuid.NewString()[:8], map[string]string{
		"Enabled": domain.ParameterTrue,
	})
	for _, opt := range opts {
		opt(&profile)
	}
	require.NoError(t, profile.Validate(), "test profile must be valid")
	return profile
}

// ProfileCreator is satisfied by service.ProfileService.
type ProfileCreator interface {
	CreateProfile(ctx context.Context, profile domain.Profile) (domain.Profile, error)
}

// MustCreateProfile creates a test profile through creator and returns it.
func MustCreateProfile(t *testing.T, creator ProfileCreator, opts ...ProfileOption) domain.Profile {
	t.Helper()

	created, err := creator.CreateProfile(context.Background(), CreateTestProfile(t, opts...))
	require.NoError(t, err, "failed to create test profile")
	return created
}
