package api

import (
	"github.com/phrazzld/profile-api/internal/domain"
)

// ProfileRequest is the body for creating or replacing a profile.
type ProfileRequest struct {
	Name       string            `json:"name"       validate:"required,max=50"`
	Parameters map[string]string `json:"parameters" validate:"required,min=1"`
}

// ToDomain converts the request into a domain.Profile.
func (r ProfileRequest) ToDomain() domain.Profile {
	return domain.NewProfile(r.Name, r.Parameters)
}

// ProfileResponse is the wire form of a profile.
type ProfileResponse struct {
	Name       string            `json:"name"`
	Parameters map[string]string `json:"parameters"`
}

// ValidateParameterResponse reports whether a parameter is enabled.
type ValidateParameterResponse struct {
	Name      string `json:"name"`
	Parameter string `json:"parameter"`
	Enabled   bool   `json:"enabled"`
}

func profileToResponse(p domain.Profile) ProfileResponse {
	params := p.Parameters
	if params == nil {
		params = map[string]string{}
	}
	return ProfileResponse{Name: p.Name, Parameters: params}
}

func profilesToResponse(profiles []domain.Profile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, profileToResponse(p))
	}
	return out
}
