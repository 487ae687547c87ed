package domain

import (
	"slices"
	"strings"
	"unicode/utf8"
)

// MaxProfileNameLength is the maximum number of characters in a profile name.
const MaxProfileNameLength = 50

// Parameter values recognised by ParameterEnabled. Comparison is case-insensitive.
const (
	ParameterTrue  = "True"
	ParameterFalse = "False"
)

// Profile is a named set of feature-toggle-like parameters.
// An absent key means "not configured", which is distinct from an explicit false.
type Profile struct {
	Name       string            `json:"name"       yaml:"name"`
	Parameters map[string]string `json:"parameters" yaml:"parameters"`
}

// NewProfile creates a Profile owning a private copy of parameters.
func NewProfile(name string, parameters map[string]string) Profile {
	return Profile{
		Name:       name,
		Parameters: cloneParameters(parameters),
	}
}

// Key returns the trimmed name used for uniqueness comparisons.
func (p Profile) Key() string {
	return strings.TrimSpace(p.Name)
}

// Validate checks the name rules and that a parameter map is present.
// An empty (but non-nil) parameter map is accepted.
func (p Profile) Validate() error {
	if err := ValidateProfileName(p.Name); err != nil {
		return err
	}
	if p.Parameters == nil {
		return NewValidationError("parameters", "cannot be nil", ErrNilParameters)
	}
	return nil
}

// ValidateWithParameters is Validate plus the requirement of at least one parameter.
func (p Profile) ValidateWithParameters() error {
	if err := p.Validate(); err != nil {
		return err
	}
	if len(p.Parameters) == 0 {
		return NewValidationError("parameters", "at least one parameter is required", ErrEmptyParameters)
	}
	return nil
}

// Clone returns a deep copy. Mutating the copy never affects the original.
func (p Profile) Clone() Profile {
	return Profile{
		Name:       p.Name,
		Parameters: cloneParameters(p.Parameters),
	}
}

// ParameterEnabled reports whether parameter is configured with a value that
// case-insensitively equals "true". A missing parameter is not enabled.
func (p Profile) ParameterEnabled(parameter string) bool {
	value, ok := p.Parameters[parameter]
	if !ok {
		return false
	}
	return strings.EqualFold(value, "true")
}

// ParameterKeys returns the parameter names in sorted order.
func (p Profile) ParameterKeys() []string {
	keys := make([]string, 0, len(p.Parameters))
	for k := range p.Parameters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// ValidateProfileName checks that name is non-blank and at most
// MaxProfileNameLength characters long.
func ValidateProfileName(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("name", "is required", ErrEmptyProfileName)
	}
	if utf8.RuneCountInString(name) > MaxProfileNameLength {
		return NewValidationError("name", "cannot exceed 50 characters", ErrProfileNameTooLong)
	}
	return nil
}

// CloneProfiles deep-copies a slice of profiles.
func CloneProfiles(profiles []Profile) []Profile {
	if profiles == nil {
		return nil
	}
	out := make([]Profile, len(profiles))
	for i, p := range profiles {
		out[i] = p.Clone()
	}
	return out
}

func cloneParameters(parameters map[string]string) map[string]string {
	if parameters == nil {
		return nil
	}
	out := make(map[string]string, len(parameters))
	for k, v := range parameters {
		out[k] = v
	}
	return out
}
