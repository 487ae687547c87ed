package api

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/profile-api/internal/api/shared"
	"github.com/phrazzld/profile-api/internal/platform/logger"
	"github.com/phrazzld/profile-api/internal/redact"
	"github.com/phrazzld/profile-api/internal/service"
)

// ProfileNameParam is the chi path parameter holding a profile name.
const ProfileNameParam = "profileName"

// ProfileHandler handles profile-related HTTP requests.
type ProfileHandler struct {
	profiles    service.ProfileService
	logger      *slog.Logger
	development bool
}

// HandlerOption configures a ProfileHandler.
type HandlerOption func(*ProfileHandler)

// WithDevelopmentErrors includes error details in error responses.
func WithDevelopmentErrors(enabled bool) HandlerOption {
	return func(h *ProfileHandler) {
		h.development = enabled
	}
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles service.ProfileService, log *slog.Logger, opts ...HandlerOption) *ProfileHandler {
	if log == nil {
		log = slog.Default()
	}
	h := &ProfileHandler{
		profiles: profiles,
		logger:   log.With("component", "profile_handler"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ListProfiles handles GET /api/profiles.
func (h *ProfileHandler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.profiles.ListProfiles(r.Context())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profilesToResponse(profiles))
}

// GetProfile handles GET /api/profiles/{profileName}.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, ProfileNameParam)

	profile, err := h.profiles.GetProfile(r.Context(), name)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profileToResponse(profile))
}

// CreateProfile handles POST /api/profiles.
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeProfileRequest(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.CreateProfile(r.Context(), req.ToDomain())
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/profiles/"+url.PathEscape(profile.Name))
	shared.RespondWithJSON(w, r, http.StatusCreated, profileToResponse(profile))
}

// UpdateProfile handles PUT /api/profiles/{profileName}. The body is the
// replacement profile and may carry a new name.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	oldName := chi.URLParam(r, ProfileNameParam)

	req, ok := h.decodeProfileRequest(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), oldName, req.ToDomain())
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profileToResponse(profile))
}

// DeleteProfile handles DELETE /api/profiles/{profileName}.
func (h *ProfileHandler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, ProfileNameParam)

	removed, err := h.profiles.DeleteProfile(r.Context(), name)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if !removed {
		shared.RespondWithError(w, r, http.StatusNotFound, "Profile not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ValidateParameter handles GET /api/profiles/{profileName}/validate?parameterName=X.
func (h *ProfileHandler) ValidateParameter(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, ProfileNameParam)
	parameter := r.URL.Query().Get("parameterName")
	if parameter == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid parameterName: required field")
		return
	}

	enabled, err := h.profiles.ValidateParameter(r.Context(), name, parameter)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ValidateParameterResponse{
		Name:      name,
		Parameter: parameter,
		Enabled:   enabled,
	})
}

func (h *ProfileHandler) decodeProfileRequest(w http.ResponseWriter, r *http.Request) (ProfileRequest, bool) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("invalid profile request body", slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return ProfileRequest{}, false
	}
	if err := shared.ValidateRequest(&req); err != nil {
		log.Debug("profile request failed validation", slog.String("error", err.Error()))
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return ProfileRequest{}, false
	}
	return req, true
}

func (h *ProfileHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var opts []shared.ResponseOption
	if h.development {
		opts = append(opts, shared.WithDetails(redact.Error(err)))
	}
	HandleAPIError(w, r, err, opts...)
}
