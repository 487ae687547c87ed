package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/profile-api/internal/domain"
	"github.com/phrazzld/profile-api/internal/events"
	"github.com/phrazzld/profile-api/internal/platform/logger"
	"github.com/phrazzld/profile-api/internal/store"
)

// Registry is the subset of store.ProfileRegistry the handlers need.
type Registry interface {
	Snapshot() []domain.Profile
	Transact(ctx context.Context, fn store.TxFn) error
}

// CreateProfileCommand adds a new profile.
type CreateProfileCommand struct {
	Profile domain.Profile
}

// RequestName implements Request.
func (CreateProfileCommand) RequestName() string { return "create_profile" }

// UpdateProfileCommand replaces the profile named OldName with Profile.
type UpdateProfileCommand struct {
	OldName string
	Profile domain.Profile
}

// RequestName implements Request.
func (UpdateProfileCommand) RequestName() string { return "update_profile" }

// DeleteProfileCommand removes the profile named Name.
type DeleteProfileCommand struct {
	Name string
}

// RequestName implements Request.
func (DeleteProfileCommand) RequestName() string { return "delete_profile" }

// commandHandler holds what all profile command handlers share.
type commandHandler struct {
	registry Registry
	emitter  events.EventEmitter
	logger   *slog.Logger
}

// emit publishes an event for a committed change. The change already stands,
// so a failing handler is logged rather than returned.
func (h commandHandler) emit(ctx context.Context, event *events.ProfileEvent) {
	if h.emitter == nil {
		return
	}
	event.Source = events.SourceFromContext(ctx)
	// The commit is done; event delivery must not be cut short by the caller leaving.
	if err := h.emitter.EmitEvent(context.WithoutCancel(ctx), event); err != nil {
		logger.FromContextOrDefault(ctx, h.logger).Warn("failed to emit profile event",
			slog.String("event_type", string(event.Type)),
			slog.String("profile_name", event.ProfileName),
			slog.String("error", err.Error()))
	}
}

// CreateProfileHandler handles CreateProfileCommand.
type CreateProfileHandler struct {
	commandHandler
}

// NewCreateProfileHandler creates a CreateProfileHandler.
func NewCreateProfileHandler(
	registry Registry,
	emitter events.EventEmitter,
	log *slog.Logger,
) *CreateProfileHandler {
	return &CreateProfileHandler{commandHandler{registry: registry, emitter: emitter, logger: log}}
}

// Handle validates the profile and inserts it unless a profile with the same
// trimmed name exists. The check and the insert happen in one transaction.
func (h *CreateProfileHandler) Handle(ctx context.Context, cmd CreateProfileCommand) (domain.Profile, error) {
	log := logger.FromContextOrDefault(ctx, h.logger)
	profile := cmd.Profile.Clone()

	if err := profile.Validate(); err != nil {
		return domain.Profile{}, err
	}

	log.Info("creating profile", slog.String("profile_name", profile.Name))

	err := h.registry.Transact(ctx, func(profiles []domain.Profile) ([]domain.Profile, error) {
		if store.FindByKey(profiles, profile.Name) >= 0 {
			return nil, store.ProfileExistsError(profile.Name)
		}
		return append(profiles, profile), nil
	})
	if err != nil {
		log.Debug("profile not created",
			slog.String("profile_name", profile.Name),
			slog.String("error", err.Error()))
		return domain.Profile{}, err
	}

	log.Info("profile created", slog.String("profile_name", profile.Name))
	h.emit(ctx, events.NewProfileEvent(events.ProfileCreated, profile.Name, ""))
	return profile.Clone(), nil
}

// UpdateProfileHandler handles UpdateProfileCommand.
type UpdateProfileHandler struct {
	commandHandler
}

// NewUpdateProfileHandler creates an UpdateProfileHandler.
func NewUpdateProfileHandler(
	registry Registry,
	emitter events.EventEmitter,
	log *slog.Logger,
) *UpdateProfileHandler {
	return &UpdateProfileHandler{commandHandler{registry: registry, emitter: emitter, logger: log}}
}

// Handle replaces the profile whose name equals OldName exactly. The new
// profile must carry at least one parameter. The old entry is removed and
// the new one appended. The new name is not checked
// against other entries; keeping names distinct across a rename is the
// caller's responsibility.
func (h *UpdateProfileHandler) Handle(ctx context.Context, cmd UpdateProfileCommand) (domain.Profile, error) {
	log := logger.FromContextOrDefault(ctx, h.logger)
	profile := cmd.Profile.Clone()

	if err := domain.ValidateProfileName(cmd.OldName); err != nil {
		return domain.Profile{}, err
	}
	if err := profile.ValidateWithParameters(); err != nil {
		return domain.Profile{}, err
	}

	log.Info("updating profile",
		slog.String("profile_name", cmd.OldName),
		slog.String("new_name", profile.Name))

	err := h.registry.Transact(ctx, func(profiles []domain.Profile) ([]domain.Profile, error) {
		i := store.FindByName(profiles, cmd.OldName)
		if i < 0 {
			return nil, store.ProfileNotFoundError(cmd.OldName)
		}
		return append(store.RemoveAt(profiles, i), profile), nil
	})
	if err != nil {
		log.Debug("profile not updated",
			slog.String("profile_name", cmd.OldName),
			slog.String("error", err.Error()))
		return domain.Profile{}, err
	}

	log.Info("profile updated", slog.String("profile_name", profile.Name))
	h.emit(ctx, events.NewProfileEvent(events.ProfileUpdated, profile.Name, cmd.OldName))
	return profile.Clone(), nil
}

// errNothingToDelete aborts a delete transaction that has nothing to remove.
var errNothingToDelete = errors.New("nothing to delete")

// DeleteProfileHandler handles DeleteProfileCommand.
type DeleteProfileHandler struct {
	commandHandler
}

// NewDeleteProfileHandler creates a DeleteProfileHandler.
func NewDeleteProfileHandler(
	registry Registry,
	emitter events.EventEmitter,
	log *slog.Logger,
) *DeleteProfileHandler {
	return &DeleteProfileHandler{commandHandler{registry: registry, emitter: emitter, logger: log}}
}

// Handle removes the profile whose name equals Name exactly. It reports
// false, without error, when no such profile exists.
func (h *DeleteProfileHandler) Handle(ctx context.Context, cmd DeleteProfileCommand) (bool, error) {
	log := logger.FromContextOrDefault(ctx, h.logger)

	if err := domain.ValidateProfileName(cmd.Name); err != nil {
		return false, err
	}

	log.Info("deleting profile", slog.String("profile_name", cmd.Name))

	err := h.registry.Transact(ctx, func(profiles []domain.Profile) ([]domain.Profile, error) {
		i := store.FindByName(profiles, cmd.Name)
		if i < 0 {
			return nil, errNothingToDelete
		}
		return store.RemoveAt(profiles, i), nil
	})
	switch {
	case errors.Is(err, errNothingToDelete):
		log.Info("profile not found for deletion", slog.String("profile_name", cmd.Name))
		return false, nil
	case err != nil:
		return false, fmt.Errorf("deleting profile '%s': %w", cmd.Name, err)
	}

	log.Info("profile deleted", slog.String("profile_name", cmd.Name))
	h.emit(ctx, events.NewProfileEvent(events.ProfileDeleted, cmd.Name, ""))
	return true, nil
}
