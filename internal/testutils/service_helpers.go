package testutils

import (
	"testing"

	"github.com/phrazzld/profile-api/internal/events"
	"github.com/phrazzld/profile-api/internal/platform/logger"
	"github.com/phrazzld/profile-api/internal/service"
	"github.com/phrazzld/profile-api/internal/store"
	"github.com/stretchr/testify/require"
)

// NewProfileService wires a fresh registry, dispatcher and service with
// logging discarded and no event handlers.
func NewProfileService(t *testing.T) (service.ProfileService, *store.ProfileRegistry) {
	t.Helper()
	return NewProfileServiceWithEmitter(t, nil)
}

// NewProfileServiceWithEmitter is NewProfileService with events sent to emitter.
func NewProfileServiceWithEmitter(
	t *testing.T,
	emitter events.EventEmitter,
) (service.ProfileService, *store.ProfileRegistry) {
	t.Helper()

	registry := store.NewProfileRegistry(logger.Discard())
	dispatcher, err := service.NewProfileDispatcher(registry, emitter, logger.Discard())
	require.NoError(t, err, "failed to create profile dispatcher")

	svc, err := service.NewProfileService(dispatcher)
	require.NoError(t, err, "failed to create profile service")
	return svc, registry
}
