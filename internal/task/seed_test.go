package task

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/profile-api/internal/domain"
	"github.com/phrazzld/profile-api/internal/platform/logger"
	"github.com/phrazzld/profile-api/internal/service"
	"github.com/phrazzld/profile-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const bootstrapYAML = `
profiles:
  ADMIN:
    CanEdit: "true"
    CanDelete: "false"
  Guest:
    CanEdit: "False"
  Empty:
`

func TestParseProfiles(t *testing.T) {
	profiles, err := ParseProfiles([]byte(bootstrapYAML))
	require.NoError(t, err)

	require.Len(t, profiles, 3)
	assert.Equal(t, "ADMIN", profiles[0].Name)
	assert.Equal(t, map[string]string{"CanEdit": "true", "CanDelete": "false"}, profiles[0].Parameters)
	assert.Equal(t, "Empty", profiles[1].Name)
	assert.NotNil(t, profiles[1].Parameters)
	assert.Equal(t, "Guest", profiles[2].Name)
}

func TestParseProfiles_Invalid(t *testing.T) {
	_, err := ParseProfiles([]byte("profiles: [not, a, map]"))
	assert.Error(t, err)
}

func TestLoadProfilesFile(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		profiles, err := LoadProfilesFile("")
		require.NoError(t, err)
		assert.Nil(t, profiles)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadProfilesFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profiles.yaml")
		require.NoError(t, os.WriteFile(path, []byte(bootstrapYAML), 0o600))

		profiles, err := LoadProfilesFile(path)
		require.NoError(t, err)
		assert.Len(t, profiles, 3)
	})
}

func TestSeedProfiles(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc, registry := testutils.NewProfileService(t)
	profiles := []domain.Profile{
		domain.NewProfile("ADMIN", map[string]string{"CanEdit": "true"}),
		domain.NewProfile("GUEST", map[string]string{"CanEdit": "false"}),
		domain.NewProfile(" ADMIN ", map[string]string{"CanEdit": "false"}),
		domain.NewProfile("", map[string]string{"CanEdit": "false"}),
	}

	created, err := SeedProfiles(context.Background(), svc, profiles, logger.Discard())

	// Only one of the two ADMIN spellings can win.
	assert.Equal(t, 2, created)
	require.Error(t, err)
	assert.Equal(t, 2, registry.Len())
	assert.Contains(t, err.Error(), "already exists")
	assert.ErrorIs(t, err, domain.ErrEmptyProfileName)
}

func TestSeedProfiles_Empty(t *testing.T) {
	svc, registry := testutils.NewProfileService(t)

	created, err := SeedProfiles(context.Background(), svc, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 0, registry.Len())
}

func TestSeedProfiles_CanceledContext(t *testing.T) {
	svc, registry := testutils.NewProfileService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	created, err := SeedProfiles(ctx, svc, []domain.Profile{
		domain.NewProfile("ADMIN", map[string]string{"CanEdit": "true"}),
	}, logger.Discard())

	assert.Equal(t, 0, created)
	assert.Equal(t, service.KindCanceled, service.KindOf(err))
	assert.Equal(t, 0, registry.Len())
}

// limitedCreator records how many CreateProfile calls run at once.
type limitedCreator struct {
	inflight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (c *limitedCreator) CreateProfile(_ context.Context, p domain.Profile) (domain.Profile, error) {
	n := c.inflight.Add(1)
	defer c.inflight.Add(-1)
	for {
		peak := c.peak.Load()
		if n <= peak || c.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	c.calls.Add(1)
	time.Sleep(2 * time.Millisecond)
	return p, nil
}

func TestSeedProfiles_BoundedConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	profiles := make([]domain.Profile, 4*MaxSeedConcurrency)
	for i := range profiles {
		profiles[i] = domain.NewProfile(fmt.Sprintf("P%d", i), map[string]string{"A": "true"})
	}
	creator := &limitedCreator{}

	created, err := SeedProfiles(context.Background(), creator, profiles, logger.Discard())

	require.NoError(t, err)
	assert.Equal(t, len(profiles), created)
	assert.Equal(t, int32(len(profiles)), creator.calls.Load())
	assert.LessOrEqual(t, creator.peak.Load(), int32(MaxSeedConcurrency))
}
