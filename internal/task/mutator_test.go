package task

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/phrazzld/profile-api/internal/domain"
	"github.com/phrazzld/profile-api/internal/platform/logger"
	"github.com/phrazzld/profile-api/internal/store"
	"github.com/phrazzld/profile-api/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// MockProfileUpdater is a function-field test double for ProfileUpdater.
type MockProfileUpdater struct {
	ListProfilesFn  func(ctx context.Context) ([]domain.Profile, error)
	UpdateProfileFn func(ctx context.Context, oldName string, profile domain.Profile) (domain.Profile, error)
	listCalls       atomic.Int32
}

func (m *MockProfileUpdater) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	m.listCalls.Add(1)
	if m.ListProfilesFn != nil {
		return m.ListProfilesFn(ctx)
	}
	return nil, nil
}

func (m *MockProfileUpdater) UpdateProfile(
	ctx context.Context,
	oldName string,
	profile domain.Profile,
) (domain.Profile, error) {
	if m.UpdateProfileFn != nil {
		return m.UpdateProfileFn(ctx, oldName, profile)
	}
	return profile, nil
}

type recordingTickObserver struct {
	mu      sync.Mutex
	results []string
}

func (o *recordingTickObserver) ObserveMutatorTick(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.results = append(o.results, result)
}

func seededRand() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func TestProfileMutator_TickEmptyRegistry(t *testing.T) {
	svc, _ := testutils.NewProfileService(t)
	observer := &recordingTickObserver{}
	m := NewProfileMutator(svc, DefaultMutatorConfig(), logger.Discard(),
		WithRand(seededRand()), WithTickObserver(observer))

	assert.Equal(t, TickSkippedEmpty, m.Tick(context.Background()))
	assert.Equal(t, []string{string(TickSkippedEmpty)}, observer.results)
}

func TestProfileMutator_TickProfileWithoutParameters(t *testing.T) {
	svc, registry := testutils.NewProfileService(t)
	_, err := svc.CreateProfile(context.Background(), domain.NewProfile("EMPTY", map[string]string{}))
	require.NoError(t, err)
	before := registry.Snapshot()

	m := NewProfileMutator(svc, DefaultMutatorConfig(), logger.Discard(), WithRand(seededRand()))

	assert.Equal(t, TickSkippedNoParameters, m.Tick(context.Background()))
	assert.Equal(t, before, registry.Snapshot())
}

func TestProfileMutator_TickFlipsOneParameter(t *testing.T) {
	svc, registry := testutils.NewProfileService(t)
	original := map[string]string{"A": "yes", "B": "yes", "C": "yes"}
	_, err := svc.CreateProfile(context.Background(), domain.NewProfile("ADMIN", original))
	require.NoError(t, err)

	m := NewProfileMutator(svc, DefaultMutatorConfig(), logger.Discard(), WithRand(seededRand()))

	for i := 0; i < 10; i++ {
		require.Equal(t, TickUpdated, m.Tick(context.Background()))
	}

	snapshot := registry.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "ADMIN", snapshot[0].Name)
	assert.Len(t, snapshot[0].Parameters, 3)
	for key, value := range snapshot[0].Parameters {
		assert.Contains(t, []string{"yes", domain.ParameterTrue, domain.ParameterFalse}, value, "key %s", key)
	}
}

func TestProfileMutator_TickSingleMutation(t *testing.T) {
	svc, registry := testutils.NewProfileService(t)
	_, err := svc.CreateProfile(context.Background(), domain.NewProfile("ADMIN", map[string]string{
		"A": "unset", "B": "unset",
	}))
	require.NoError(t, err)

	m := NewProfileMutator(svc, DefaultMutatorConfig(), logger.Discard(), WithRand(seededRand()))
	require.Equal(t, TickUpdated, m.Tick(context.Background()))

	changed := 0
	for _, value := range registry.Snapshot()[0].Parameters {
		if value != "unset" {
			changed++
			assert.Contains(t, []string{domain.ParameterTrue, domain.ParameterFalse}, value)
		}
	}
	assert.Equal(t, 1, changed)
}

func TestProfileMutator_TickFailuresAreReported(t *testing.T) {
	t.Run("list fails", func(t *testing.T) {
		updater := &MockProfileUpdater{
			ListProfilesFn: func(context.Context) ([]domain.Profile, error) {
				return nil, errors.New("list failed")
			},
		}
		m := NewProfileMutator(updater, DefaultMutatorConfig(), logger.Discard())
		assert.Equal(t, TickFailed, m.Tick(context.Background()))
	})

	t.Run("update fails", func(t *testing.T) {
		updater := &MockProfileUpdater{
			ListProfilesFn: func(context.Context) ([]domain.Profile, error) {
				return []domain.Profile{domain.NewProfile("ADMIN", map[string]string{"A": "true"})}, nil
			},
			UpdateProfileFn: func(context.Context, string, domain.Profile) (domain.Profile, error) {
				return domain.Profile{}, store.ProfileNotFoundError("ADMIN")
			},
		}
		m := NewProfileMutator(updater, DefaultMutatorConfig(), logger.Discard())
		assert.Equal(t, TickFailed, m.Tick(context.Background()))
	})
}

func TestProfileMutator_TickUsesUpdatePath(t *testing.T) {
	var gotOld string
	var gotProfile domain.Profile
	updater := &MockProfileUpdater{
		ListProfilesFn: func(context.Context) ([]domain.Profile, error) {
			return []domain.Profile{domain.NewProfile("ADMIN", map[string]string{"CanEdit": "maybe"})}, nil
		},
		UpdateProfileFn: func(_ context.Context, oldName string, p domain.Profile) (domain.Profile, error) {
			gotOld = oldName
			gotProfile = p
			return p, nil
		},
	}
	m := NewProfileMutator(updater, DefaultMutatorConfig(), logger.Discard(), WithRand(seededRand()))

	require.Equal(t, TickUpdated, m.Tick(context.Background()))
	assert.Equal(t, "ADMIN", gotOld)
	assert.Equal(t, "ADMIN", gotProfile.Name)
	assert.Contains(t, []string{domain.ParameterTrue, domain.ParameterFalse}, gotProfile.Parameters["CanEdit"])
}

func TestProfileMutator_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	updater := &MockProfileUpdater{}
	m := NewProfileMutator(updater, MutatorConfig{Interval: 5 * time.Millisecond}, logger.Discard())

	require.NoError(t, m.Start(context.Background()))
	assert.ErrorIs(t, m.Start(context.Background()), ErrMutatorAlreadyStarted)

	assert.Eventually(t, func() bool {
		return updater.listCalls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	m.Stop()
	m.Stop()
}

func TestProfileMutator_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := NewProfileMutator(&MockProfileUpdater{}, MutatorConfig{Interval: time.Hour}, logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, m.Start(ctx))
	cancel()
	m.Stop()
}

func TestNewProfileMutator_Defaults(t *testing.T) {
	m := NewProfileMutator(&MockProfileUpdater{}, MutatorConfig{}, nil)
	assert.Equal(t, 300*time.Second, m.config.Interval)
	assert.Equal(t, 5*time.Second, m.config.TickTimeout)
}

func TestProfileMutator_ConcurrentWithExternalWriters(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	svc, registry := testutils.NewProfileService(t)
	ctx := context.Background()

	const seeded = 5
	for i := 0; i < seeded; i++ {
		_, err := svc.CreateProfile(ctx, domain.NewProfile(fmt.Sprintf("base-%d", i), map[string]string{
			"A": "True", "B": "False",
		}))
		require.NoError(t, err)
	}

	observer := &recordingTickObserver{}
	m := NewProfileMutator(svc, MutatorConfig{Interval: time.Millisecond, TickTimeout: time.Second},
		logger.Discard(), WithTickObserver(observer))
	require.NoError(t, m.Start(ctx))

	const (
		writers = 5
		rounds  = 100
	)
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				_, err := svc.CreateProfile(ctx, domain.NewProfile(fmt.Sprintf("w%d-%d", w, r), map[string]string{
					"A": "True",
				}))
				assert.NoError(t, err)

				base := fmt.Sprintf("base-%d", w)
				_, err = svc.UpdateProfile(ctx, base, domain.NewProfile(base, map[string]string{
					"A": "False", "B": "True",
				}))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool {
		observer.mu.Lock()
		defer observer.mu.Unlock()
		return len(observer.results) > 0
	}, time.Second, time.Millisecond)
	m.Stop()

	profiles := registry.Snapshot()
	assert.Len(t, profiles, seeded+writers*rounds)

	seen := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		assert.False(t, seen[p.Name], "duplicate name %q", p.Name)
		seen[p.Name] = true
		assert.NotEmpty(t, p.Parameters)
	}
	for i := 0; i < seeded; i++ {
		assert.True(t, seen[fmt.Sprintf("base-%d", i)])
	}
}
