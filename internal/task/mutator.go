package task

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/phrazzld/profile-api/internal/domain"
	"github.com/phrazzld/profile-api/internal/events"
	"github.com/phrazzld/profile-api/internal/service"
)

// MutatorSource marks events caused by the mutator.
const MutatorSource = "mutator"

// ErrMutatorAlreadyStarted is returned by Start on a running mutator.
var ErrMutatorAlreadyStarted = errors.New("profile mutator already started")

// TickResult describes what a single mutator tick did.
type TickResult string

// Possible tick results.
const (
	TickUpdated             TickResult = "updated"
	TickSkippedEmpty        TickResult = "skipped_empty"
	TickSkippedNoParameters TickResult = "skipped_no_parameters"
	TickFailed              TickResult = "failed"
)

// MutatorConfig holds configuration for the ProfileMutator.
type MutatorConfig struct {
	// Interval is the time between ticks. If zero, defaults to 300 seconds.
	Interval time.Duration

	// TickTimeout bounds a single tick. If zero, defaults to 5 seconds.
	TickTimeout time.Duration
}

// DefaultMutatorConfig returns a MutatorConfig with the default interval.
func DefaultMutatorConfig() MutatorConfig {
	return MutatorConfig{
		Interval:    300 * time.Second,
		TickTimeout: 5 * time.Second,
	}
}

// ProfileUpdater is the part of service.ProfileService the mutator uses.
type ProfileUpdater interface {
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	UpdateProfile(ctx context.Context, oldName string, profile domain.Profile) (domain.Profile, error)
}

// TickObserver is notified of every tick result.
type TickObserver interface {
	ObserveMutatorTick(result string)
}

// MutatorOption configures a ProfileMutator.
type MutatorOption func(*ProfileMutator)

// WithRand makes the mutator draw from r instead of a randomly seeded source.
func WithRand(r *rand.Rand) MutatorOption {
	return func(m *ProfileMutator) {
		m.rng = r
	}
}

// WithTickObserver attaches a TickObserver.
func WithTickObserver(o TickObserver) MutatorOption {
	return func(m *ProfileMutator) {
		m.observer = o
	}
}

// ProfileMutator periodically flips one random parameter of one random
// profile, going through the same Update path as every other caller.
type ProfileMutator struct {
	profiles ProfileUpdater
	config   MutatorConfig
	logger   *slog.Logger
	observer TickObserver

	rngMu sync.Mutex
	rng   *rand.Rand

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewProfileMutator creates a ProfileMutator. Call Start to begin ticking.
func NewProfileMutator(
	profiles ProfileUpdater,
	config MutatorConfig,
	logger *slog.Logger,
	opts ...MutatorOption,
) *ProfileMutator {
	if config.Interval <= 0 {
		config.Interval = DefaultMutatorConfig().Interval
	}
	if config.TickTimeout <= 0 {
		config.TickTimeout = DefaultMutatorConfig().TickTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	m := &ProfileMutator{
		profiles: profiles,
		config:   config,
		logger:   logger.With("component", "profile_mutator"),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start launches the tick loop. It stops when ctx is canceled or Stop is called.
func (m *ProfileMutator) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancelFunc != nil {
		return ErrMutatorAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel

	m.wg.Add(1)
	go m.loop(runCtx)

	m.logger.Info("profile mutator started", slog.Duration("interval", m.config.Interval))
	return nil
}

// Stop cancels the loop and waits for an in-flight tick to finish.
func (m *ProfileMutator) Stop() {
	m.mu.Lock()
	cancel := m.cancelFunc
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	m.wg.Wait()
}

func (m *ProfileMutator) loop(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("profile mutator stopped")
			return
		case <-ticker.C:
			m.Tick(ctx)
		}
	}
}

// Tick performs one mutation attempt. Failures are logged, never returned,
// so the loop keeps running.
func (m *ProfileMutator) Tick(ctx context.Context) TickResult {
	ctx, cancel := context.WithTimeout(events.WithSource(ctx, MutatorSource), m.config.TickTimeout)
	defer cancel()

	result := m.tick(ctx)
	if m.observer != nil {
		m.observer.ObserveMutatorTick(string(result))
	}
	return result
}

func (m *ProfileMutator) tick(ctx context.Context) TickResult {
	profiles, err := m.profiles.ListProfiles(ctx)
	if err != nil {
		m.logger.Error("failed to list profiles", slog.String("error", err.Error()))
		return TickFailed
	}
	if len(profiles) == 0 {
		m.logger.Debug("no profiles to mutate")
		return TickSkippedEmpty
	}

	profile := profiles[m.intN(len(profiles))]
	keys := profile.ParameterKeys()
	if len(keys) == 0 {
		m.logger.Debug("selected profile has no parameters", slog.String("profile_name", profile.Name))
		return TickSkippedNoParameters
	}

	key := keys[m.intN(len(keys))]
	value := domain.ParameterFalse
	if m.intN(2) == 1 {
		value = domain.ParameterTrue
	}

	updated := profile.Clone()
	updated.Parameters[key] = value

	if _, err := m.profiles.UpdateProfile(ctx, profile.Name, updated); err != nil {
		m.logger.Error("failed to update profile",
			slog.String("profile_name", profile.Name),
			slog.String("parameter", key),
			slog.String("kind", string(service.KindOf(err))),
			slog.String("error", err.Error()))
		return TickFailed
	}

	m.logger.Info("profile parameter updated",
		slog.String("profile_name", profile.Name),
		slog.String("parameter", key),
		slog.String("value", value))
	return TickUpdated
}

func (m *ProfileMutator) intN(n int) int {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.rng.IntN(n)
}
