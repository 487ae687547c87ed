package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apiMiddleware "github.com/phrazzld/profile-api/internal/api/middleware"
	"github.com/phrazzld/profile-api/internal/config"
	"github.com/phrazzld/profile-api/internal/events"
	"github.com/phrazzld/profile-api/internal/platform/metrics"
	"github.com/phrazzld/profile-api/internal/service"
	"github.com/phrazzld/profile-api/internal/store"
	"github.com/phrazzld/profile-api/internal/task"
)

const (
	rateLimiterCleanupInterval = time.Minute
	rateLimiterMaxIdle         = 10 * time.Minute
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger

	metrics  *metrics.Recorder
	registry *store.ProfileRegistry
	emitter  *events.InMemoryEventEmitter
	profiles service.ProfileService
	limiter  *apiMiddleware.RateLimiter

	// mutator is nil when the background mutator is disabled.
	mutator *task.ProfileMutator
}

// newApplication wires the registry, dispatcher, service and background
// components together. Nothing is started.
func newApplication(cfg *config.Config, log *slog.Logger) (*application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	recorder := metrics.NewRecorder()
	registry := store.NewProfileRegistry(log, store.WithObserver(recorder))

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(recorder)

	dispatcher, err := service.NewProfileDispatcher(registry, emitter, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatcher: %w", err)
	}
	profiles, err := service.NewProfileService(dispatcher)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile service: %w", err)
	}

	app := &application{
		config:   cfg,
		logger:   log,
		metrics:  recorder,
		registry: registry,
		emitter:  emitter,
		profiles: profiles,
		limiter: apiMiddleware.NewRateLimiter(
			float64(cfg.RateLimit.RequestsPerSecond),
			cfg.RateLimit.Burst,
			log,
		),
	}

	if cfg.Mutator.Enabled {
		app.mutator = task.NewProfileMutator(
			profiles,
			task.MutatorConfig{
				Interval:    time.Duration(cfg.Mutator.IntervalSeconds) * time.Second,
				TickTimeout: time.Duration(cfg.Mutator.TickTimeoutSeconds) * time.Second,
			},
			log,
			task.WithTickObserver(recorder),
		)
	}

	return app, nil
}

// seed creates the bootstrap profiles. Individual profile failures are
// logged by the seeder and do not fail startup; an unreadable file does.
func (app *application) seed(ctx context.Context) error {
	profiles, err := task.LoadProfilesFile(app.config.Bootstrap.ProfilesFile)
	if err != nil {
		return err
	}
	if len(profiles) == 0 {
		app.logger.Info("no bootstrap profiles configured")
		return nil
	}

	created, err := task.SeedProfiles(ctx, app.profiles, profiles, app.logger)
	if err != nil {
		app.logger.Warn("some bootstrap profiles were not created",
			"created", created,
			"requested", len(profiles),
			"error", err)
	}
	return nil
}

// run seeds the registry, starts background work and serves HTTP until ctx
// is canceled.
func (app *application) run(ctx context.Context) error {
	if err := app.seed(ctx); err != nil {
		return fmt.Errorf("failed to seed profiles: %w", err)
	}

	if app.mutator != nil {
		if err := app.mutator.Start(ctx); err != nil {
			return fmt.Errorf("failed to start profile mutator: %w", err)
		}
	}

	cleanupCtx, cancelCleanup := context.WithCancel(ctx)
	defer cancelCleanup()
	app.limiter.StartCleanup(cleanupCtx, rateLimiterCleanupInterval, rateLimiterMaxIdle)

	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup stops background work. Safe to call more than once.
func (app *application) cleanup() {
	if app.mutator != nil {
		app.mutator.Stop()
	}
	app.logger.Info("application cleanup completed", "profile_count", app.registry.Len())
}
