package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/phrazzld/profile-api/internal/domain"
	"github.com/phrazzld/profile-api/internal/platform/logger"
	"github.com/phrazzld/profile-api/internal/redact"
)

// TxOutcome describes how a transaction finished.
type TxOutcome string

// Possible transaction outcomes.
const (
	TxCommitted TxOutcome = "committed"
	TxAborted   TxOutcome = "aborted"
	TxCanceled  TxOutcome = "canceled"
	TxFailed    TxOutcome = "failed"
)

// TxFn receives a private copy of the current profiles and returns the
// sequence to commit. Returning an error aborts the transaction and nothing
// is committed. The function must not block on external I/O.
type TxFn func(profiles []domain.Profile) ([]domain.Profile, error)

// Observer is notified about finished transactions. Implementations must be
// cheap and non-blocking; they run while the registry is held exclusively.
type Observer interface {
	ObserveTransaction(outcome TxOutcome, elapsed time.Duration)
	ObserveProfileCount(count int)
}

// Option configures a ProfileRegistry.
type Option func(*ProfileRegistry)

// WithObserver attaches an Observer to the registry.
func WithObserver(o Observer) Option {
	return func(r *ProfileRegistry) {
		r.observer = o
	}
}

// ProfileRegistry is a concurrency-safe, memory-resident list of profiles.
//
// Snapshot never blocks: the committed list is published through an atomic
// pointer and never modified after publication. Transact admits one
// transaction at a time; waiting for admission honours context cancellation.
type ProfileRegistry struct {
	current  atomic.Pointer[[]domain.Profile]
	sem      chan struct{}
	observer Observer
	logger   *slog.Logger
}

// NewProfileRegistry creates an empty registry.
func NewProfileRegistry(log *slog.Logger, opts ...Option) *ProfileRegistry {
	if log == nil {
		log = slog.Default()
	}
	r := &ProfileRegistry{
		sem:    make(chan struct{}, 1),
		logger: log.With("component", "profile_registry"),
	}
	empty := []domain.Profile{}
	r.current.Store(&empty)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Snapshot returns a consistent point-in-time deep copy of all profiles in
// insertion order. It never reflects a partially applied transaction.
func (r *ProfileRegistry) Snapshot() []domain.Profile {
	return domain.CloneProfiles(*r.current.Load())
}

// Len returns the number of profiles in the latest committed state.
func (r *ProfileRegistry) Len() int {
	return len(*r.current.Load())
}

// Transact atomically applies fn to a private copy of the current profiles
// and commits the result if fn succeeds.
//
// No other transaction can read or commit between this transaction's read
// and its commit. If ctx is done before the commit, nothing is committed and
// the context error is returned. A panic in fn is recovered and reported as
// ErrTransactionFailed; nothing is committed in that case either.
func (r *ProfileRegistry) Transact(ctx context.Context, fn TxFn) error {
	log := logger.FromContextOrDefault(ctx, r.logger)

	select {
	case r.sem <- struct{}{}:
	case <-ctx.Done():
		r.observe(TxCanceled, 0)
		return fmt.Errorf("waiting for registry: %w", ctx.Err())
	}
	defer func() { <-r.sem }()

	start := time.Now()

	if err := ctx.Err(); err != nil {
		r.observe(TxCanceled, time.Since(start))
		return fmt.Errorf("transaction not started: %w", err)
	}

	working := domain.CloneProfiles(*r.current.Load())

	next, err := r.run(fn, working)
	if err != nil {
		outcome := TxAborted
		if IsTransactionFailure(err) {
			outcome = TxFailed
			log.Error("transaction failed", slog.String("error", redact.Error(err)))
		} else {
			log.Debug("transaction aborted", slog.String("error", err.Error()))
		}
		r.observe(outcome, time.Since(start))
		return err
	}

	if err := ctx.Err(); err != nil {
		r.observe(TxCanceled, time.Since(start))
		log.Debug("transaction canceled before commit", slog.String("error", err.Error()))
		return fmt.Errorf("transaction not committed: %w", err)
	}

	// fn may still hold references into next, so publish a copy it cannot reach.
	committed := domain.CloneProfiles(next)
	if committed == nil {
		committed = []domain.Profile{}
	}
	r.current.Store(&committed)

	r.observe(TxCommitted, time.Since(start))
	if r.observer != nil {
		r.observer.ObserveProfileCount(len(committed))
	}
	log.Debug("transaction committed", slog.Int("profile_count", len(committed)))
	return nil
}

// IsTransactionFailure reports whether err came from an unexpected failure
// inside a transaction rather than from fn deliberately aborting.
func IsTransactionFailure(err error) bool {
	var storeErr *StoreError
	return errors.As(err, &storeErr) && storeErr.Operation == "transact"
}

func (r *ProfileRegistry) run(fn TxFn, working []domain.Profile) (next []domain.Profile, err error) {
	defer func() {
		if p := recover(); p != nil {
			next = nil
			err = NewStoreError("profile", "transact", fmt.Sprintf("panic: %v", p), ErrTransactionFailed)
		}
	}()
	return fn(working)
}

func (r *ProfileRegistry) observe(outcome TxOutcome, elapsed time.Duration) {
	if r.observer != nil {
		r.observer.ObserveTransaction(outcome, elapsed)
	}
}

// FindByName returns the index of the profile whose name equals name exactly, or -1.
func FindByName(profiles []domain.Profile, name string) int {
	for i, p := range profiles {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// FindByKey returns the index of the profile whose trimmed name equals the
// trimmed key (case-sensitive), or -1.
func FindByKey(profiles []domain.Profile, key string) int {
	key = strings.TrimSpace(key)
	for i, p := range profiles {
		if p.Key() == key {
			return i
		}
	}
	return -1
}

// RemoveAt returns profiles without the element at index i.
func RemoveAt(profiles []domain.Profile, i int) []domain.Profile {
	return append(profiles[:i], profiles[i+1:]...)
}
