package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/profile-api/internal/platform/logger"
)

// Dispatcher errors.
var (
	// ErrNoHandler is returned when a request is sent that nothing handles.
	ErrNoHandler = errors.New("no handler registered for request")

	// ErrHandlerAlreadyRegistered is returned when a request type is registered twice.
	ErrHandlerAlreadyRegistered = errors.New("handler already registered for request")
)

// Request is implemented by every command and query. RequestName must return
// a constant that identifies the request type, and must work on the zero value.
type Request interface {
	RequestName() string
}

// Handler handles a single request type Q producing R.
type Handler[Q Request, R any] interface {
	Handle(ctx context.Context, request Q) (R, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc[Q Request, R any] func(ctx context.Context, request Q) (R, error)

// Handle calls f(ctx, request).
func (f HandlerFunc[Q, R]) Handle(ctx context.Context, request Q) (R, error) {
	return f(ctx, request)
}

// Dispatcher routes typed requests to the handler registered for them, so
// callers depend on request types rather than on handler wiring.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]any
	logger   *slog.Logger
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher(log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[string]any),
		logger:   log.With("component", "dispatcher"),
	}
}

// Register installs h as the handler for request type Q.
func Register[Q Request, R any](d *Dispatcher, h Handler[Q, R]) error {
	var zero Q
	name := zero.RequestName()

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.handlers[name]; exists {
		return fmt.Errorf("%w: %s", ErrHandlerAlreadyRegistered, name)
	}
	d.handlers[name] = h
	d.logger.Debug("registered request handler", "request", name, "handler_count", len(d.handlers))
	return nil
}

// Send routes request to its handler and returns the handler's result.
// Callers name the result type explicitly: Send[domain.Profile](ctx, d, cmd).
func Send[R any, Q Request](ctx context.Context, d *Dispatcher, request Q) (R, error) {
	var zero R
	name := request.RequestName()
	log := logger.FromContextOrDefault(ctx, d.logger)

	d.mu.RLock()
	registered, ok := d.handlers[name]
	d.mu.RUnlock()

	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNoHandler, name)
	}

	h, ok := registered.(Handler[Q, R])
	if !ok {
		return zero, fmt.Errorf("%w: %s (handler has result type %T)", ErrNoHandler, name, registered)
	}

	if err := ctx.Err(); err != nil {
		return zero, fmt.Errorf("%s: %w", name, err)
	}

	start := time.Now()
	result, err := h.Handle(ctx, request)
	log.Debug("request handled",
		slog.String("request", name),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("success", err == nil))
	if err != nil {
		return zero, err
	}
	return result, nil
}
