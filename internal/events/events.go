package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProfileEventType identifies what happened to a profile.
type ProfileEventType string

// Possible profile event types.
const (
	ProfileCreated ProfileEventType = "profile_created"
	ProfileUpdated ProfileEventType = "profile_updated"
	ProfileDeleted ProfileEventType = "profile_deleted"
)

// ProfileEvent records a committed change to the profile registry.
type ProfileEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type indicates what kind of change was committed
	Type ProfileEventType `json:"type"`

	// ProfileName is the name of the profile after the change
	// (the removed name for deletions).
	ProfileName string `json:"profile_name"`

	// PreviousName is set for updates that replaced a differently named entry.
	PreviousName string `json:"previous_name,omitempty"`

	// Source names the caller that issued the change, e.g. "api" or "mutator".
	Source string `json:"source,omitempty"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// NewProfileEvent creates a ProfileEvent with a fresh ID and timestamp.
func NewProfileEvent(eventType ProfileEventType, profileName, previousName string) *ProfileEvent {
	return &ProfileEvent{
		ID:           uuid.New(),
		Type:         eventType,
		ProfileName:  profileName,
		PreviousName: previousName,
		CreatedAt:    time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *ProfileEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows handlers to publish changes without knowing who listens.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	EmitEvent(ctx context.Context, event *ProfileEvent) error
}

// HandlerFunc adapts a function to the EventHandler interface.
type HandlerFunc func(ctx context.Context, event *ProfileEvent) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *ProfileEvent) error {
	return f(ctx, event)
}

// SourceFromContext returns the change source stored by WithSource, or "".
func SourceFromContext(ctx context.Context) string {
	source, _ := ctx.Value(sourceKey{}).(string)
	return source
}

// WithSource tags ctx with the name of the component issuing changes.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

type sourceKey struct{}
