package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event reasons recorded on flush requests so logs show why a buffer was
// flushed outside the inline threshold path.
const (
	// ReasonStale marks a flush requested by the sweeper because the
	// buffer's oldest event exceeded the configured age.
	ReasonStale = "stale"

	// ReasonShutdown marks a flush requested during server shutdown.
	ReasonShutdown = "shutdown"
)

// FlushRequestEvent represents a request to flush one user's buffered
// progress events into their interaction aggregates.
type FlushRequestEvent struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// UserID identifies whose buffer should be flushed
	UserID uuid.UUID `json:"user_id"`

	// Reason records why the flush was requested
	Reason string `json:"reason"`

	// CreatedAt is the timestamp when the event was created
	CreatedAt time.Time `json:"created_at"`
}

// MarshalLogValue returns a compact JSON form of the event for debug logs.
func (e *FlushRequestEvent) MarshalLogValue() ([]byte, error) {
	return json.Marshal(e)
}

// NewFlushRequestEvent creates a new FlushRequestEvent for the given user.
func NewFlushRequestEvent(userID uuid.UUID, reason string) *FlushRequestEvent {
	return &FlushRequestEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}
}

// EventHandler defines an interface for components that can handle
// flush-request events.
type EventHandler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event *FlushRequestEvent) error
}

// EventEmitter defines an interface for components that can emit events.
// This allows emitters to publish events without direct knowledge of handlers.
type EventEmitter interface {
	// EmitEvent publishes the given event to all registered handlers.
	// Returns an error if the event cannot be emitted.
	EmitEvent(ctx context.Context, event *FlushRequestEvent) error
}
