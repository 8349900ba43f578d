package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/coursekit/progress-api/internal/domain"
)

// ProgressStore manages the server-side buffer of progress events that have
// been recorded but not yet folded into interaction aggregates.
type ProgressStore interface {
	// Enqueue appends a progress event to the user's pending buffer.
	// Returns validation errors from the domain ProgressEvent if data is
	// invalid, or ErrInvalidEntity on foreign key violations.
	Enqueue(ctx context.Context, event *domain.ProgressEvent) error

	// CountPending returns the number of buffered events for the user.
	CountPending(ctx context.Context, userID uuid.UUID) (int, error)

	// PendingForUser returns the user's buffered events ordered by
	// recording time, oldest first. Returns an empty slice when the buffer
	// is empty.
	PendingForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ProgressEvent, error)

	// DeletePending removes all buffered events for the user and returns
	// how many were removed. Deleting an empty buffer is not an error.
	DeletePending(ctx context.Context, userID uuid.UUID) (int, error)

	// UsersWithPendingOlderThan returns the IDs of users whose oldest
	// buffered event was recorded before the cutoff. The sweeper uses this
	// to find buffers the clients never flushed.
	UsersWithPendingOlderThan(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

// InteractionStore manages the per-user per-card aggregates that flushes
// fold progress events into.
type InteractionStore interface {
	// Get retrieves the interaction aggregate for a user/card pair.
	// Returns ErrInteractionNotFound if none exists yet.
	Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardInteraction, error)

	// Upsert inserts the aggregate or replaces the existing row for the
	// same user/card pair.
	Upsert(ctx context.Context, interaction *domain.CardInteraction) error

	// ListByLesson retrieves the user's aggregates for all cards of a
	// lesson, keyed by card ID. Returns an empty map when the user has no
	// interactions in the lesson.
	ListByLesson(ctx context.Context, userID, lessonID uuid.UUID) (map[uuid.UUID]*domain.CardInteraction, error)
}
