// Package progress implements the server side of the study-progress
// contract: recording progress events into a per-user buffer, flushing that
// buffer into interaction aggregates, and listing cards with prior
// interaction state.
package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/coursekit/progress-api/internal/domain"
)

// ReceiptStatus reports what the server did with a recorded event.
type ReceiptStatus string

// Receipt statuses returned by Record.
const (
	// StatusAccepted means the event was buffered; QueueSize carries the
	// authoritative pending count so clients can reconcile their estimate.
	StatusAccepted ReceiptStatus = "accepted"

	// StatusFlushed means recording this event pushed the buffer over the
	// flush threshold and the whole buffer was folded into interaction
	// aggregates in the same transaction.
	StatusFlushed ReceiptStatus = "flushed"
)

// Receipt is the server's response to a recorded progress event.
type Receipt struct {
	Status    ReceiptStatus `json:"status"`
	QueueSize int           `json:"queueSize"`
}

// CardWithInteraction pairs a flashcard with the requesting user's
// interaction aggregate, if any.
type CardWithInteraction struct {
	Card        *domain.Flashcard
	Interaction *domain.CardInteraction
}

// Service provides the progress operations exposed by the API.
type Service interface {
	// Record buffers one progress event for the user. When the buffer
	// reaches the configured threshold the whole buffer is flushed in the
	// same transaction and the receipt reports StatusFlushed with a queue
	// size of zero; otherwise StatusAccepted with the current pending
	// count.
	Record(ctx context.Context, userID uuid.UUID, cardID, lessonID uuid.UUID, result domain.ReviewResult) (*Receipt, error)

	// Flush folds all of the user's buffered events into their interaction
	// aggregates in one transaction and empties the buffer. Returns the
	// number of events flushed; flushing an empty buffer returns zero and
	// no error.
	Flush(ctx context.Context, userID uuid.UUID) (int, error)

	// ListCards returns the lesson's cards, optionally randomized. When
	// includeInteractions is set, each card carries the user's interaction
	// aggregate.
	ListCards(ctx context.Context, userID, lessonID uuid.UUID, includeInteractions, randomize bool) ([]CardWithInteraction, error)

	// StaleBuffers returns the users whose buffers the sweeper should
	// flush because their oldest event predates the cutoff.
	StaleBuffers(ctx context.Context, maxAgeMinutes int) ([]uuid.UUID, error)
}

// Common error types for the progress service
var (
	// ErrCardNotFound indicates that the referenced flashcard does not exist.
	ErrCardNotFound = errors.New("flashcard not found")

	// ErrLessonMismatch indicates the card does not belong to the lesson
	// named in the event.
	ErrLessonMismatch = errors.New("flashcard does not belong to lesson")

	// ErrInvalidResult indicates an unknown review result was submitted.
	ErrInvalidResult = errors.New("invalid review result")
)

// ServiceError wraps errors from the progress service with operation context,
// so consumers can differentiate failures with errors.As instead of string
// matching.
type ServiceError struct {
	Operation string // e.g. "record", "flush", "list_cards"
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
