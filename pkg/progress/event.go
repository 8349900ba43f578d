package progress

import (
	"errors"

	"github.com/google/uuid"
)

// Result is the outcome of reviewing a single card.
type Result string

// Review results accepted by the progress API.
const (
	ResultMastered  Result = "mastered"
	ResultDifficult Result = "difficult"
)

// Event validation errors
var (
	ErrEventCardIDEmpty   = errors.New("event card ID cannot be empty")
	ErrEventLessonIDEmpty = errors.New("event lesson ID cannot be empty")
	ErrEventInvalidResult = errors.New("event result must be mastered or difficult")
)

// Event is one review outcome to submit. Events are immutable values.
type Event struct {
	CardID   uuid.UUID
	LessonID uuid.UUID
	Result   Result
}

// Validate checks if the Event has valid data.
func (e Event) Validate() error {
	if e.CardID == uuid.Nil {
		return ErrEventCardIDEmpty
	}
	if e.LessonID == uuid.Nil {
		return ErrEventLessonIDEmpty
	}
	if e.Result != ResultMastered && e.Result != ResultDifficult {
		return ErrEventInvalidResult
	}
	return nil
}

// SaveStatus is the tracker's UI-facing save state. It is a projection for
// status indicators only; it never gates whether events can be submitted.
type SaveStatus string

// Save statuses reported by the tracker.
const (
	StatusIdle   SaveStatus = "idle"
	StatusSaving SaveStatus = "saving"
	StatusSaved  SaveStatus = "saved"
	StatusError  SaveStatus = "error"
)
