package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewResult represents a user's verdict on a flashcard.
type ReviewResult string

// Possible review result values
const (
	ReviewResultMastered  ReviewResult = "mastered"
	ReviewResultDifficult ReviewResult = "difficult"
)

// Progress event validation errors
var (
	ErrEventIDEmpty       = errors.New("progress event ID cannot be empty")
	ErrEventUserIDEmpty   = errors.New("progress event user ID cannot be empty")
	ErrEventCardIDEmpty   = errors.New("progress event card ID cannot be empty")
	ErrEventLessonIDEmpty = errors.New("progress event lesson ID cannot be empty")
	ErrInvalidResult      = errors.New("invalid review result")
)

// ProgressEvent records a single card verdict made by a user during a study
// session. Events are immutable once created; they sit in the per-user
// buffer until a flush folds them into the user's CardInteraction rows.
type ProgressEvent struct {
	ID         uuid.UUID    `json:"id"`
	UserID     uuid.UUID    `json:"user_id"`
	CardID     uuid.UUID    `json:"card_id"`
	LessonID   uuid.UUID    `json:"lesson_id"`
	Result     ReviewResult `json:"result"`
	RecordedAt time.Time    `json:"recorded_at"`
}

// NewProgressEvent creates a new ProgressEvent with a generated ID and the
// current time as the recording timestamp. Returns an error if validation fails.
func NewProgressEvent(userID, cardID, lessonID uuid.UUID, result ReviewResult) (*ProgressEvent, error) {
	event := &ProgressEvent{
		ID:         uuid.New(),
		UserID:     userID,
		CardID:     cardID,
		LessonID:   lessonID,
		Result:     result,
		RecordedAt: time.Now().UTC(),
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the ProgressEvent has valid data.
// Returns an error if any field fails validation.
func (e *ProgressEvent) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEventIDEmpty
	}

	if e.UserID == uuid.Nil {
		return ErrEventUserIDEmpty
	}

	if e.CardID == uuid.Nil {
		return ErrEventCardIDEmpty
	}

	if e.LessonID == uuid.Nil {
		return ErrEventLessonIDEmpty
	}

	if !IsValidReviewResult(e.Result) {
		return ErrInvalidResult
	}

	return nil
}

// IsValidReviewResult reports whether the given result is a known verdict.
func IsValidReviewResult(result ReviewResult) bool {
	switch result {
	case ReviewResultMastered, ReviewResultDifficult:
		return true
	default:
		return false
	}
}
