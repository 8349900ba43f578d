package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Interaction validation errors
var (
	ErrInteractionUserIDEmpty = errors.New("card interaction user ID cannot be empty")
	ErrInteractionCardIDEmpty = errors.New("card interaction card ID cannot be empty")
	ErrNegativeCount          = errors.New("interaction counts cannot be negative")
)

// CardInteraction is the per-user, per-card aggregate that buffered progress
// events fold into when the server flushes. It is what the flashcard listing
// exposes as prior interaction state.
type CardInteraction struct {
	UserID         uuid.UUID    `json:"user_id"`
	CardID         uuid.UUID    `json:"card_id"`
	TimesMastered  int          `json:"times_mastered"`
	TimesDifficult int          `json:"times_difficult"`
	LastResult     ReviewResult `json:"last_result,omitempty"`
	LastReviewedAt time.Time    `json:"last_reviewed_at"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewCardInteraction creates an empty interaction aggregate for a user/card
// pair. Returns an error if validation fails.
func NewCardInteraction(userID, cardID uuid.UUID) (*CardInteraction, error) {
	now := time.Now().UTC()
	interaction := &CardInteraction{
		UserID:    userID,
		CardID:    cardID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := interaction.Validate(); err != nil {
		return nil, err
	}

	return interaction, nil
}

// Apply folds a single review result into the aggregate. The at timestamp is
// the time the event was recorded, not the time of the flush, so replayed
// buffers keep their original review times.
func (i *CardInteraction) Apply(result ReviewResult, at time.Time) error {
	if !IsValidReviewResult(result) {
		return ErrInvalidResult
	}

	switch result {
	case ReviewResultMastered:
		i.TimesMastered++
	case ReviewResultDifficult:
		i.TimesDifficult++
	}

	i.LastResult = result
	if at.After(i.LastReviewedAt) {
		i.LastReviewedAt = at
	}
	i.UpdatedAt = time.Now().UTC()

	return nil
}

// Validate checks if the CardInteraction has valid data.
// Returns an error if any field fails validation.
func (i *CardInteraction) Validate() error {
	if i.UserID == uuid.Nil {
		return ErrInteractionUserIDEmpty
	}

	if i.CardID == uuid.Nil {
		return ErrInteractionCardIDEmpty
	}

	if i.TimesMastered < 0 || i.TimesDifficult < 0 {
		return ErrNegativeCount
	}

	if i.LastResult != "" && !IsValidReviewResult(i.LastResult) {
		return ErrInvalidResult
	}

	return nil
}
