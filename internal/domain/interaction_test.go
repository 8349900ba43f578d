package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardInteraction(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	cardID := uuid.New()

	interaction, err := NewCardInteraction(userID, cardID)
	require.NoError(t, err)

	assert.Equal(t, userID, interaction.UserID)
	assert.Equal(t, cardID, interaction.CardID)
	assert.Zero(t, interaction.TimesMastered)
	assert.Zero(t, interaction.TimesDifficult)
	assert.Empty(t, interaction.LastResult)

	_, err = NewCardInteraction(uuid.Nil, cardID)
	assert.ErrorIs(t, err, ErrInteractionUserIDEmpty)

	_, err = NewCardInteraction(userID, uuid.Nil)
	assert.ErrorIs(t, err, ErrInteractionCardIDEmpty)
}

func TestCardInteractionApply(t *testing.T) {
	t.Parallel()

	interaction, err := NewCardInteraction(uuid.New(), uuid.New())
	require.NoError(t, err)

	first := time.Now().UTC().Add(-10 * time.Minute)
	second := time.Now().UTC().Add(-5 * time.Minute)

	require.NoError(t, interaction.Apply(ReviewResultDifficult, first))
	assert.Equal(t, 0, interaction.TimesMastered)
	assert.Equal(t, 1, interaction.TimesDifficult)
	assert.Equal(t, ReviewResultDifficult, interaction.LastResult)
	assert.Equal(t, first, interaction.LastReviewedAt)

	require.NoError(t, interaction.Apply(ReviewResultMastered, second))
	assert.Equal(t, 1, interaction.TimesMastered)
	assert.Equal(t, 1, interaction.TimesDifficult)
	assert.Equal(t, ReviewResultMastered, interaction.LastResult)
	assert.Equal(t, second, interaction.LastReviewedAt)
}

func TestCardInteractionApplyKeepsLatestReviewTime(t *testing.T) {
	t.Parallel()

	interaction, err := NewCardInteraction(uuid.New(), uuid.New())
	require.NoError(t, err)

	newer := time.Now().UTC()
	older := newer.Add(-time.Hour)

	// A replayed buffer may apply events whose timestamps precede the
	// current last review; the newest timestamp wins.
	require.NoError(t, interaction.Apply(ReviewResultMastered, newer))
	require.NoError(t, interaction.Apply(ReviewResultDifficult, older))

	assert.Equal(t, newer, interaction.LastReviewedAt)
	assert.Equal(t, ReviewResultDifficult, interaction.LastResult)
}

func TestCardInteractionApplyRejectsInvalidResult(t *testing.T) {
	t.Parallel()

	interaction, err := NewCardInteraction(uuid.New(), uuid.New())
	require.NoError(t, err)

	err = interaction.Apply("skipped", time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvalidResult)
	assert.Zero(t, interaction.TimesMastered)
	assert.Zero(t, interaction.TimesDifficult)
}

func TestCardInteractionValidate(t *testing.T) {
	t.Parallel()

	interaction, err := NewCardInteraction(uuid.New(), uuid.New())
	require.NoError(t, err)

	interaction.TimesMastered = -1
	assert.ErrorIs(t, interaction.Validate(), ErrNegativeCount)

	interaction.TimesMastered = 0
	interaction.LastResult = "bogus"
	assert.ErrorIs(t, interaction.Validate(), ErrInvalidResult)
}
