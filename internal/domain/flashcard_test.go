package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFlashcard(t *testing.T) {
	t.Parallel()

	lessonID := uuid.New()
	card, err := NewFlashcard(lessonID, "la maison", "the house", "think of home", 3)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, card.ID)
	assert.Equal(t, lessonID, card.LessonID)
	assert.Equal(t, "la maison", card.Front)
	assert.Equal(t, "the house", card.Back)
	assert.Equal(t, "think of home", card.Hint)
	assert.Equal(t, 3, card.Position)
}

func TestFlashcardValidation(t *testing.T) {
	t.Parallel()

	_, err := NewFlashcard(uuid.Nil, "front", "back", "", 0)
	assert.ErrorIs(t, err, ErrFlashcardLessonIDEmpty)

	_, err = NewFlashcard(uuid.New(), "", "back", "", 0)
	assert.ErrorIs(t, err, ErrFlashcardFrontEmpty)

	_, err = NewFlashcard(uuid.New(), "front", "", "", 0)
	assert.ErrorIs(t, err, ErrFlashcardBackEmpty)

	// Hint is optional.
	_, err = NewFlashcard(uuid.New(), "front", "back", "", 0)
	assert.NoError(t, err)
}
