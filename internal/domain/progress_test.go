package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProgressEvent(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	cardID := uuid.New()
	lessonID := uuid.New()

	event, err := NewProgressEvent(userID, cardID, lessonID, ReviewResultMastered)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, event.ID)
	assert.Equal(t, userID, event.UserID)
	assert.Equal(t, cardID, event.CardID)
	assert.Equal(t, lessonID, event.LessonID)
	assert.Equal(t, ReviewResultMastered, event.Result)
	assert.False(t, event.RecordedAt.IsZero())
}

func TestProgressEventValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*ProgressEvent)
		wantErr error
	}{
		{
			name:    "missing user ID",
			mutate:  func(e *ProgressEvent) { e.UserID = uuid.Nil },
			wantErr: ErrEventUserIDEmpty,
		},
		{
			name:    "missing card ID",
			mutate:  func(e *ProgressEvent) { e.CardID = uuid.Nil },
			wantErr: ErrEventCardIDEmpty,
		},
		{
			name:    "missing lesson ID",
			mutate:  func(e *ProgressEvent) { e.LessonID = uuid.Nil },
			wantErr: ErrEventLessonIDEmpty,
		},
		{
			name:    "unknown result",
			mutate:  func(e *ProgressEvent) { e.Result = "skipped" },
			wantErr: ErrInvalidResult,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			event, err := NewProgressEvent(uuid.New(), uuid.New(), uuid.New(), ReviewResultDifficult)
			require.NoError(t, err)

			tc.mutate(event)
			assert.ErrorIs(t, event.Validate(), tc.wantErr)
		})
	}
}

func TestIsValidReviewResult(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidReviewResult(ReviewResultMastered))
	assert.True(t, IsValidReviewResult(ReviewResultDifficult))
	assert.False(t, IsValidReviewResult(""))
	assert.False(t, IsValidReviewResult("Mastered"))
	assert.False(t, IsValidReviewResult("skipped"))
}
