package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coursekit/progress-api/internal/api"
	"github.com/coursekit/progress-api/internal/domain"
	"github.com/coursekit/progress-api/internal/service/progress"
)

func lessonCards(lessonID uuid.UUID) []progress.CardWithInteraction {
	return []progress.CardWithInteraction{
		{
			Card: &domain.Flashcard{
				ID:       uuid.New(),
				LessonID: lessonID,
				Front:    "bonjour",
				Back:     "hello",
				Position: 0,
			},
		},
		{
			Card: &domain.Flashcard{
				ID:       uuid.New(),
				LessonID: lessonID,
				Front:    "merci",
				Back:     "thank you",
				Hint:     "gratitude",
				Position: 1,
			},
		},
	}
}

func TestListFlashcards(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewFlashcardHandler(svc)

	userID := uuid.New()
	lessonID := uuid.New()
	cards := lessonCards(lessonID)

	svc.On("ListCards", mock.Anything, userID, lessonID, false, false).Return(cards, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flashcards?lessonId="+lessonID.String(), nil)
	rec := httptest.NewRecorder()
	handler.ListFlashcards(rec, authenticated(req, userID))

	require.Equal(t, http.StatusOK, rec.Code)

	var got []api.FlashcardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "bonjour", got[0].Front)
	assert.Equal(t, "gratitude", got[1].Hint)
	assert.Nil(t, got[0].UserInteraction)
}

func TestListFlashcardsWithInteractions(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewFlashcardHandler(svc)

	userID := uuid.New()
	lessonID := uuid.New()
	reviewedAt := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)

	cards := lessonCards(lessonID)
	cards[0].Interaction = &domain.CardInteraction{
		UserID:         userID,
		CardID:         cards[0].Card.ID,
		TimesMastered:  3,
		TimesDifficult: 1,
		LastResult:     domain.ReviewResultMastered,
		LastReviewedAt: reviewedAt,
	}

	svc.On("ListCards", mock.Anything, userID, lessonID, true, true).Return(cards, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/flashcards?lessonId="+lessonID.String()+"&includeUserInteractions=true&randomize=true", nil)
	rec := httptest.NewRecorder()
	handler.ListFlashcards(rec, authenticated(req, userID))

	require.Equal(t, http.StatusOK, rec.Code)

	var got []api.FlashcardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)

	require.NotNil(t, got[0].UserInteraction)
	assert.Equal(t, 3, got[0].UserInteraction.TimesMastered)
	assert.Equal(t, 1, got[0].UserInteraction.TimesDifficult)
	assert.Equal(t, "mastered", got[0].UserInteraction.LastResult)
	require.NotNil(t, got[0].UserInteraction.LastReviewedAt)
	assert.True(t, got[0].UserInteraction.LastReviewedAt.Equal(reviewedAt))

	// Cards the user never reviewed carry no interaction.
	assert.Nil(t, got[1].UserInteraction)
}

func TestListFlashcardsRequiresLessonID(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewFlashcardHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flashcards", nil)
	rec := httptest.NewRecorder()
	handler.ListFlashcards(rec, authenticated(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ListCards")
}

func TestListFlashcardsRejectsMalformedLessonID(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewFlashcardHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flashcards?lessonId=not-a-uuid", nil)
	rec := httptest.NewRecorder()
	handler.ListFlashcards(rec, authenticated(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "ListCards")
}

func TestListFlashcardsTreatsMalformedBoolAsFalse(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewFlashcardHandler(svc)

	userID := uuid.New()
	lessonID := uuid.New()

	svc.On("ListCards", mock.Anything, userID, lessonID, false, false).
		Return([]progress.CardWithInteraction{}, nil)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/flashcards?lessonId="+lessonID.String()+"&includeUserInteractions=maybe", nil)
	rec := httptest.NewRecorder()
	handler.ListFlashcards(rec, authenticated(req, userID))

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestListFlashcardsRequiresAuth(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewFlashcardHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flashcards?lessonId="+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	handler.ListFlashcards(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "ListCards")
}
