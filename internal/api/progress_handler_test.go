package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/coursekit/progress-api/internal/api"
	"github.com/coursekit/progress-api/internal/api/shared"
	"github.com/coursekit/progress-api/internal/domain"
	"github.com/coursekit/progress-api/internal/service/progress"
)

// MockProgressService is a mock implementation of the progress.Service interface
type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) Record(
	ctx context.Context,
	userID uuid.UUID,
	cardID, lessonID uuid.UUID,
	result domain.ReviewResult,
) (*progress.Receipt, error) {
	args := m.Called(ctx, userID, cardID, lessonID, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*progress.Receipt), args.Error(1)
}

func (m *MockProgressService) Flush(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockProgressService) ListCards(
	ctx context.Context,
	userID, lessonID uuid.UUID,
	includeInteractions, randomize bool,
) ([]progress.CardWithInteraction, error) {
	args := m.Called(ctx, userID, lessonID, includeInteractions, randomize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]progress.CardWithInteraction), args.Error(1)
}

func (m *MockProgressService) StaleBuffers(ctx context.Context, maxAgeMinutes int) ([]uuid.UUID, error) {
	args := m.Called(ctx, maxAgeMinutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// authenticated injects a user ID into the request context the way the auth
// middleware does.
func authenticated(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func recordBody(t *testing.T, cardID, lessonID uuid.UUID, result string) *bytes.Reader {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"flashcardId": cardID.String(),
		"lessonId":    lessonID.String(),
		"result":      result,
	})
	require.NoError(t, err)
	return bytes.NewReader(body)
}

func TestRecordProgressReturnsReceipt(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewProgressHandler(svc)

	userID := uuid.New()
	cardID := uuid.New()
	lessonID := uuid.New()

	svc.On("Record", mock.Anything, userID, cardID, lessonID, domain.ReviewResultMastered).
		Return(&progress.Receipt{Status: progress.StatusAccepted, QueueSize: 3}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/flashcards/progress",
		recordBody(t, cardID, lessonID, "mastered"))
	rec := httptest.NewRecorder()
	handler.RecordProgress(rec, authenticated(req, userID))

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "accepted", got["status"])
	assert.Equal(t, float64(3), got["queueSize"])
}

func TestRecordProgressReportsThresholdFlush(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewProgressHandler(svc)

	userID := uuid.New()
	cardID := uuid.New()
	lessonID := uuid.New()

	svc.On("Record", mock.Anything, userID, cardID, lessonID, domain.ReviewResultDifficult).
		Return(&progress.Receipt{Status: progress.StatusFlushed, QueueSize: 0}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/flashcards/progress",
		recordBody(t, cardID, lessonID, "difficult"))
	rec := httptest.NewRecorder()
	handler.RecordProgress(rec, authenticated(req, userID))

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "flushed", got["status"])
	assert.Equal(t, float64(0), got["queueSize"])
}

func TestRecordProgressValidation(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewProgressHandler(svc)
	userID := uuid.New()

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"unknown result", `{"flashcardId":"` + uuid.NewString() + `","lessonId":"` + uuid.NewString() + `","result":"skipped"}`},
		{"missing lesson", `{"flashcardId":"` + uuid.NewString() + `","result":"mastered"}`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/api/flashcards/progress",
				bytes.NewReader([]byte(tc.body)))
			rec := httptest.NewRecorder()
			handler.RecordProgress(rec, authenticated(req, userID))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}

	svc.AssertNotCalled(t, "Record")
}

func TestRecordProgressRequiresAuth(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewProgressHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/flashcards/progress",
		recordBody(t, uuid.New(), uuid.New(), "mastered"))
	rec := httptest.NewRecorder()
	handler.RecordProgress(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Record")
}

func TestRecordProgressMapsServiceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unknown card", progress.ErrCardNotFound, http.StatusNotFound},
		{"lesson mismatch", progress.ErrLessonMismatch, http.StatusBadRequest},
		{"invalid result", progress.ErrInvalidResult, http.StatusBadRequest},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &MockProgressService{}
			handler := api.NewProgressHandler(svc)
			userID := uuid.New()
			cardID := uuid.New()
			lessonID := uuid.New()

			svc.On("Record", mock.Anything, userID, cardID, lessonID, domain.ReviewResultMastered).
				Return(nil, tc.err)

			req := httptest.NewRequest(http.MethodPost, "/api/flashcards/progress",
				recordBody(t, cardID, lessonID, "mastered"))
			rec := httptest.NewRecorder()
			handler.RecordProgress(rec, authenticated(req, userID))

			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestFlushProgress(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewProgressHandler(svc)
	userID := uuid.New()

	svc.On("Flush", mock.Anything, userID).Return(5, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/flashcards/progress", nil)
	rec := httptest.NewRecorder()
	handler.FlushProgress(rec, authenticated(req, userID))

	require.Equal(t, http.StatusOK, rec.Code)

	var got api.FlushResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "flushed", got.Status)
	assert.Equal(t, 5, got.Flushed)
}

func TestFlushProgressEmptyBufferSucceeds(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewProgressHandler(svc)
	userID := uuid.New()

	svc.On("Flush", mock.Anything, userID).Return(0, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/flashcards/progress", nil)
	rec := httptest.NewRecorder()
	handler.FlushProgress(rec, authenticated(req, userID))

	require.Equal(t, http.StatusOK, rec.Code)

	var got api.FlushResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 0, got.Flushed)
}

func TestFlushProgressRequiresAuth(t *testing.T) {
	t.Parallel()

	svc := &MockProgressService{}
	handler := api.NewProgressHandler(svc)

	req := httptest.NewRequest(http.MethodPut, "/api/flashcards/progress", nil)
	rec := httptest.NewRecorder()
	handler.FlushProgress(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	svc.AssertNotCalled(t, "Flush")
}
