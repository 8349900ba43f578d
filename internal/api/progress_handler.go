package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/coursekit/progress-api/internal/api/shared"
	"github.com/coursekit/progress-api/internal/domain"
	"github.com/coursekit/progress-api/internal/service/progress"
)

// ProgressHandler handles the progress recording and flush endpoints.
type ProgressHandler struct {
	progressService progress.Service
}

// NewProgressHandler creates a new ProgressHandler with the given dependencies.
func NewProgressHandler(progressService progress.Service) *ProgressHandler {
	if progressService == nil {
		panic("progressService cannot be nil")
	}
	return &ProgressHandler{
		progressService: progressService,
	}
}

// RecordProgress handles POST /api/flashcards/progress. It buffers one
// progress event and returns a receipt whose queueSize is the authoritative
// pending count; clients reconcile their local estimate against it.
func (h *ProgressHandler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req RecordProgressRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	receipt, err := h.progressService.Record(
		r.Context(),
		userID,
		req.FlashcardID,
		req.LessonID,
		domain.ReviewResult(req.Result),
	)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, receipt)
}

// FlushProgress handles PUT /api/flashcards/progress. The request carries no
// body: it asks the server to fold everything buffered for the caller into
// their interaction aggregates now. Flushing an empty buffer succeeds.
func (h *ProgressHandler) FlushProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	flushed, err := h.progressService.Flush(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, FlushResponse{
		Status:  string(progress.StatusFlushed),
		Flushed: flushed,
	})
}
