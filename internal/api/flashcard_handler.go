package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/coursekit/progress-api/internal/api/shared"
	"github.com/coursekit/progress-api/internal/domain"
	"github.com/coursekit/progress-api/internal/service/progress"
)

// FlashcardHandler handles the flashcard listing endpoint.
type FlashcardHandler struct {
	progressService progress.Service
}

// NewFlashcardHandler creates a new FlashcardHandler with the given dependencies.
func NewFlashcardHandler(progressService progress.Service) *FlashcardHandler {
	if progressService == nil {
		panic("progressService cannot be nil")
	}
	return &FlashcardHandler{
		progressService: progressService,
	}
}

// ListFlashcards handles GET /api/v1/flashcards. Query parameters:
//
//	lessonId                (required) UUID of the lesson
//	includeUserInteractions (optional) bool, attach the caller's aggregates
//	randomize               (optional) bool, shuffle instead of position order
func (h *FlashcardHandler) ListFlashcards(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	lessonIDParam := r.URL.Query().Get("lessonId")
	if lessonIDParam == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "lessonId is required")
		return
	}

	lessonID, err := uuid.Parse(lessonIDParam)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid lessonId format")
		return
	}

	includeInteractions := parseBoolParam(r, "includeUserInteractions")
	randomize := parseBoolParam(r, "randomize")

	cards, err := h.progressService.ListCards(r.Context(), userID, lessonID, includeInteractions, randomize)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response := make([]FlashcardResponse, 0, len(cards))
	for _, entry := range cards {
		response = append(response, cardToResponse(entry))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// parseBoolParam reads an optional boolean query parameter, treating absent
// or malformed values as false.
func parseBoolParam(r *http.Request, name string) bool {
	value, err := strconv.ParseBool(r.URL.Query().Get(name))
	if err != nil {
		return false
	}
	return value
}

func cardToResponse(entry progress.CardWithInteraction) FlashcardResponse {
	card := entry.Card
	response := FlashcardResponse{
		ID:       card.ID,
		LessonID: card.LessonID,
		Front:    card.Front,
		Back:     card.Back,
		Hint:     card.Hint,
		Position: card.Position,
	}
	if entry.Interaction != nil {
		response.UserInteraction = interactionToResponse(entry.Interaction)
	}
	return response
}

func interactionToResponse(interaction *domain.CardInteraction) *InteractionResponse {
	response := &InteractionResponse{
		TimesMastered:  interaction.TimesMastered,
		TimesDifficult: interaction.TimesDifficult,
		LastResult:     string(interaction.LastResult),
	}
	if !interaction.LastReviewedAt.IsZero() {
		at := interaction.LastReviewedAt
		response.LastReviewedAt = &at
	}
	return response
}
