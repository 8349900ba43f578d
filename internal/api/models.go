package api

import (
	"time"

	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RecordProgressRequest defines the payload for recording one progress event.
type RecordProgressRequest struct {
	FlashcardID uuid.UUID `json:"flashcardId" validate:"required"`
	LessonID    uuid.UUID `json:"lessonId"    validate:"required"`
	Result      string    `json:"result"      validate:"required,oneof=mastered difficult"`
}

// FlushResponse defines the response for an explicit buffer flush.
type FlushResponse struct {
	Status  string `json:"status"`
	Flushed int    `json:"flushed"`
}

// InteractionResponse carries a user's interaction aggregate for one card.
type InteractionResponse struct {
	TimesMastered  int        `json:"timesMastered"`
	TimesDifficult int        `json:"timesDifficult"`
	LastResult     string     `json:"lastResult,omitempty"`
	LastReviewedAt *time.Time `json:"lastReviewedAt,omitempty"`
}

// FlashcardResponse defines a flashcard as returned by the listing endpoint.
type FlashcardResponse struct {
	ID              uuid.UUID            `json:"id"`
	LessonID        uuid.UUID            `json:"lessonId"`
	Front           string               `json:"front"`
	Back            string               `json:"back"`
	Hint            string               `json:"hint,omitempty"`
	Position        int                  `json:"position"`
	UserInteraction *InteractionResponse `json:"userInteraction,omitempty"`
}
