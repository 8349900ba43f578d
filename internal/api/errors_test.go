package api_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coursekit/progress-api/internal/api"
	"github.com/coursekit/progress-api/internal/service/auth"
	"github.com/coursekit/progress-api/internal/service/progress"
	"github.com/coursekit/progress-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"user not found", store.ErrUserNotFound, http.StatusNotFound},
		{"card not found", progress.ErrCardNotFound, http.StatusNotFound},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"invalid result", progress.ErrInvalidResult, http.StatusBadRequest},
		{"lesson mismatch", progress.ErrLessonMismatch, http.StatusBadRequest},
		{"unknown error", errors.New("disk on fire"), http.StatusInternalServerError},
		{"wrapped sentinel", fmt.Errorf("record: %w", progress.ErrCardNotFound), http.StatusNotFound},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, api.MapErrorToStatusCode(tc.err))
		})
	}
}

func TestGetSafeErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil error", nil, "An unexpected error occurred"},
		{"expired token", auth.ErrExpiredToken, "Invalid token"},
		{"invalid credentials", auth.ErrInvalidCredentials, "Invalid credentials"},
		{"card not found", progress.ErrCardNotFound, "Flashcard not found"},
		{"lesson mismatch", progress.ErrLessonMismatch, "Flashcard does not belong to the given lesson"},
		{"internal detail hidden", errors.New("pq: connection refused"), "An unexpected error occurred"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, api.GetSafeErrorMessage(tc.err))
		})
	}
}

// Service errors wrap their cause, so the mapping sees through the wrapper.
func TestMapErrorSeesThroughServiceError(t *testing.T) {
	t.Parallel()

	err := &progress.ServiceError{
		Operation: "record",
		Message:   "card lookup failed",
		Err:       progress.ErrCardNotFound,
	}

	assert.Equal(t, http.StatusNotFound, api.MapErrorToStatusCode(err))
	assert.Equal(t, "Flashcard not found", api.GetSafeErrorMessage(err))
}
