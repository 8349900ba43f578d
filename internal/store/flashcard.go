package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/coursekit/progress-api/internal/domain"
)

// FlashcardStore defines read access to the card catalogue.
// Cards are authored by the platform's course tooling, so this service only
// ever reads them.
type FlashcardStore interface {
	// GetByID retrieves a flashcard by its unique ID.
	// Returns ErrFlashcardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)

	// ListByLesson retrieves all flashcards belonging to a lesson.
	// When randomize is true the cards are returned in random order,
	// otherwise in their authored position order. Returns an empty slice
	// when the lesson has no cards.
	ListByLesson(ctx context.Context, lessonID uuid.UUID, randomize bool) ([]*domain.Flashcard, error)
}
