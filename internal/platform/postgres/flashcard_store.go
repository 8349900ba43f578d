package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/coursekit/progress-api/internal/domain"
	"github.com/coursekit/progress-api/internal/platform/logger"
	"github.com/coursekit/progress-api/internal/store"
)

// PostgresFlashcardStore implements the store.FlashcardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresFlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresFlashcardStore creates a new PostgreSQL implementation of the
// FlashcardStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresFlashcardStore(db store.DBTX, logger *slog.Logger) *PostgresFlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresFlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

// Ensure PostgresFlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*PostgresFlashcardStore)(nil)

// WithTx returns a copy of the store bound to the given transaction.
func (s *PostgresFlashcardStore) WithTx(tx *sql.Tx) *PostgresFlashcardStore {
	return &PostgresFlashcardStore{
		db:     tx,
		logger: s.logger,
	}
}

// GetByID implements store.FlashcardStore.GetByID
// Returns store.ErrFlashcardNotFound if the card does not exist.
func (s *PostgresFlashcardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, lesson_id, front, back, hint, position, created_at, updated_at
		FROM flashcards
		WHERE id = $1
	`

	var card domain.Flashcard
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&card.ID,
		&card.LessonID,
		&card.Front,
		&card.Back,
		&card.Hint,
		&card.Position,
		&card.CreatedAt,
		&card.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("flashcard not found", slog.String("card_id", id.String()))
			return nil, store.ErrFlashcardNotFound
		}
		log.Error("failed to get flashcard by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, mapError(err)
	}

	return &card, nil
}

// ListByLesson implements store.FlashcardStore.ListByLesson
// Ordering is delegated to the database: random() for randomized study
// sessions, authored position otherwise.
func (s *PostgresFlashcardStore) ListByLesson(
	ctx context.Context,
	lessonID uuid.UUID,
	randomize bool,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, lesson_id, front, back, hint, position, created_at, updated_at
		FROM flashcards
		WHERE lesson_id = $1
		ORDER BY position ASC
	`
	if randomize {
		query = `
			SELECT id, lesson_id, front, back, hint, position, created_at, updated_at
			FROM flashcards
			WHERE lesson_id = $1
			ORDER BY random()
		`
	}

	rows, err := s.db.QueryContext(ctx, query, lessonID)
	if err != nil {
		log.Error("failed to query flashcards by lesson",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()))
		return nil, mapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var cards []*domain.Flashcard
	for rows.Next() {
		var card domain.Flashcard
		err := rows.Scan(
			&card.ID,
			&card.LessonID,
			&card.Front,
			&card.Back,
			&card.Hint,
			&card.Position,
			&card.CreatedAt,
			&card.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan flashcard row", slog.String("error", err.Error()))
			return nil, mapError(err)
		}
		cards = append(cards, &card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	// Return empty slice instead of nil if the lesson has no cards
	if cards == nil {
		cards = []*domain.Flashcard{}
	}

	log.Debug("listed flashcards by lesson",
		slog.String("lesson_id", lessonID.String()),
		slog.Bool("randomize", randomize),
		slog.Int("count", len(cards)))
	return cards, nil
}
