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

// PostgresInteractionStore implements the store.InteractionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresInteractionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresInteractionStore creates a new PostgreSQL implementation of the
// InteractionStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresInteractionStore(db store.DBTX, logger *slog.Logger) *PostgresInteractionStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresInteractionStore{
		db:     db,
		logger: logger.With(slog.String("component", "interaction_store")),
	}
}

// Ensure PostgresInteractionStore implements store.InteractionStore interface
var _ store.InteractionStore = (*PostgresInteractionStore)(nil)

// WithTx returns a copy of the store bound to the given transaction.
func (s *PostgresInteractionStore) WithTx(tx *sql.Tx) *PostgresInteractionStore {
	return &PostgresInteractionStore{
		db:     tx,
		logger: s.logger,
	}
}

// Get implements store.InteractionStore.Get
// Returns store.ErrInteractionNotFound if no aggregate exists for the pair.
func (s *PostgresInteractionStore) Get(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.CardInteraction, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id, card_id, times_mastered, times_difficult,
		       last_result, last_reviewed_at, created_at, updated_at
		FROM card_interactions
		WHERE user_id = $1 AND card_id = $2
	`

	interaction, err := scanInteraction(s.db.QueryRowContext(ctx, query, userID, cardID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrInteractionNotFound
		}
		log.Error("failed to get card interaction",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, mapError(err)
	}

	return interaction, nil
}

// Upsert implements store.InteractionStore.Upsert
// The (user_id, card_id) pair is the primary key, so ON CONFLICT replaces
// the aggregate columns in place.
func (s *PostgresInteractionStore) Upsert(ctx context.Context, interaction *domain.CardInteraction) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := interaction.Validate(); err != nil {
		log.Warn("card interaction validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("user_id", interaction.UserID.String()),
			slog.String("card_id", interaction.CardID.String()))
		return err
	}

	query := `
		INSERT INTO card_interactions
			(user_id, card_id, times_mastered, times_difficult,
			 last_result, last_reviewed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			times_mastered = EXCLUDED.times_mastered,
			times_difficult = EXCLUDED.times_difficult,
			last_result = EXCLUDED.last_result,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			updated_at = EXCLUDED.updated_at
	`

	lastResult := sql.NullString{}
	if interaction.LastResult != "" {
		lastResult = sql.NullString{String: string(interaction.LastResult), Valid: true}
	}

	_, err := s.db.ExecContext(
		ctx,
		query,
		interaction.UserID,
		interaction.CardID,
		interaction.TimesMastered,
		interaction.TimesDifficult,
		lastResult,
		interaction.LastReviewedAt,
		interaction.CreatedAt,
		interaction.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to upsert card interaction",
			slog.String("error", err.Error()),
			slog.String("user_id", interaction.UserID.String()),
			slog.String("card_id", interaction.CardID.String()))
		return mapError(err)
	}

	return nil
}

// ListByLesson implements store.InteractionStore.ListByLesson
func (s *PostgresInteractionStore) ListByLesson(
	ctx context.Context,
	userID, lessonID uuid.UUID,
) (map[uuid.UUID]*domain.CardInteraction, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ci.user_id, ci.card_id, ci.times_mastered, ci.times_difficult,
		       ci.last_result, ci.last_reviewed_at, ci.created_at, ci.updated_at
		FROM card_interactions ci
		JOIN flashcards f ON f.id = ci.card_id
		WHERE ci.user_id = $1 AND f.lesson_id = $2
	`

	rows, err := s.db.QueryContext(ctx, query, userID, lessonID)
	if err != nil {
		log.Error("failed to query card interactions by lesson",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("lesson_id", lessonID.String()))
		return nil, mapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	interactions := make(map[uuid.UUID]*domain.CardInteraction)
	for rows.Next() {
		interaction, err := scanInteraction(rows)
		if err != nil {
			log.Error("failed to scan card interaction row", slog.String("error", err.Error()))
			return nil, mapError(err)
		}
		interactions[interaction.CardID] = interaction
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	return interactions, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanInteraction(row rowScanner) (*domain.CardInteraction, error) {
	var interaction domain.CardInteraction
	var lastResult sql.NullString
	var lastReviewedAt sql.NullTime

	err := row.Scan(
		&interaction.UserID,
		&interaction.CardID,
		&interaction.TimesMastered,
		&interaction.TimesDifficult,
		&lastResult,
		&lastReviewedAt,
		&interaction.CreatedAt,
		&interaction.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastResult.Valid {
		interaction.LastResult = domain.ReviewResult(lastResult.String)
	}
	if lastReviewedAt.Valid {
		interaction.LastReviewedAt = lastReviewedAt.Time
	}

	return &interaction, nil
}
