package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coursekit/progress-api/internal/domain"
	"github.com/coursekit/progress-api/internal/platform/logger"
	"github.com/coursekit/progress-api/internal/store"
)

// PostgresProgressStore implements the store.ProgressStore interface
// using a PostgreSQL database as the storage backend. The progress_events
// table is the server-side buffer: rows only exist between recording and
// the flush that folds them into card_interactions.
type PostgresProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresProgressStore creates a new PostgreSQL implementation of the
// ProgressStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresProgressStore(db store.DBTX, logger *slog.Logger) *PostgresProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

// Ensure PostgresProgressStore implements store.ProgressStore interface
var _ store.ProgressStore = (*PostgresProgressStore)(nil)

// WithTx returns a copy of the store bound to the given transaction.
func (s *PostgresProgressStore) WithTx(tx *sql.Tx) *PostgresProgressStore {
	return &PostgresProgressStore{
		db:     tx,
		logger: s.logger,
	}
}

// Enqueue implements store.ProgressStore.Enqueue
// Returns validation errors from the domain ProgressEvent if data is invalid,
// or store.ErrInvalidEntity if the user or card does not exist.
func (s *PostgresProgressStore) Enqueue(ctx context.Context, event *domain.ProgressEvent) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := event.Validate(); err != nil {
		log.Warn("progress event validation failed during enqueue",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()))
		return err
	}

	query := `
		INSERT INTO progress_events (id, user_id, card_id, lesson_id, result, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		event.ID,
		event.UserID,
		event.CardID,
		event.LessonID,
		event.Result,
		event.RecordedAt,
	)

	if err != nil {
		log.Error("failed to enqueue progress event",
			slog.String("error", err.Error()),
			slog.String("event_id", event.ID.String()),
			slog.String("user_id", event.UserID.String()))
		return mapError(err)
	}

	log.Debug("progress event enqueued",
		slog.String("event_id", event.ID.String()),
		slog.String("user_id", event.UserID.String()),
		slog.String("result", string(event.Result)))
	return nil
}

// CountPending implements store.ProgressStore.CountPending
func (s *PostgresProgressStore) CountPending(ctx context.Context, userID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT COUNT(*) FROM progress_events WHERE user_id = $1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		log.Error("failed to count pending events",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, mapError(err)
	}

	return count, nil
}

// PendingForUser implements store.ProgressStore.PendingForUser
// Events are returned oldest first so flushes replay them in recording order.
func (s *PostgresProgressStore) PendingForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.ProgressEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, card_id, lesson_id, result, recorded_at
		FROM progress_events
		WHERE user_id = $1
		ORDER BY recorded_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to query pending events",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, mapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var events []*domain.ProgressEvent
	for rows.Next() {
		var event domain.ProgressEvent
		var result string

		err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.CardID,
			&event.LessonID,
			&result,
			&event.RecordedAt,
		)
		if err != nil {
			log.Error("failed to scan progress event row", slog.String("error", err.Error()))
			return nil, mapError(err)
		}

		event.Result = domain.ReviewResult(result)
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	if events == nil {
		events = []*domain.ProgressEvent{}
	}

	return events, nil
}

// DeletePending implements store.ProgressStore.DeletePending
func (s *PostgresProgressStore) DeletePending(ctx context.Context, userID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM progress_events WHERE user_id = $1`

	result, err := s.db.ExecContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to delete pending events",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, mapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, err
	}

	log.Debug("deleted pending events",
		slog.String("user_id", userID.String()),
		slog.Int64("count", rowsAffected))
	return int(rowsAffected), nil
}

// UsersWithPendingOlderThan implements store.ProgressStore.UsersWithPendingOlderThan
func (s *PostgresProgressStore) UsersWithPendingOlderThan(
	ctx context.Context,
	cutoff time.Time,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT user_id
		FROM progress_events
		GROUP BY user_id
		HAVING MIN(recorded_at) < $1
	`

	rows, err := s.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		log.Error("failed to query stale buffers",
			slog.String("error", err.Error()),
			slog.Time("cutoff", cutoff))
		return nil, mapError(err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var userIDs []uuid.UUID
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			log.Error("failed to scan user ID row", slog.String("error", err.Error()))
			return nil, mapError(err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, mapError(err)
	}

	return userIDs, nil
}
