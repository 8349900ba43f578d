package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/coursekit/progress-api/internal/domain"
	"github.com/coursekit/progress-api/internal/platform/logger"
	"github.com/coursekit/progress-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

// serviceImpl implements the Service interface.
type serviceImpl struct {
	progressRepo    ProgressRepository
	interactionRepo InteractionRepository
	cardRepo        CardRepository
	flushThreshold  int
	logger          *slog.Logger
}

// NewService creates a new progress Service implementation.
// flushThreshold is the pending-event count at which Record flushes the
// user's buffer inline instead of growing it further.
func NewService(
	progressRepo ProgressRepository,
	interactionRepo InteractionRepository,
	cardRepo CardRepository,
	flushThreshold int,
	logger *slog.Logger,
) (Service, error) {
	if progressRepo == nil {
		return nil, fmt.Errorf("progressRepo cannot be nil")
	}
	if interactionRepo == nil {
		return nil, fmt.Errorf("interactionRepo cannot be nil")
	}
	if cardRepo == nil {
		return nil, fmt.Errorf("cardRepo cannot be nil")
	}
	if flushThreshold <= 0 {
		return nil, fmt.Errorf("flushThreshold must be positive, got %d", flushThreshold)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		progressRepo:    progressRepo,
		interactionRepo: interactionRepo,
		cardRepo:        cardRepo,
		flushThreshold:  flushThreshold,
		logger:          logger.With(slog.String("component", "progress_service")),
	}, nil
}

// Record implements Service.Record.
func (s *serviceImpl) Record(
	ctx context.Context,
	userID uuid.UUID,
	cardID, lessonID uuid.UUID,
	result domain.ReviewResult,
) (*Receipt, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !domain.IsValidReviewResult(result) {
		log.Warn("invalid review result",
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()),
			slog.String("result", string(result)))
		return nil, ErrInvalidResult
	}

	// Verify the card exists and belongs to the lesson the client claims.
	card, err := s.cardRepo.GetByID(ctx, cardID)
	if err != nil {
		if errors.Is(err, store.ErrFlashcardNotFound) {
			log.Warn("flashcard not found for progress event",
				slog.String("user_id", userID.String()),
				slog.String("card_id", cardID.String()))
			return nil, ErrCardNotFound
		}
		return nil, &ServiceError{Operation: "record", Message: "failed to get flashcard", Err: err}
	}
	if card.LessonID != lessonID {
		log.Warn("lesson mismatch for progress event",
			slog.String("card_id", cardID.String()),
			slog.String("claimed_lesson_id", lessonID.String()),
			slog.String("actual_lesson_id", card.LessonID.String()))
		return nil, ErrLessonMismatch
	}

	event, err := domain.NewProgressEvent(userID, cardID, lessonID, result)
	if err != nil {
		return nil, &ServiceError{Operation: "record", Message: "invalid progress event", Err: err}
	}

	var receipt *Receipt
	err = s.runInTransaction(ctx, func(ctx context.Context, progressRepo ProgressRepository, interactionRepo InteractionRepository) error {
		if err := progressRepo.Enqueue(ctx, event); err != nil {
			return fmt.Errorf("failed to enqueue event: %w", err)
		}

		pending, err := progressRepo.CountPending(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to count pending events: %w", err)
		}

		if pending >= s.flushThreshold {
			flushed, err := s.flushInTx(ctx, userID, progressRepo, interactionRepo)
			if err != nil {
				return fmt.Errorf("failed to flush at threshold: %w", err)
			}
			log.Info("buffer flushed at threshold",
				slog.String("user_id", userID.String()),
				slog.Int("flushed", flushed))
			receipt = &Receipt{Status: StatusFlushed, QueueSize: 0}
			return nil
		}

		receipt = &Receipt{Status: StatusAccepted, QueueSize: pending}
		return nil
	})

	if err != nil {
		log.Error("failed to record progress event",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("card_id", cardID.String()))
		return nil, &ServiceError{Operation: "record", Message: "transaction failed", Err: err}
	}

	log.Debug("progress event recorded",
		slog.String("user_id", userID.String()),
		slog.String("card_id", cardID.String()),
		slog.String("result", string(result)),
		slog.String("status", string(receipt.Status)),
		slog.Int("queue_size", receipt.QueueSize))
	return receipt, nil
}

// Flush implements Service.Flush.
func (s *serviceImpl) Flush(ctx context.Context, userID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var flushed int
	err := s.runInTransaction(ctx, func(ctx context.Context, progressRepo ProgressRepository, interactionRepo InteractionRepository) error {
		var err error
		flushed, err = s.flushInTx(ctx, userID, progressRepo, interactionRepo)
		return err
	})

	if err != nil {
		log.Error("failed to flush progress buffer",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return 0, &ServiceError{Operation: "flush", Message: "transaction failed", Err: err}
	}

	if flushed > 0 {
		log.Info("progress buffer flushed",
			slog.String("user_id", userID.String()),
			slog.Int("flushed", flushed))
	}
	return flushed, nil
}

// flushInTx folds the user's buffered events into interaction aggregates and
// empties the buffer. Must run inside a transaction: the fold and the delete
// have to be atomic or events could be applied twice or lost.
func (s *serviceImpl) flushInTx(
	ctx context.Context,
	userID uuid.UUID,
	progressRepo ProgressRepository,
	interactionRepo InteractionRepository,
) (int, error) {
	events, err := progressRepo.PendingForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load pending events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	// Coalesce events per card so each aggregate is read and written once
	// even when a session reviewed the same card repeatedly.
	interactions := make(map[uuid.UUID]*domain.CardInteraction)
	for _, event := range events {
		interaction, ok := interactions[event.CardID]
		if !ok {
			interaction, err = interactionRepo.Get(ctx, userID, event.CardID)
			if err != nil {
				if !errors.Is(err, store.ErrInteractionNotFound) {
					return 0, fmt.Errorf("failed to get interaction: %w", err)
				}
				interaction, err = domain.NewCardInteraction(userID, event.CardID)
				if err != nil {
					return 0, fmt.Errorf("failed to create interaction: %w", err)
				}
			}
			interactions[event.CardID] = interaction
		}

		if err := interaction.Apply(event.Result, event.RecordedAt); err != nil {
			return 0, fmt.Errorf("failed to apply event %s: %w", event.ID, err)
		}
	}

	for _, interaction := range interactions {
		if err := interactionRepo.Upsert(ctx, interaction); err != nil {
			return 0, fmt.Errorf("failed to upsert interaction: %w", err)
		}
	}

	deleted, err := progressRepo.DeletePending(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete pending events: %w", err)
	}
	if deleted != len(events) {
		// Another flush racing in a lower isolation level could make these
		// diverge; surface it rather than silently double-counting.
		return 0, fmt.Errorf("flush deleted %d events but applied %d", deleted, len(events))
	}

	return len(events), nil
}

// ListCards implements Service.ListCards.
func (s *serviceImpl) ListCards(
	ctx context.Context,
	userID, lessonID uuid.UUID,
	includeInteractions, randomize bool,
) ([]CardWithInteraction, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards, err := s.cardRepo.ListByLesson(ctx, lessonID, randomize)
	if err != nil {
		log.Error("failed to list flashcards",
			slog.String("error", err.Error()),
			slog.String("lesson_id", lessonID.String()))
		return nil, &ServiceError{Operation: "list_cards", Message: "failed to list flashcards", Err: err}
	}

	var interactions map[uuid.UUID]*domain.CardInteraction
	if includeInteractions {
		interactions, err = s.interactionRepo.ListByLesson(ctx, userID, lessonID)
		if err != nil {
			log.Error("failed to list interactions",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()),
				slog.String("lesson_id", lessonID.String()))
			return nil, &ServiceError{Operation: "list_cards", Message: "failed to list interactions", Err: err}
		}
	}

	result := make([]CardWithInteraction, 0, len(cards))
	for _, card := range cards {
		entry := CardWithInteraction{Card: card}
		if interactions != nil {
			entry.Interaction = interactions[card.ID]
		}
		result = append(result, entry)
	}

	return result, nil
}

// StaleBuffers implements Service.StaleBuffers.
func (s *serviceImpl) StaleBuffers(ctx context.Context, maxAgeMinutes int) ([]uuid.UUID, error) {
	cutoff := time.Now().UTC().Add(-time.Duration(maxAgeMinutes) * time.Minute)
	userIDs, err := s.progressRepo.UsersWithPendingOlderThan(ctx, cutoff)
	if err != nil {
		return nil, &ServiceError{Operation: "stale_buffers", Message: "failed to find stale buffers", Err: err}
	}
	return userIDs, nil
}

// runInTransaction runs the given function with transaction-bound repositories.
func (s *serviceImpl) runInTransaction(
	ctx context.Context,
	fn func(context.Context, ProgressRepository, InteractionRepository) error,
) error {
	db := s.progressRepo.DB()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	progressRepo := s.progressRepo.WithTx(tx)
	interactionRepo := s.interactionRepo.WithTx(tx)

	if err := fn(ctx, progressRepo, interactionRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
