package progress

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/coursekit/progress-api/internal/domain"
	"github.com/coursekit/progress-api/internal/platform/postgres"
)

// ProgressRepository provides buffered-event access with transaction support.
type ProgressRepository interface {
	Enqueue(ctx context.Context, event *domain.ProgressEvent) error
	CountPending(ctx context.Context, userID uuid.UUID) (int, error)
	PendingForUser(ctx context.Context, userID uuid.UUID) ([]*domain.ProgressEvent, error)
	DeletePending(ctx context.Context, userID uuid.UUID) (int, error)
	UsersWithPendingOlderThan(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)

	// WithTx returns a new repository instance bound to the transaction.
	WithTx(tx *sql.Tx) ProgressRepository

	// DB returns the underlying database connection for starting transactions.
	DB() *sql.DB
}

// InteractionRepository provides aggregate access with transaction support.
type InteractionRepository interface {
	Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.CardInteraction, error)
	Upsert(ctx context.Context, interaction *domain.CardInteraction) error
	ListByLesson(ctx context.Context, userID, lessonID uuid.UUID) (map[uuid.UUID]*domain.CardInteraction, error)

	// WithTx returns a new repository instance bound to the transaction.
	WithTx(tx *sql.Tx) InteractionRepository
}

// CardRepository provides read access to the card catalogue.
type CardRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error)
	ListByLesson(ctx context.Context, lessonID uuid.UUID, randomize bool) ([]*domain.Flashcard, error)
}

// NewProgressRepositoryAdapter adapts a PostgresProgressStore to the
// ProgressRepository interface.
func NewProgressRepositoryAdapter(store *postgres.PostgresProgressStore, db *sql.DB) ProgressRepository {
	return &progressRepositoryAdapter{store: store, db: db}
}

type progressRepositoryAdapter struct {
	store *postgres.PostgresProgressStore
	db    *sql.DB
}

func (a *progressRepositoryAdapter) Enqueue(ctx context.Context, event *domain.ProgressEvent) error {
	return a.store.Enqueue(ctx, event)
}

func (a *progressRepositoryAdapter) CountPending(ctx context.Context, userID uuid.UUID) (int, error) {
	return a.store.CountPending(ctx, userID)
}

func (a *progressRepositoryAdapter) PendingForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.ProgressEvent, error) {
	return a.store.PendingForUser(ctx, userID)
}

func (a *progressRepositoryAdapter) DeletePending(ctx context.Context, userID uuid.UUID) (int, error) {
	return a.store.DeletePending(ctx, userID)
}

func (a *progressRepositoryAdapter) UsersWithPendingOlderThan(
	ctx context.Context,
	cutoff time.Time,
) ([]uuid.UUID, error) {
	return a.store.UsersWithPendingOlderThan(ctx, cutoff)
}

func (a *progressRepositoryAdapter) WithTx(tx *sql.Tx) ProgressRepository {
	return &progressRepositoryAdapter{store: a.store.WithTx(tx), db: a.db}
}

func (a *progressRepositoryAdapter) DB() *sql.DB {
	return a.db
}

// NewCardRepositoryAdapter adapts a PostgresFlashcardStore to the
// CardRepository interface.
func NewCardRepositoryAdapter(store *postgres.PostgresFlashcardStore) CardRepository {
	return &cardRepositoryAdapter{store: store}
}

type cardRepositoryAdapter struct {
	store *postgres.PostgresFlashcardStore
}

func (a *cardRepositoryAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Flashcard, error) {
	return a.store.GetByID(ctx, id)
}

func (a *cardRepositoryAdapter) ListByLesson(
	ctx context.Context,
	lessonID uuid.UUID,
	randomize bool,
) ([]*domain.Flashcard, error) {
	return a.store.ListByLesson(ctx, lessonID, randomize)
}

// NewInteractionRepositoryAdapter adapts a PostgresInteractionStore to the
// InteractionRepository interface.
func NewInteractionRepositoryAdapter(store *postgres.PostgresInteractionStore) InteractionRepository {
	return &interactionRepositoryAdapter{store: store}
}

type interactionRepositoryAdapter struct {
	store *postgres.PostgresInteractionStore
}

func (a *interactionRepositoryAdapter) Get(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.CardInteraction, error) {
	return a.store.Get(ctx, userID, cardID)
}

func (a *interactionRepositoryAdapter) Upsert(ctx context.Context, interaction *domain.CardInteraction) error {
	return a.store.Upsert(ctx, interaction)
}

func (a *interactionRepositoryAdapter) ListByLesson(
	ctx context.Context,
	userID, lessonID uuid.UUID,
) (map[uuid.UUID]*domain.CardInteraction, error) {
	return a.store.ListByLesson(ctx, userID, lessonID)
}

func (a *interactionRepositoryAdapter) WithTx(tx *sql.Tx) InteractionRepository {
	return &interactionRepositoryAdapter{store: a.store.WithTx(tx)}
}
