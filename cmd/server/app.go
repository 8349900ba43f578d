package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/coursekit/progress-api/internal/config"
	"github.com/coursekit/progress-api/internal/events"
	"github.com/coursekit/progress-api/internal/platform/postgres"
	"github.com/coursekit/progress-api/internal/service/auth"
	"github.com/coursekit/progress-api/internal/service/progress"
	"github.com/coursekit/progress-api/internal/store"
	"github.com/coursekit/progress-api/internal/worker"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore store.UserStore

	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	progressService  progress.Service

	eventEmitter events.EventEmitter
	flusher      *worker.Flusher
	sweeper      *worker.Sweeper
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, bcrypt.DefaultCost, logger)
	flashcardStore := postgres.NewPostgresFlashcardStore(db, logger)
	progressStore := postgres.NewPostgresProgressStore(db, logger)
	interactionStore := postgres.NewPostgresInteractionStore(db, logger)

	// Progress service over transaction-aware repository adapters
	app.progressService, err = progress.NewService(
		progress.NewProgressRepositoryAdapter(progressStore, db),
		progress.NewInteractionRepositoryAdapter(interactionStore),
		progress.NewCardRepositoryAdapter(flashcardStore),
		cfg.Flush.Threshold,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress service: %w", err)
	}

	// Background flushing: the sweeper finds stale buffers and emits flush
	// requests; the flusher pool consumes them.
	emitter := events.NewInMemoryEventEmitter(logger)
	app.eventEmitter = emitter

	app.flusher = worker.NewFlusher(app.progressService, worker.FlusherConfig{
		WorkerCount: cfg.Flush.WorkerCount,
		QueueSize:   cfg.Flush.QueueSize,
	}, logger)
	emitter.RegisterHandler(app.flusher)
	app.flusher.Start()

	app.sweeper = worker.NewSweeper(app.progressService, emitter, worker.SweeperConfig{
		Interval:            time.Duration(cfg.Flush.SweepIntervalSeconds) * time.Second,
		MaxBufferAgeMinutes: cfg.Flush.MaxBufferAgeMinutes,
	}, logger)
	app.sweeper.Start()

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources. The sweeper
// stops before the flusher so no new flush requests arrive while the pool
// drains.
func (app *application) cleanup() {
	if app.sweeper != nil {
		app.sweeper.Stop()
	}
	if app.flusher != nil {
		app.flusher.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
