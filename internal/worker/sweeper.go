package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coursekit/progress-api/internal/events"
)

// StaleBufferFinder is the slice of the progress service the sweeper needs.
type StaleBufferFinder interface {
	// StaleBuffers returns users whose oldest buffered event is older than
	// the given age in minutes.
	StaleBuffers(ctx context.Context, maxAgeMinutes int) ([]uuid.UUID, error)
}

// SweeperConfig holds configuration for the stale-buffer sweeper.
type SweeperConfig struct {
	// Interval is how often the sweeper scans for stale buffers
	Interval time.Duration

	// MaxBufferAgeMinutes is how old a buffer's oldest event may be before
	// the sweeper requests a flush for it
	MaxBufferAgeMinutes int
}

// Sweeper periodically scans for stale progress buffers and emits a flush
// request for each. Clients normally flush their own buffers; the sweeper
// covers sessions that ended without one (closed laptop, crashed tab).
type Sweeper struct {
	finder     StaleBufferFinder
	emitter    events.EventEmitter
	config     SweeperConfig
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
}

// NewSweeper creates a new Sweeper.
func NewSweeper(
	finder StaleBufferFinder,
	emitter events.EventEmitter,
	config SweeperConfig,
	logger *slog.Logger,
) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())

	return &Sweeper{
		finder:     finder,
		emitter:    emitter,
		config:     config,
		ctx:        ctx,
		cancelFunc: cancel,
		logger:     logger.With("component", "buffer_sweeper"),
	}
}

// Start begins the periodic sweep loop.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop halts the sweep loop and waits for an in-progress sweep to finish.
func (s *Sweeper) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

// sweep finds stale buffers and emits one flush request per user.
func (s *Sweeper) sweep() {
	userIDs, err := s.finder.StaleBuffers(s.ctx, s.config.MaxBufferAgeMinutes)
	if err != nil {
		s.logger.Error("failed to scan for stale buffers", "error", err)
		return
	}

	if len(userIDs) == 0 {
		return
	}

	s.logger.Info("found stale progress buffers", "count", len(userIDs))

	for _, userID := range userIDs {
		event := events.NewFlushRequestEvent(userID, events.ReasonStale)
		if err := s.emitter.EmitEvent(s.ctx, event); err != nil {
			s.logger.Error("failed to emit flush request",
				"user_id", userID,
				"error", err)
		}
	}
}
