package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/coursekit/progress-api/internal/events"
)

// FlushService is the slice of the progress service the flusher needs.
type FlushService interface {
	// Flush folds the user's buffered events into interaction aggregates
	// and returns the number of events flushed.
	Flush(ctx context.Context, userID uuid.UUID) (int, error)
}

// FlusherConfig holds configuration for the flush worker pool.
type FlusherConfig struct {
	// WorkerCount determines how many concurrent workers process flushes
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory flush queue
	QueueSize int
}

// DefaultFlusherConfig returns a FlusherConfig with reasonable defaults.
func DefaultFlusherConfig() FlusherConfig {
	return FlusherConfig{
		WorkerCount: 2,
		QueueSize:   100,
	}
}

// Flusher processes flush-request events on a pool of workers. It implements
// events.EventHandler so it can be registered directly on the event emitter.
type Flusher struct {
	service    FlushService
	requests   chan *events.FlushRequestEvent
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     FlusherConfig
	logger     *slog.Logger

	// queued tracks users with a pending flush so repeated sweeps of the
	// same stale buffer don't pile up duplicate work.
	mu     sync.Mutex
	queued map[uuid.UUID]struct{}
}

// Ensure Flusher implements the event handler interface
var _ events.EventHandler = (*Flusher)(nil)

// NewFlusher creates a new Flusher.
func NewFlusher(service FlushService, config FlusherConfig, logger *slog.Logger) *Flusher {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultFlusherConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultFlusherConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Flusher{
		service:    service,
		requests:   make(chan *events.FlushRequestEvent, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With("component", "flush_worker"),
		queued:     make(map[uuid.UUID]struct{}),
	}
}

// HandleEvent implements events.EventHandler by queueing the flush request.
func (f *Flusher) HandleEvent(ctx context.Context, event *events.FlushRequestEvent) error {
	f.mu.Lock()
	if _, ok := f.queued[event.UserID]; ok {
		f.mu.Unlock()
		f.logger.Debug("flush already queued for user",
			"user_id", event.UserID,
			"reason", event.Reason)
		return nil
	}
	f.queued[event.UserID] = struct{}{}
	f.mu.Unlock()

	select {
	case f.requests <- event:
		return nil
	default:
		f.mu.Lock()
		delete(f.queued, event.UserID)
		f.mu.Unlock()
		return fmt.Errorf("flush queue is full, try again later")
	}
}

// Start launches the worker pool.
func (f *Flusher) Start() {
	for i := 0; i < f.config.WorkerCount; i++ {
		f.wg.Add(1)
		go f.worker(i)
	}
}

// Stop shuts down the pool, draining any queued requests first so buffered
// progress is not left behind on shutdown.
func (f *Flusher) Stop() {
	close(f.requests)
	f.wg.Wait()
	f.cancelFunc()
}

// worker processes flush requests from the queue.
func (f *Flusher) worker(id int) {
	defer f.wg.Done()

	f.logger.Debug("starting flush worker", "worker_id", id)

	for event := range f.requests {
		f.processFlush(event, id)
	}

	f.logger.Debug("flush queue closed, stopping worker", "worker_id", id)
}

// processFlush handles a single flush request.
func (f *Flusher) processFlush(event *events.FlushRequestEvent, workerID int) {
	defer func() {
		f.mu.Lock()
		delete(f.queued, event.UserID)
		f.mu.Unlock()
	}()

	logger := f.logger.With(
		"event_id", event.ID,
		"user_id", event.UserID,
		"reason", event.Reason,
		"worker_id", workerID,
	)

	flushed, err := f.service.Flush(f.ctx, event.UserID)
	if err != nil {
		// No retry here: the sweeper will pick the buffer up again on
		// its next pass if the events are still pending.
		logger.Error("background flush failed", "error", err)
		return
	}

	if flushed > 0 {
		logger.Info("background flush completed", "flushed", flushed)
	}
}
