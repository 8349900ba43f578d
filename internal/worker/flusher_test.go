package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursekit/progress-api/internal/events"
)

// mockFlushService records flush calls in a thread-safe way.
type mockFlushService struct {
	mu       sync.Mutex
	calls    []uuid.UUID
	err      error
	block    chan struct{} // if non-nil, Flush blocks until closed
	returned int
}

func (m *mockFlushService) Flush(ctx context.Context, userID uuid.UUID) (int, error) {
	if m.block != nil {
		<-m.block
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, userID)
	return m.returned, m.err
}

func (m *mockFlushService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFlusherProcessesRequests(t *testing.T) {
	t.Parallel()

	service := &mockFlushService{returned: 3}
	flusher := NewFlusher(service, FlusherConfig{WorkerCount: 2, QueueSize: 10}, testLogger())
	flusher.Start()

	userID := uuid.New()
	err := flusher.HandleEvent(context.Background(), events.NewFlushRequestEvent(userID, events.ReasonStale))
	require.NoError(t, err)

	flusher.Stop()

	require.Equal(t, 1, service.callCount())
	assert.Equal(t, userID, service.calls[0])
}

func TestFlusherDeduplicatesQueuedUsers(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	service := &mockFlushService{block: block}
	// Single worker so the first request occupies it while duplicates arrive.
	flusher := NewFlusher(service, FlusherConfig{WorkerCount: 1, QueueSize: 10}, testLogger())
	flusher.Start()

	userID := uuid.New()
	for i := 0; i < 5; i++ {
		err := flusher.HandleEvent(context.Background(), events.NewFlushRequestEvent(userID, events.ReasonStale))
		require.NoError(t, err)
	}

	close(block)
	flusher.Stop()

	// All five events targeted the same user, so only one flush runs.
	assert.Equal(t, 1, service.callCount())
}

func TestFlusherRejectsWhenQueueFull(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	service := &mockFlushService{block: block}
	flusher := NewFlusher(service, FlusherConfig{WorkerCount: 1, QueueSize: 1}, testLogger())
	flusher.Start()

	// First request occupies the worker, second fills the queue.
	require.NoError(t,
		flusher.HandleEvent(context.Background(), events.NewFlushRequestEvent(uuid.New(), events.ReasonStale)))

	// Give the worker a moment to pick up the first request.
	assert.Eventually(t, func() bool {
		err := flusher.HandleEvent(context.Background(), events.NewFlushRequestEvent(uuid.New(), events.ReasonStale))
		return err == nil
	}, time.Second, 10*time.Millisecond)

	err := flusher.HandleEvent(context.Background(), events.NewFlushRequestEvent(uuid.New(), events.ReasonStale))
	assert.Error(t, err)

	close(block)
	flusher.Stop()
}

func TestFlusherContinuesAfterFlushError(t *testing.T) {
	t.Parallel()

	service := &mockFlushService{err: errors.New("database down")}
	flusher := NewFlusher(service, FlusherConfig{WorkerCount: 1, QueueSize: 10}, testLogger())
	flusher.Start()

	first := uuid.New()
	second := uuid.New()
	require.NoError(t,
		flusher.HandleEvent(context.Background(), events.NewFlushRequestEvent(first, events.ReasonStale)))
	require.NoError(t,
		flusher.HandleEvent(context.Background(), events.NewFlushRequestEvent(second, events.ReasonStale)))

	flusher.Stop()

	// Both flushes attempted despite errors.
	assert.Equal(t, 2, service.callCount())
}

func TestFlusherStopDrainsQueue(t *testing.T) {
	t.Parallel()

	service := &mockFlushService{}
	flusher := NewFlusher(service, FlusherConfig{WorkerCount: 1, QueueSize: 20}, testLogger())

	// Queue requests before starting so they sit in the channel.
	for i := 0; i < 5; i++ {
		require.NoError(t,
			flusher.HandleEvent(context.Background(), events.NewFlushRequestEvent(uuid.New(), events.ReasonShutdown)))
	}

	flusher.Start()
	flusher.Stop()

	assert.Equal(t, 5, service.callCount())
}
