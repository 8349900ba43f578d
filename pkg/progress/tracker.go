package progress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// API paths used by the tracker.
const (
	progressPath = "/api/flashcards/progress"
)

// ErrClosed is returned by operations on a tracker after Close.
var ErrClosed = errors.New("progress tracker is closed")

// recordRequest is the wire form of a submitted event.
type recordRequest struct {
	FlashcardID uuid.UUID `json:"flashcardId"`
	LessonID    uuid.UUID `json:"lessonId"`
	Result      Result    `json:"result"`
}

// receipt is the server's response to a record call. QueueSize is a pointer
// so a server that omits the field can be told apart from one reporting zero.
type receipt struct {
	Status    string `json:"status"`
	QueueSize *int   `json:"queueSize"`
}

// Tracker buffers nothing itself: every submitted event goes straight to the
// server, and the tracker keeps only an estimate of how many events the
// server is holding for this user. The estimate drives the debounced flush
// and the save-status indicator.
type Tracker struct {
	baseURL             string
	client              *http.Client
	token               string
	flushInterval       time.Duration
	statusResetInterval time.Duration
	requestTimeout      time.Duration
	logger              *slog.Logger
	onStatusChange      func(SaveStatus)

	mu          sync.Mutex
	estimate    int
	status      SaveStatus
	statusGen   uint64
	flushTimer  *time.Timer
	statusTimer *time.Timer
	closed      bool
}

// NewTracker creates a Tracker that talks to the progress API at baseURL.
func NewTracker(baseURL string, opts ...Option) *Tracker {
	t := &Tracker{
		baseURL:             strings.TrimRight(baseURL, "/"),
		client:              &http.Client{Timeout: DefaultRequestTimeout},
		flushInterval:       DefaultFlushInterval,
		statusResetInterval: DefaultStatusResetInterval,
		requestTimeout:      DefaultRequestTimeout,
		logger:              slog.Default().With("component", "progress_tracker"),
		status:              StatusIdle,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Submit sends one review event to the server and reconciles the queue-size
// estimate against the receipt:
//
//   - status "flushed"    → the server emptied the buffer, estimate becomes 0
//   - explicit queueSize  → adopt the server's count
//   - anything else       → assume the event was buffered, estimate +1
//
// On any failure the event is assumed buffered anyway (estimate +1) and the
// save status reports an error. Submit never retries.
func (t *Tracker) Submit(ctx context.Context, event Event) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if t.isClosed() {
		return ErrClosed
	}

	t.transition(StatusSaving, false)

	body, err := json.Marshal(recordRequest{
		FlashcardID: event.CardID,
		LessonID:    event.LessonID,
		Result:      event.Result,
	})
	if err != nil {
		t.submitFailed()
		return fmt.Errorf("failed to encode event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+progressPath, bytes.NewReader(body))
	if err != nil {
		t.submitFailed()
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	t.setAuth(req)

	resp, err := t.client.Do(req)
	if err != nil {
		t.submitFailed()
		return fmt.Errorf("failed to submit event: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		t.submitFailed()
		return fmt.Errorf("submit rejected with status %d", resp.StatusCode)
	}

	var rec receipt
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.submitFailed()
		return fmt.Errorf("failed to decode receipt: %w", err)
	}

	switch {
	case rec.Status == "flushed":
		t.setEstimate(0)
	case rec.QueueSize != nil:
		t.setEstimate(*rec.QueueSize)
	default:
		t.bumpEstimate()
	}

	t.transition(StatusSaved, true)
	return nil
}

// NotifyHidden performs a best-effort flush when the study view loses
// visibility. It issues exactly one flush request per call, regardless of
// outcome.
func (t *Tracker) NotifyHidden(ctx context.Context) error {
	if t.isClosed() {
		return ErrClosed
	}
	return t.flush(ctx)
}

// Close performs a final best-effort flush and tears down the tracker's
// timers. Subsequent calls return nil; subsequent Submit calls return
// ErrClosed.
func (t *Tracker) Close(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	if t.flushTimer != nil {
		t.flushTimer.Stop()
		t.flushTimer = nil
	}
	if t.statusTimer != nil {
		t.statusTimer.Stop()
		t.statusTimer = nil
	}
	t.mu.Unlock()

	if err := t.doFlush(ctx); err != nil {
		t.logger.Warn("final flush failed", "error", err)
		return err
	}
	return nil
}

// QueueSize returns the current queue-size estimate.
func (t *Tracker) QueueSize() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.estimate
}

// Status returns the current save status.
func (t *Tracker) Status() SaveStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// flush asks the server to fold the caller's buffer into interaction
// aggregates. Success zeroes the estimate, which also cancels the debounce
// timer; failure leaves the estimate untouched so the next estimate change
// rearms the timer.
func (t *Tracker) flush(ctx context.Context) error {
	t.transition(StatusSaving, false)

	if err := t.doFlush(ctx); err != nil {
		t.transition(StatusError, true)
		return err
	}

	t.setEstimate(0)
	t.transition(StatusSaved, true)
	return nil
}

// doFlush issues a single bodyless PUT to the progress endpoint.
func (t *Tracker) doFlush(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.baseURL+progressPath, nil)
	if err != nil {
		return fmt.Errorf("failed to build flush request: %w", err)
	}
	t.setAuth(req)

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("flush rejected with status %d", resp.StatusCode)
	}

	return nil
}

func (t *Tracker) setAuth(req *http.Request) {
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
}

func (t *Tracker) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// submitFailed applies the failure contract: the event may or may not have
// reached the server, so the estimate still grows by one, and the indicator
// shows an error until it auto-resets.
func (t *Tracker) submitFailed() {
	t.bumpEstimate()
	t.transition(StatusError, true)
}

// setEstimate replaces the estimate, clamping at zero. The estimate can
// never go negative no matter what the server reports.
func (t *Tracker) setEstimate(n int) {
	if n < 0 {
		n = 0
	}
	t.mu.Lock()
	t.estimate = n
	t.syncFlushTimerLocked()
	t.mu.Unlock()
}

// bumpEstimate increments the estimate by one.
func (t *Tracker) bumpEstimate() {
	t.mu.Lock()
	t.estimate++
	t.syncFlushTimerLocked()
	t.mu.Unlock()
}

// syncFlushTimerLocked keeps the debounce timer consistent with the
// estimate: armed (or rearmed) while the estimate is positive, cancelled the
// moment it returns to zero. Callers must hold t.mu.
func (t *Tracker) syncFlushTimerLocked() {
	if t.closed {
		return
	}

	if t.estimate == 0 {
		if t.flushTimer != nil {
			t.flushTimer.Stop()
			t.flushTimer = nil
		}
		return
	}

	if t.flushTimer == nil {
		t.flushTimer = time.AfterFunc(t.flushInterval, t.onFlushTimer)
	} else {
		t.flushTimer.Reset(t.flushInterval)
	}
}

// onFlushTimer runs when the debounce window elapses with events still
// buffered.
func (t *Tracker) onFlushTimer() {
	t.mu.Lock()
	if t.closed || t.estimate == 0 {
		t.mu.Unlock()
		return
	}
	// Drop the timer reference: a failed flush does not rearm it, the next
	// estimate change does.
	t.flushTimer = nil
	t.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), t.requestTimeout)
	defer cancel()

	if err := t.flush(ctx); err != nil {
		t.logger.Warn("debounced flush failed", "error", err)
	}
}

// transition updates the save status. When autoReset is set the status
// reverts to idle after the configured interval, unless another transition
// happened in between.
func (t *Tracker) transition(status SaveStatus, autoReset bool) {
	t.mu.Lock()
	t.status = status
	t.statusGen++
	gen := t.statusGen

	if t.statusTimer != nil {
		t.statusTimer.Stop()
		t.statusTimer = nil
	}
	if autoReset && !t.closed {
		t.statusTimer = time.AfterFunc(t.statusResetInterval, func() {
			t.resetStatus(gen)
		})
	}
	cb := t.onStatusChange
	t.mu.Unlock()

	if cb != nil {
		cb(status)
	}
}

// resetStatus reverts to idle if no other transition superseded gen.
func (t *Tracker) resetStatus(gen uint64) {
	t.mu.Lock()
	if t.statusGen != gen {
		t.mu.Unlock()
		return
	}
	t.status = StatusIdle
	t.statusGen++
	cb := t.onStatusChange
	t.mu.Unlock()

	if cb != nil {
		cb(StatusIdle)
	}
}
