package progress

import (
	"log/slog"
	"net/http"
	"time"
)

// Default tracker intervals. The flush interval matches the course player's
// debounce window; the status interval is how long "saved"/"error" stays on
// screen before the indicator clears.
const (
	DefaultFlushInterval       = 10 * time.Second
	DefaultStatusResetInterval = 2 * time.Second
	DefaultRequestTimeout      = 15 * time.Second
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(client *http.Client) Option {
	return func(t *Tracker) {
		if client != nil {
			t.client = client
		}
	}
}

// WithBearerToken sets the access token attached to every request.
func WithBearerToken(token string) Option {
	return func(t *Tracker) {
		t.token = token
	}
}

// WithFlushInterval sets the debounce window before an idle buffer is
// flushed.
func WithFlushInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.flushInterval = d
		}
	}
}

// WithStatusResetInterval sets how long saved/error statuses persist before
// reverting to idle.
func WithStatusResetInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.statusResetInterval = d
		}
	}
}

// WithRequestTimeout bounds requests issued by internal timers, which have
// no caller-supplied context.
func WithRequestTimeout(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.requestTimeout = d
		}
	}
}

// WithLogger sets the logger used by the tracker.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger.With("component", "progress_tracker")
		}
	}
}

// WithStatusCallback registers a callback invoked on every save-status
// transition. The callback runs outside the tracker's lock and must not
// block for long.
func WithStatusCallback(fn func(SaveStatus)) Option {
	return func(t *Tracker) {
		t.onStatusChange = fn
	}
}
