// Package events decouples the components that decide a progress buffer
// should be flushed from the worker pool that performs the flush.
//
// The sweeper and the API layer emit FlushRequestEvents without knowing which
// handlers will process them; the flush worker registers as a handler. This
// keeps the service, API, and worker packages free of circular dependencies.
package events
