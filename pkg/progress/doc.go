// Package progress is the client half of the study-progress contract: a
// write-buffer tracker that submits review events to the progress API,
// reconciles its local queue-size estimate against server receipts, and
// flushes the server-side buffer on a debounce timer, on visibility loss,
// and on shutdown.
//
// The tracker's queue size is an estimate. The server is the source of truth
// and may flush the buffer on its own; receipts carry the authoritative
// pending count and the tracker adopts it whenever present.
package progress
