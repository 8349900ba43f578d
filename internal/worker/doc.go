// Package worker runs the background side of progress flushing: a pool of
// flush workers fed by flush-request events, and a sweeper that finds stale
// buffers and requests flushes for them.
package worker
