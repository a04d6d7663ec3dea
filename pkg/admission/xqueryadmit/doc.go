// Package xqueryadmit admits per-database work through a [xbrokerreg.Registry]
// of [xsemaphore.Broker] permits, runs the admitted work on a bounded worker
// pool, and publishes its outcome through a [ResultHandle].
//
// # Two pools
//
// Submit's own goroutine (permit acquisition, the close-watcher) belongs to
// the cooperative pool: it never blocks on anything but a channel receive.
// The worker function passed to Submit runs on the distinct xpool.Pool
// worker pool and may block arbitrarily, matching the "unbounded
// worker-thread pool" the admission model assumes — approximated here by a
// generously sized bounded pool so a misbehaving caller cannot explode
// goroutines without limit.
//
// # Cancellation
//
// Closing a ResultHandle before it settles cancels the context passed to
// the worker function and releases its permit once the worker observes the
// cancellation and returns. Cancellation latency is therefore bounded by
// the worker's own responsiveness to ctx.Done, not by anything in this
// package.
package xqueryadmit
