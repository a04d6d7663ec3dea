package xqueryadmit

import "errors"

var (
	// ErrInputClosedUnexpectedly is synthesized by KeepAliveRelay when a
	// ResultHandle closes without ever settling.
	ErrInputClosedUnexpectedly = errors.New("xqueryadmit: input closed unexpectedly")

	// ErrWorkerFault wraps a failure to hand work to the worker pool
	// itself (e.g. the pool's queue is full or stopped), as distinct from
	// an error returned by the worker function.
	ErrWorkerFault = errors.New("xqueryadmit: worker fault")

	// ErrSubmissionRejected wraps a failure to resolve a database's
	// broker (e.g. its capacity cannot be read from configuration).
	ErrSubmissionRejected = errors.New("xqueryadmit: submission rejected")
)
