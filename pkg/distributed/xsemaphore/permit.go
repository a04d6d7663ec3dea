package xsemaphore

import "sync/atomic"

// releasedFlag is an idempotent, swap-based once-only gate: the first caller
// to flip it from false to true "wins" and is the only one whose action
// fires.
type releasedFlag struct {
	released atomic.Bool
}

// markReleased flips the flag to true and reports whether THIS call was the
// one that flipped it (true the first time, false on every call after,
// including one that races against a concurrent Release).
func (f *releasedFlag) markReleased() bool {
	return !f.released.Swap(true)
}

// isReleased reports the current state without mutating it.
func (f *releasedFlag) isReleased() bool {
	return f.released.Load()
}
