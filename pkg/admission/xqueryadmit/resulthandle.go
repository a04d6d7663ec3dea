package xqueryadmit

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

type handleState int32

const (
	stateOpen handleState = iota
	stateSettled
	stateClosed
)

type outcome struct {
	value any
	err   error
}

// ResultHandle is a single-slot, closable outcome channel: a producer
// delivers at most one value-or-error, a consumer awaits or cancels it.
//
// Exactly one of {delivered value, delivered error, closed-without-value}
// is the terminal state of every ResultHandle; the state field is the sole
// arbiter via compare-and-swap, so Deliver and Close racing each other
// resolve deterministically and each fire their side effect at most once.
type ResultHandle struct {
	id    string
	ch    chan outcome
	state atomic.Int32

	closedCh   chan struct{}
	terminalCh chan struct{}
}

// NewResultHandle builds a fresh, open ResultHandle. Submit mints one per
// submission; it is also exported for producers that want to bridge their
// own outcome into the admission protocol (and for tests) without going
// through a Core.
func NewResultHandle() *ResultHandle {
	return &ResultHandle{
		id:         uuid.NewString(),
		ch:         make(chan outcome, 1),
		closedCh:   make(chan struct{}),
		terminalCh: make(chan struct{}),
	}
}

// ID returns a handle-scoped identifier, useful for log correlation.
func (h *ResultHandle) ID() string {
	return h.id
}

// Deliver publishes the terminal value or error. Idempotent: only the
// first call (whether Deliver or Close) that wins the open->settled or
// open->closed transition has any effect; later calls drop silently.
func (h *ResultHandle) Deliver(value any, err error) {
	if !h.state.CompareAndSwap(int32(stateOpen), int32(stateSettled)) {
		return
	}
	h.ch <- outcome{value: value, err: err}
	close(h.terminalCh)
}

// Close cancels the handle from the consumer side. A no-op if the handle
// has already settled or already been closed.
func (h *ResultHandle) Close() {
	if !h.state.CompareAndSwap(int32(stateOpen), int32(stateClosed)) {
		return
	}
	close(h.ch)
	close(h.closedCh)
	close(h.terminalCh)
}

// Await blocks until the handle settles, is closed, or ctx is done,
// whichever happens first.
func (h *ResultHandle) Await(ctx context.Context) (any, error) {
	select {
	case o, ok := <-h.ch:
		if !ok {
			return nil, ErrInputClosedUnexpectedly
		}
		return o.value, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// IsSettled reports whether Deliver has already won the terminal transition.
func (h *ResultHandle) IsSettled() bool {
	return handleState(h.state.Load()) == stateSettled
}

// IsClosed reports whether Close has already won the terminal transition.
func (h *ResultHandle) IsClosed() bool {
	return handleState(h.state.Load()) == stateClosed
}

// closeSignal is closed exactly once, when Close wins the transition; it
// lets an admitting goroutine propagate consumer cancellation to a worker.
func (h *ResultHandle) closeSignal() <-chan struct{} {
	return h.closedCh
}

// Done returns a channel closed exactly once the handle reaches its
// terminal state, however it got there (Deliver or Close). A relay can
// select on it without caring which side of the race produced it.
func (h *ResultHandle) Done() <-chan struct{} {
	return h.terminalCh
}

// Peek returns the settled outcome after Done has fired. ok is false if
// the handle closed without ever delivering a value or error. Calling Peek
// before Done has fired is meaningless: the receive is non-blocking and
// would simply report ok=false.
func (h *ResultHandle) Peek() (value any, err error, ok bool) {
	select {
	case o, chOk := <-h.ch:
		if !chOk {
			return nil, nil, false
		}
		return o.value, o.err, true
	default:
		return nil, nil, false
	}
}
