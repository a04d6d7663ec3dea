package xkeepalive

import (
	"context"
	"time"

	"github.com/omeyang/queryadmit/pkg/admission/xqueryadmit"
)

// ItemKind distinguishes the items a Relay emits.
type ItemKind int

const (
	// ItemHeartbeat carries no payload; it exists only to keep a
	// connection alive while the terminal outcome is still pending.
	ItemHeartbeat ItemKind = iota
	// ItemValue carries the worker's successful result.
	ItemValue
	// ItemError carries the worker's failure, or a synthesized
	// [xqueryadmit.ErrInputClosedUnexpectedly] if the handle closed
	// without ever delivering anything.
	ItemError
)

// Item is one element of the stream a Relay produces.
type Item struct {
	Kind  ItemKind
	Value any
	Err   error
}

// DefaultInterval is the heartbeat cadence used when no [WithInterval]
// option is given, matching the `heartbeat-interval` configuration default.
const DefaultInterval = time.Second

// Relay drives a ResultHandle to completion, emitting heartbeats on a
// timer while it waits and exactly one terminal Item at the end.
type Relay struct {
	interval time.Duration
}

// Option configures a Relay.
type Option func(*Relay)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

// New builds a Relay.
func New(opts ...Option) *Relay {
	r := &Relay{interval: DefaultInterval}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run drives handle and returns a channel of Items. The channel receives
// zero or more ItemHeartbeat values followed by exactly one terminal Item
// (ItemValue or ItemError), then closes. Run's background goroutine exits
// once the terminal item is produced, ctx is done, or done closes (signaling
// the downstream consumer has stopped reading).
//
// If ctx is done or done closes before the handle settles, Run closes
// handle itself, propagating cancellation back to whatever is producing
// the handle's outcome.
func (r *Relay) Run(ctx context.Context, handle *xqueryadmit.ResultHandle, done <-chan struct{}) <-chan Item {
	out := make(chan Item, 1)
	go r.loop(ctx, handle, done, out)
	return out
}

func (r *Relay) loop(ctx context.Context, handle *xqueryadmit.ResultHandle, done <-chan struct{}, out chan<- Item) {
	defer close(out)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			handle.Close()
			return
		case <-ctx.Done():
			handle.Close()
			return
		case <-handle.Done():
			r.deliverTerminal(handle, done, out)
			return
		case <-ticker.C:
			if !r.enqueueHeartbeat(out, done) {
				handle.Close()
				return
			}
		}
	}
}

func (r *Relay) deliverTerminal(handle *xqueryadmit.ResultHandle, done <-chan struct{}, out chan<- Item) {
	var item Item
	if value, err, ok := handle.Peek(); ok {
		if err != nil {
			item = Item{Kind: ItemError, Err: err}
		} else {
			item = Item{Kind: ItemValue, Value: value}
		}
	} else {
		item = Item{Kind: ItemError, Err: xqueryadmit.ErrInputClosedUnexpectedly}
	}

	select {
	case out <- item:
	case <-done:
	}
}

// enqueueHeartbeat attempts a non-blocking collapsing send: if the buffer
// already holds an undrained heartbeat, it is replaced rather than queued.
// Returns false only if done fired while attempting delivery, meaning the
// downstream consumer has already given up.
func (r *Relay) enqueueHeartbeat(out chan<- Item, done <-chan struct{}) bool {
	item := Item{Kind: ItemHeartbeat}

	select {
	case out <- item:
		return true
	case <-done:
		return false
	default:
	}

	select {
	case <-out:
	default:
	}

	select {
	case out <- item:
		return true
	case <-done:
		return false
	}
}
