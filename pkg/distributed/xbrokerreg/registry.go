package xbrokerreg

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/omeyang/queryadmit/pkg/distributed/xsemaphore"
	"github.com/omeyang/queryadmit/pkg/observability/xlog"
)

// CapacityFunc resolves the admission capacity for a database id, read
// from configuration the first time that id is seen.
type CapacityFunc func(dbID int64) (int, error)

// DefaultSeenCacheSize bounds the advisory "known database ids" cache used
// for Len/Snapshot. It never bounds the registry itself: brokers.Load is
// the source of truth and is never capped or evicted.
const DefaultSeenCacheSize = 4096

// Registry maps a database id to its [xsemaphore.Broker], lazily creating
// one on first use. See the package doc for the construction race and the
// fixed-capacity-at-creation limitation.
type Registry struct {
	brokers  sync.Map // int64 -> *xsemaphore.Broker
	capacity CapacityFunc
	semOpts  []xsemaphore.Option
	logger   xlog.Logger
	seen     *lru.Cache[int64, struct{}]
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for the loser-candidate-closed notice.
func WithLogger(logger xlog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithBrokerOptions forwards options to every xsemaphore.NewBroker call
// the registry makes (e.g. WithMeterProvider, WithTracerProvider).
func WithBrokerOptions(opts ...xsemaphore.Option) Option {
	return func(r *Registry) {
		r.semOpts = append(r.semOpts, opts...)
	}
}

// WithSeenCacheSize overrides DefaultSeenCacheSize.
func WithSeenCacheSize(size int) Option {
	return func(r *Registry) {
		if size > 0 {
			cache, err := lru.New[int64, struct{}](size)
			if err == nil {
				r.seen = cache
			}
		}
	}
}

// New creates a registry that resolves per-database capacity through
// capacityFn.
func New(capacityFn CapacityFunc, opts ...Option) (*Registry, error) {
	seen, err := lru.New[int64, struct{}](DefaultSeenCacheSize)
	if err != nil {
		return nil, err
	}
	r := &Registry{
		capacity: capacityFn,
		seen:     seen,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// BrokerFor returns the single broker associated with dbID, creating one
// if absent. Concurrency-safe via the double-checked sync.Map idiom
// described in the package doc.
func (r *Registry) BrokerFor(dbID int64) (*xsemaphore.Broker, error) {
	if v, ok := r.brokers.Load(dbID); ok {
		return v.(*xsemaphore.Broker), nil
	}

	capacity, err := r.capacity(dbID)
	if err != nil {
		return nil, err
	}

	opts := append(append([]xsemaphore.Option{}, r.semOpts...), xsemaphore.WithDBID(dbID))
	candidate, err := xsemaphore.NewBroker(capacity, opts...)
	if err != nil {
		return nil, err
	}

	actual, loaded := r.brokers.LoadOrStore(dbID, candidate)
	if loaded {
		// Another goroutine's candidate won the race; ours never served
		// a single Acquire and must be closed to stop its retire loop.
		candidate.Close()
		if r.logger != nil {
			r.logger.Debug(context.Background(), "xbrokerreg: discarding losing broker candidate",
				xsemaphore.AttrDBID(dbID))
		}
	} else {
		r.seen.Add(dbID, struct{}{})
	}

	return actual.(*xsemaphore.Broker), nil
}

// Len reports the number of distinct database ids seen so far, bounded by
// the advisory seen-cache (see WithSeenCacheSize). This is operational
// visibility, not the authoritative broker count.
func (r *Registry) Len() int {
	return r.seen.Len()
}

// Snapshot returns the database ids currently tracked by the advisory
// seen-cache, in no particular order.
func (r *Registry) Snapshot() []int64 {
	return r.seen.Keys()
}
