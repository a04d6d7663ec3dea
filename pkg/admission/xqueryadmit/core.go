package xqueryadmit

import (
	"context"
	"fmt"

	"github.com/omeyang/queryadmit/pkg/distributed/xbrokerreg"
	"github.com/omeyang/queryadmit/pkg/distributed/xsemaphore"
	"github.com/omeyang/queryadmit/pkg/observability/xlog"
	"github.com/omeyang/queryadmit/pkg/util/xpool"
)

const (
	// DefaultWorkers approximates an unbounded worker-thread pool while
	// still bounding goroutine growth from a misbehaving caller.
	DefaultWorkers = 4096
	// DefaultQueueSize is the pending-submission buffer ahead of DefaultWorkers.
	DefaultQueueSize = 1 << 20
)

// WorkerFunc is the unit of work admitted through a Core. It must observe
// ctx.Done promptly: once a caller closes the ResultHandle Submit returned,
// ctx is canceled and the permit is only released once fn returns.
type WorkerFunc func(ctx context.Context) (any, error)

type admittedTask struct {
	ctx    context.Context
	fn     WorkerFunc
	handle *ResultHandle
	done   chan struct{}
}

// Core admits WorkerFunc invocations against a per-database capacity
// resolved from a [xbrokerreg.Registry], running admitted work on a bounded
// worker pool distinct from the goroutines Core itself spawns.
type Core struct {
	registry *xbrokerreg.Registry
	pool     *xpool.Pool[admittedTask]
	logger   xlog.Logger
}

// Option configures a Core.
type Option func(*coreConfig)

type coreConfig struct {
	workers   int
	queueSize int
	logger    xlog.Logger
}

func defaultCoreConfig() *coreConfig {
	return &coreConfig{workers: DefaultWorkers, queueSize: DefaultQueueSize}
}

// WithWorkerPoolSize overrides DefaultWorkers/DefaultQueueSize.
func WithWorkerPoolSize(workers, queueSize int) Option {
	return func(c *coreConfig) {
		c.workers = workers
		c.queueSize = queueSize
	}
}

// WithLogger sets the logger used for submission-path diagnostics.
func WithLogger(logger xlog.Logger) Option {
	return func(c *coreConfig) {
		c.logger = logger
	}
}

// NewCore builds a Core backed by registry.
func NewCore(registry *xbrokerreg.Registry, opts ...Option) (*Core, error) {
	cfg := defaultCoreConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	c := &Core{registry: registry, logger: cfg.logger}

	pool, err := xpool.New(cfg.workers, cfg.queueSize, c.runTask)
	if err != nil {
		return nil, fmt.Errorf("xqueryadmit: build worker pool: %w", err)
	}
	c.pool = pool
	return c, nil
}

// Shutdown drains and stops the worker pool, waiting up to ctx's deadline
// for in-flight work to finish.
func (c *Core) Shutdown(ctx context.Context) error {
	return c.pool.Shutdown(ctx)
}

// Submit resolves dbID's broker, returns a ResultHandle immediately, and
// admits fn for execution once a permit becomes available.
//
// Steps, matching the admission model: (1) resolve broker; (2) create the
// ResultHandle; (3) acquire a permit in the background; (4) bail out
// without running fn if the broker is closed or the handle already settled
// or was closed first; (5) otherwise run fn on the worker pool, publish its
// outcome, and release the permit; (6) concurrently watch for the caller
// closing the handle first, and cancel fn's context if so.
func (c *Core) Submit(ctx context.Context, dbID int64, fn WorkerFunc) *ResultHandle {
	handle := NewResultHandle()

	broker, err := c.registry.BrokerFor(dbID)
	if err != nil {
		handle.Deliver(nil, fmt.Errorf("%w: %w", ErrSubmissionRejected, err))
		return handle
	}

	go c.admit(ctx, broker, handle, fn)
	return handle
}

func (c *Core) admit(ctx context.Context, broker *xsemaphore.Broker, handle *ResultHandle, fn WorkerFunc) {
	permit, err := broker.Acquire(ctx)
	if err != nil {
		handle.Deliver(nil, err)
		return
	}
	defer permit.Release(context.Background())

	if handle.IsClosed() || handle.IsSettled() {
		return
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	t := admittedTask{ctx: taskCtx, fn: fn, handle: handle, done: done}

	if err := c.pool.Submit(t); err != nil {
		handle.Deliver(nil, fmt.Errorf("%w: %w", ErrWorkerFault, err))
		return
	}

	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		select {
		case <-handle.closeSignal():
			cancel()
		case <-done:
		}
	}()

	<-done
	<-watcherDone
}

func (c *Core) runTask(t admittedTask) {
	defer close(t.done)
	value, err := t.fn(t.ctx)
	t.handle.Deliver(value, err)
}
