package xsemaphore

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// =============================================================================
// Broker - 进程内许可代理
// =============================================================================

// Broker 管理某一资源最多 N 个在途许可，按 FIFO-ish 顺序分发给等待者，
// 并回收持有者未显式 Release 就被 GC 回收的许可（遗弃许可）。
//
// 零值不可用，必须通过 [NewBroker] 构造。
type Broker struct {
	capacity int
	opts     *options

	free      chan *Permit // 容量固定为 capacity 的空闲许可缓冲
	returnCh  chan uint64  // 显式 Release 的归还事件
	reclaimCh chan uint64  // AddCleanup 回调上报的遗弃许可事件

	mu   sync.Mutex
	live map[uint64]struct{} // 当前在途（空闲集或被外部持有）的许可 id

	closed  atomic.Bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// NewBroker 创建容量为 capacity 的 broker，预先铸造 capacity 个许可放入
// 空闲集。capacity == 0 合法，表示该资源永不可获取（见 Acquire）。
func NewBroker(capacity int, opts ...Option) (*Broker, error) {
	if capacity < 0 {
		return nil, ErrInvalidCapacity
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if o.tracer == nil {
		o.tracer = getTracer(o.tracerProvider)
	}
	if o.metrics == nil {
		metrics, err := NewMetrics(o.meterProvider)
		if err != nil {
			return nil, err
		}
		o.metrics = metrics
	}

	b := &Broker{
		capacity:  capacity,
		opts:      o,
		free:      make(chan *Permit, capacity),
		returnCh:  make(chan uint64, capacity),
		reclaimCh: make(chan uint64, capacity),
		live:      make(map[uint64]struct{}, capacity),
		closeCh:   make(chan struct{}),
	}

	for range capacity {
		id, err := o.effectiveIDGenerator()(context.Background())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIDGenerationFailed, err)
		}
		b.live[id] = struct{}{}
		b.free <- b.newPermit(id)
	}

	b.wg.Add(1)
	go b.runRetireLoop()

	return b, nil
}

// Acquire 阻塞直到有许可可用、ctx 被取消，或 broker 被关闭。
//
// 放弃等待（ctx 到期/取消）不会消耗任何许可：select 没有命中 free
// 分支就直接返回，free 里的许可原封不动留给下一个等待者。
func (b *Broker) Acquire(ctx context.Context) (*Permit, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if b.closed.Load() {
		return nil, ErrBrokerClosed
	}

	ctx, span := startSpan(ctx, b.opts.tracer, spanNameAcquire)
	defer span.End()
	span.SetAttributes(acquireSpanAttributes(b.opts.dbID, b.capacity)...)

	start := time.Now()
	select {
	case p, ok := <-b.free:
		if !ok {
			setSpanError(span, ErrBrokerClosed)
			return nil, ErrBrokerClosed
		}
		setSpanOK(span)
		b.opts.metrics.RecordAcquire(ctx, b.opts.dbID, true, time.Since(start))
		return p, nil
	case <-b.closeCh:
		setSpanError(span, ErrBrokerClosed)
		return nil, ErrBrokerClosed
	case <-ctx.Done():
		b.opts.metrics.RecordAcquire(ctx, b.opts.dbID, false, time.Since(start))
		setSpanError(span, ctx.Err())
		return nil, ctx.Err()
	}
}

// Close 关闭 broker：停止接受新的 Acquire，停止后台归还循环铸造替换
// 许可。已经发出去的许可仍可正常 Release（Release 之后是空操作，不
// 会再补充空闲集，因为容量已经不再需要维持）。
func (b *Broker) Close() {
	if b.closed.Swap(true) {
		return
	}
	close(b.closeCh)
	b.wg.Wait()
}

// newPermit 铸造一个新许可：注册 AddCleanup，持有者变得不可达时触发
// broker 的遗弃回收路径。
func (b *Broker) newPermit(id uint64) *Permit {
	p := &Permit{id: id, release: b.handleRelease}
	p.cleanup = runtime.AddCleanup(p, b.handleAbandoned, id)
	return p
}

// handleRelease 是 Permit.Release 的归还回调：把 id 投递到 broker 的
// 归还通道，broker 的归还循环是这条路径上唯一的串行化点。
func (b *Broker) handleRelease(id uint64) {
	select {
	case b.returnCh <- id:
	case <-b.closeCh:
	}
}

// handleAbandoned 由 runtime 在持有该许可的对象被判定不可达时异步调用。
// Go 没有first-class的、可查询存活性的弱引用，AddCleanup 的回调是官方
// 文档认可的替代方案。回调本身不能阻塞太久，用非阻塞发送；reclaimCh 容
// 量等于 capacity，正常情况下不会满（被遗弃的许可数不可能超过总容量）。
func (b *Broker) handleAbandoned(id uint64) {
	select {
	case b.reclaimCh <- id:
	default:
	}
}

// runRetireLoop 是归还通道和遗弃通道的唯一消费者，串行处理每一次许可
// 退役：从在途集合移除旧 id，铸造新许可入空闲集。
func (b *Broker) runRetireLoop() {
	defer b.wg.Done()
	for {
		select {
		case id := <-b.returnCh:
			b.retire(id, false)
		case id := <-b.reclaimCh:
			b.retire(id, true)
		case <-b.closeCh:
			return
		}
	}
}

// retire 处理一次许可退役。abandoned 仅用于区分日志/指标口径：它并不
// 改变铸造替换许可这件事本身是否发生。
func (b *Broker) retire(id uint64, abandoned bool) {
	b.mu.Lock()
	if _, ok := b.live[id]; !ok {
		// 该 id 已经在别处退役过（显式 Release 先于迟到的 GC 回调），
		// 这正是"铸造新 id 而不是复用旧 id"要避免的重复入账，这里直接
		// 丢弃即可。
		b.mu.Unlock()
		return
	}
	delete(b.live, id)
	b.mu.Unlock()

	ctx := context.Background()
	if abandoned {
		if b.opts.logger != nil {
			b.opts.logger.Warn(ctx, "xsemaphore: reclaiming abandoned permit",
				AttrPermitID(id), AttrError(ErrAbandonedPermit))
		}
		b.opts.metrics.RecordSweepReclaimed(ctx, b.opts.dbID, 1)
	} else {
		b.opts.metrics.RecordRelease(ctx, b.opts.dbID)
	}

	if b.closed.Load() {
		return
	}

	newID, err := b.opts.effectiveIDGenerator()(ctx)
	if err != nil {
		if b.opts.logger != nil {
			b.opts.logger.Error(ctx, "xsemaphore: failed to mint replacement permit, capacity reduced", AttrError(err))
		}
		return
	}

	b.mu.Lock()
	b.live[newID] = struct{}{}
	b.mu.Unlock()

	b.free <- b.newPermit(newID)
}
