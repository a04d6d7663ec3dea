package xsemaphore

import (
	"context"
	"runtime"
)

// =============================================================================
// Permit - 许可句柄
// =============================================================================

// Permit 表示一次成功的 Broker.Acquire。
//
// 每次 Acquire 成功都会返回一个新的 Permit，内部封装了唯一标识和一个
// 指向所属 broker 的回收回调。Release 只释放本次获取的许可，不会影响
// 其他持有者；重复 Release 是安全的空操作。
//
// # 使用模式
//
//	permit, err := broker.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer permit.Release(ctx)
//
//	// 执行受许可保护的任务...
type Permit struct {
	id       uint64
	released releasedFlag
	release  func(id uint64)
	cleanup  runtime.Cleanup
}

// ID 返回许可的唯一标识，单调递增、可排序（由 [pkg/util/xid] 铸造）。
//
// 用于日志记录和调试，不作为相等性判断之外的其他用途。
func (p *Permit) ID() uint64 {
	return p.id
}

// Release 释放许可，触发 broker 的回收回调。
//
// 对同一个 Permit 多次调用 Release 是安全的：只有第一次调用会真正触发
// 回收，之后的调用直接返回。broker 也可能在许可变得不可达后，通过
// runtime.AddCleanup 回调独立地回收它（见 Broker.handleAbandoned）；
// 首次 Release 会取消该回调，归还循环也会丢弃已退役的 id，因此每个
// 许可只被回收一次。
func (p *Permit) Release(_ context.Context) {
	p.markReleasedAndFire()
}

// markReleasedAndFire 原子地将 released 标记从 false 翻转为 true，
// 仅在翻转成功（即本次调用是第一次）时触发回收回调，并取消挂起的
// AddCleanup 回调——持有者之后即使变得不可达，也不会再产生一次多余的
// 弃置事件。
func (p *Permit) markReleasedAndFire() {
	if p.released.markReleased() {
		p.cleanup.Stop()
		p.release(p.id)
	}
}
