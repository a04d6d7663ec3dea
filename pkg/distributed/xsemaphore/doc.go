// Package xsemaphore 提供进程内的计数信号量，用于限制对某一资源（如单个
// 数据库连接池）的并发在途请求数量。
//
// # 设计理念
//
// Broker 持有一个固定容量 N 的许可缓冲：每次 Acquire 取走一个 Permit，
// Release 归还。与普通 chan struct{} 计数信号量不同的是，Broker 还要应
// 对"调用方拿到 Permit 后既不 Release 也不让进程退出"的情况——例如请求
// 所在的 goroutine panic 被上层 recover、或者持有者被意外丢弃。这类场
// 景下传统信号量会永久丢失一个容量单位；Broker 通过 Go 1.24 的
// runtime.AddCleanup 为每个 Permit 安装一个"弱引用"式回调，在持有者不
// 可达时异步感知丢失并铸造替换许可，使容量不会被悄悄蚕食。
//
// # 核心概念
//
//   - Permit: 一次 Acquire 的句柄，Release 幂等。
//   - Broker: 信号量本体，管理空闲集合与在途集合。
//   - 遗弃许可: 持有者被 GC 回收但从未 Release 的许可；Broker 会记录一
//     条警告日志并补发一个新许可，不影响调用方的正确性。
//
// # 快速开始
//
//	broker, err := xsemaphore.NewBroker(15, xsemaphore.WithDBID(dbID))
//	if err != nil {
//	    return err
//	}
//	defer broker.Close()
//
//	permit, err := broker.Acquire(ctx)
//	if err != nil {
//	    return err // ctx 取消或 broker 已关闭
//	}
//	defer permit.Release(ctx)
//
//	// 执行受限资源的操作...
//
// # 容量为零
//
// NewBroker(0, ...) 是合法调用：空闲集合永远为空，Acquire 会一直阻塞直
// 到 ctx 被取消或 broker 被关闭。这不是一个需要特殊判断的错误状态，而
// 是"该资源当前完全不可用"的正常表达（例如维护窗口期间临时禁用某数据库
// 的查询）。
//
// # 并发安全
//
// Broker 的所有导出方法可从多个 goroutine 并发调用。内部只有一个串行
// 化点：归还循环（runRetireLoop），它是 returnCh/reclaimCh 的唯一消费
// 者，负责把"这个 id 退役了"这件事翻译成"铸造一个新 id 放回空闲集"，因
// 此不会出现同一个旧 id 被两次计入空闲集的竞态。
//
// # 可观测性
//
// Acquire 成功/失败次数、等待耗时、Release 次数、遗弃许可回收次数通过
// go.opentelemetry.io/otel/metric 上报，未配置 meterProvider 时不采集。
// Acquire 通过 go.opentelemetry.io/otel/trace 创建 span（Release 不创建
// span）；未配置 tracerProvider 时使用全局 TracerProvider。
package xsemaphore
