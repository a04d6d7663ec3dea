// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展
//   - xrotate: 日志文件轮转
//
// 追踪与指标直接以 go.opentelemetry.io/otel 的形式出现在各组件内部
// （见 pkg/distributed/xsemaphore 的 trace.go/metrics.go），而非一个独立的统一子包。
package observability
