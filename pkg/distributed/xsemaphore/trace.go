package xsemaphore

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Tracer 相关常量
// =============================================================================

const (
	// tracerName 追踪器名称
	tracerName = "xsemaphore"
)

// Span 操作名称
const (
	spanNameAcquire = "xsemaphore.Acquire"
	spanNameRelease = "xsemaphore.Release"
	spanNameSweep   = "xsemaphore.Sweep"
)

// Span 属性名称（Metrics 也复用这些常量，确保 trace 与 metrics 键名一致）
const (
	attrDBID       = "xsemaphore.db_id"
	attrCapacity   = "xsemaphore.capacity"
	attrPermitID   = "xsemaphore.permit_id"
	attrAcquired   = "xsemaphore.acquired"
	attrReclaimed  = "xsemaphore.reclaimed"
	attrFreeBefore = "xsemaphore.free_before"
	attrFreeAfter  = "xsemaphore.free_after"
)

// =============================================================================
// Tracer 管理
// =============================================================================

// getTracer 获取 tracer 实例，未配置 TracerProvider 时退回全局默认。
func getTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName, trace.WithInstrumentationVersion(instrumentationVersion))
}

// startSpan 创建新的 span，tracer 为 nil 时使用全局 tracer（可能是 noop tracer）。
func startSpan(ctx context.Context, tracer trace.Tracer, name string) (context.Context, trace.Span) {
	if tracer == nil {
		tracer = otel.GetTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name)
}

// setSpanError 设置 span 错误状态
func setSpanError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// setSpanOK 设置 span 成功状态
func setSpanOK(span trace.Span) {
	if span != nil {
		span.SetStatus(codes.Ok, "")
	}
}

// acquireSpanAttributes 构建 acquire 操作的 span 属性
func acquireSpanAttributes(dbID int64, capacity int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(attrDBID, dbID),
		attribute.Int(attrCapacity, capacity),
	}
}

// releaseSpanAttributes 构建 release 操作的 span 属性
func releaseSpanAttributes(dbID int64, permitID uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(attrDBID, dbID),
		attribute.Int64(attrPermitID, int64(permitID)),
	}
}
