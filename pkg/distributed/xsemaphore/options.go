package xsemaphore

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/omeyang/queryadmit/pkg/observability/xlog"
	"github.com/omeyang/queryadmit/pkg/util/xid"
)

// IDGeneratorFunc 许可 ID 生成函数。
type IDGeneratorFunc func(ctx context.Context) (uint64, error)

// options broker 内部配置。
type options struct {
	dbID           int64
	logger         xlog.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
	tracer         trace.Tracer
	metrics        *Metrics
	idGenerator    IDGeneratorFunc
}

// WithDBID 标注此 broker 归属的数据库 id，仅用于日志和指标属性，不影响
// 容量或调度语义。BrokerRegistry 在 BrokerFor 创建新 broker 时设置。
func WithDBID(dbID int64) Option {
	return func(o *options) {
		o.dbID = dbID
	}
}

// Option broker 配置选项函数。
type Option func(*options)

// defaultOptions 返回默认 broker 配置。
func defaultOptions() *options {
	return &options{}
}

// WithLogger 设置日志记录器。
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMeterProvider 设置 OpenTelemetry MeterProvider，用于采集容量/获取指标。
// 不设置则不采集指标。
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// WithTracerProvider 设置 OpenTelemetry TracerProvider。
// 不设置则使用全局 TracerProvider（otel.GetTracerProvider()）。
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithIDGenerator 设置许可 ID 生成函数，默认使用 xid 的 sonyflake 生成器。
// 主要用于测试中注入确定性 ID。
func WithIDGenerator(fn IDGeneratorFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.idGenerator = fn
		}
	}
}

// effectiveIDGenerator 返回有效的 ID 生成函数。
func (o *options) effectiveIDGenerator() IDGeneratorFunc {
	if o.idGenerator != nil {
		return o.idGenerator
	}
	return func(ctx context.Context) (uint64, error) {
		id, err := xid.NewWithRetry(ctx)
		return uint64(id), err
	}
}
