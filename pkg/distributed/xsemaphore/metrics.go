package xsemaphore

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// 指标前缀使用 "xsemaphore.*"，与 OTel Meter scope name 一致（Meter("xsemaphore")）。
const (
	metricNameAcquireTotal    = "xsemaphore.acquire.total"
	metricNameReleaseTotal    = "xsemaphore.release.total"
	metricNameAcquireDuration = "xsemaphore.acquire.duration"
	metricNameSweepReclaimed  = "xsemaphore.sweep.reclaimed"
	metricNameFreeGauge       = "xsemaphore.free"
)

// Metrics broker 指标收集器。
type Metrics struct {
	meter           metric.Meter
	acquireTotal    metric.Int64Counter
	releaseTotal    metric.Int64Counter
	acquireDuration metric.Float64Histogram
	sweepReclaimed  metric.Int64Counter
}

// NewMetrics 创建指标收集器，meterProvider 为 nil 时返回 nil（不采集）。
func NewMetrics(meterProvider metric.MeterProvider) (*Metrics, error) {
	if meterProvider == nil {
		return nil, nil
	}

	m := &Metrics{}
	m.meter = meterProvider.Meter("xsemaphore", metric.WithInstrumentationVersion(instrumentationVersion))

	var err error
	if m.acquireTotal, err = m.meter.Int64Counter(metricNameAcquireTotal,
		metric.WithDescription("许可获取次数"), metric.WithUnit("{acquire}")); err != nil {
		return nil, err
	}
	if m.releaseTotal, err = m.meter.Int64Counter(metricNameReleaseTotal,
		metric.WithDescription("许可释放次数"), metric.WithUnit("{release}")); err != nil {
		return nil, err
	}
	if m.sweepReclaimed, err = m.meter.Int64Counter(metricNameSweepReclaimed,
		metric.WithDescription("清扫回收的遗弃许可数"), metric.WithUnit("{permit}")); err != nil {
		return nil, err
	}
	if m.acquireDuration, err = m.meter.Float64Histogram(metricNameAcquireDuration,
		metric.WithDescription("获取许可的等待耗时"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...)); err != nil {
		return nil, err
	}
	return m, nil
}

var durationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0}

// RecordAcquire 记录一次获取（成功或失败）。
func (m *Metrics) RecordAcquire(ctx context.Context, dbID int64, acquired bool, duration time.Duration) {
	if m == nil {
		return
	}
	metricsCtx := context.WithoutCancel(ctx)
	attrs := metric.WithAttributes(
		attribute.Int64(attrDBID, dbID),
		attribute.Bool(attrAcquired, acquired),
	)
	m.acquireTotal.Add(metricsCtx, 1, attrs)
	m.acquireDuration.Record(metricsCtx, duration.Seconds(), attrs)
}

// RecordRelease 记录一次释放。
func (m *Metrics) RecordRelease(ctx context.Context, dbID int64) {
	if m == nil {
		return
	}
	metricsCtx := context.WithoutCancel(ctx)
	m.releaseTotal.Add(metricsCtx, 1, metric.WithAttributes(attribute.Int64(attrDBID, dbID)))
}

// RecordSweepReclaimed 记录清扫期间回收的遗弃许可数量。
func (m *Metrics) RecordSweepReclaimed(ctx context.Context, dbID int64, count int) {
	if m == nil || count == 0 {
		return
	}
	metricsCtx := context.WithoutCancel(ctx)
	m.sweepReclaimed.Add(metricsCtx, int64(count), metric.WithAttributes(attribute.Int64(attrDBID, dbID)))
}
