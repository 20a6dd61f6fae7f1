package xlinelog

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Observer 接收 LineLog 的内部事件
//
// 组件自身不打日志（它没有可用的降级日志器），所有内部事件通过
// Observer 上报。实现必须轻量且不得写回同一 LineLog：回调在持锁
// 期间被调用，回写会直接死锁。
type Observer interface {
	// ObserveWrite 上报一次成功的写入。
	// bytes 为落盘的记录字节数（含时间戳前缀和换行符），
	// truncatedRender 表示渲染结果是否因超过 MaxMessageSize 被截断。
	ObserveWrite(bytes int, truncatedRender bool, elapsed time.Duration)

	// ObserveTruncation 上报一次裁剪。dropped 为被裁掉的最旧行数，
	// err 非 nil 表示裁剪失败。
	ObserveTruncation(dropped int, elapsed time.Duration, err error)
}

// noopObserver 默认观测器，丢弃所有事件。
type noopObserver struct{}

func (noopObserver) ObserveWrite(int, bool, time.Duration)       {}
func (noopObserver) ObserveTruncation(int, time.Duration, error) {}

// OTel 观测器常量
const (
	defaultInstrumentationName = "github.com/omeyang/linekit/pkg/observability/xlinelog"

	metricWriteTotal       = "linekit.write.total"
	metricWriteTruncated   = "linekit.write.truncated_renders"
	metricWriteDuration    = "linekit.write.duration"
	metricTruncationTotal  = "linekit.truncation.total"
	metricTruncationDrop   = "linekit.truncation.dropped_lines"
	metricTruncationElapse = "linekit.truncation.duration"
)

type observerConfig struct {
	instrumentationName string
	meterProvider       metric.MeterProvider
}

// ObserverOption OTel 观测器配置选项
type ObserverOption func(*observerConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) ObserverOption {
	return func(cfg *observerConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithMeterProvider 设置 MeterProvider。
// 默认使用全局 otel.GetMeterProvider()。
func WithMeterProvider(provider metric.MeterProvider) ObserverOption {
	return func(cfg *observerConfig) {
		if provider != nil {
			cfg.meterProvider = provider
		}
	}
}

// otelObserver 基于 OpenTelemetry metric 的 Observer 实现。
type otelObserver struct {
	writeTotal     metric.Int64Counter
	writeTruncated metric.Int64Counter
	writeDuration  metric.Float64Histogram
	truncTotal     metric.Int64Counter
	truncDropped   metric.Int64Counter
	truncDuration  metric.Float64Histogram
}

// NewOTelObserver 创建基于 OpenTelemetry 的 Observer
//
// 上报的指标：
//   - linekit.write.total / linekit.write.duration: 成功写入的计数与耗时
//   - linekit.write.truncated_renders: 渲染被截断的写入计数
//   - linekit.truncation.total / linekit.truncation.duration:
//     裁剪的计数（按 outcome=ok|error 维度）与耗时
//   - linekit.truncation.dropped_lines: 被裁掉的总行数
func NewOTelObserver(opts ...ObserverOption) (Observer, error) {
	cfg := &observerConfig{
		instrumentationName: defaultInstrumentationName,
		meterProvider:       otel.GetMeterProvider(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	meter := cfg.meterProvider.Meter(cfg.instrumentationName)

	writeTotal, err := meter.Int64Counter(
		metricWriteTotal,
		metric.WithDescription("durable line writes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xlinelog: create counter failed: %w", err)
	}

	writeTruncated, err := meter.Int64Counter(
		metricWriteTruncated,
		metric.WithDescription("writes whose rendered message was truncated"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xlinelog: create counter failed: %w", err)
	}

	writeDuration, err := meter.Float64Histogram(
		metricWriteDuration,
		metric.WithDescription("write latency including fsync"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xlinelog: create histogram failed: %w", err)
	}

	truncTotal, err := meter.Int64Counter(
		metricTruncationTotal,
		metric.WithDescription("truncation passes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xlinelog: create counter failed: %w", err)
	}

	truncDropped, err := meter.Int64Counter(
		metricTruncationDrop,
		metric.WithDescription("oldest lines dropped by truncation"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return nil, fmt.Errorf("xlinelog: create counter failed: %w", err)
	}

	truncDuration, err := meter.Float64Histogram(
		metricTruncationElapse,
		metric.WithDescription("truncation pass latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xlinelog: create histogram failed: %w", err)
	}

	return &otelObserver{
		writeTotal:     writeTotal,
		writeTruncated: writeTruncated,
		writeDuration:  writeDuration,
		truncTotal:     truncTotal,
		truncDropped:   truncDropped,
		truncDuration:  truncDuration,
	}, nil
}

func (o *otelObserver) ObserveWrite(bytes int, truncatedRender bool, elapsed time.Duration) {
	ctx := context.Background()
	o.writeTotal.Add(ctx, 1)
	if truncatedRender {
		o.writeTruncated.Add(ctx, 1)
	}
	o.writeDuration.Record(ctx, elapsed.Seconds())
}

func (o *otelObserver) ObserveTruncation(dropped int, elapsed time.Duration, err error) {
	ctx := context.Background()
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	o.truncTotal.Add(ctx, 1, attrs)
	if err == nil && dropped > 0 {
		o.truncDropped.Add(ctx, int64(dropped))
	}
	o.truncDuration.Record(ctx, elapsed.Seconds(), attrs)
}
