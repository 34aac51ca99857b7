package xmetrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

const defaultInstrumentationName = "github.com/omeyang/mcpkit/xmetrics"

// bridgeConfig OTel 桥接配置
type bridgeConfig struct {
	instrumentationName string
	counterNames        []string
	gaugeNames          []string
}

// BridgeOption OTel 桥接选项
type BridgeOption func(*bridgeConfig)

// WithInstrumentationName 设置 OTel instrumentation 名称
func WithInstrumentationName(name string) BridgeOption {
	return func(cfg *bridgeConfig) {
		if name != "" {
			cfg.instrumentationName = name
		}
	}
}

// WithCounterNames 设置桥接的计数器名集合
//
// 默认值：DefaultCounterNames()。ObservableCounter 必须在注册回调前
// 创建，因此运行期新增的指标名不会出现在桥接中。
func WithCounterNames(names ...string) BridgeOption {
	return func(cfg *bridgeConfig) {
		if len(names) > 0 {
			cfg.counterNames = names
		}
	}
}

// WithGaugeNames 设置桥接的仪表名集合
//
// 默认值：DefaultGaugeNames()。
func WithGaugeNames(names ...string) BridgeOption {
	return func(cfg *bridgeConfig) {
		if len(names) > 0 {
			cfg.gaugeNames = names
		}
	}
}

// Bridge 将 Registry 暴露为 OpenTelemetry 可观测指标
//
// 桥接采用 Observable 模式：OTel SDK 在每个采集周期回调读取
// Registry 快照，而不是在每次写入时同步记录。这使 Registry 保持
// 零依赖，同时允许已运行 OTel SDK 的部署复用其导出管道。
type Bridge struct {
	registration metric.Registration
}

// NewOTelBridge 创建 OTel 桥接
//
// 计数器以累计单调 ObservableCounter 暴露，仪表以 ObservableGauge 暴露。
func NewOTelBridge(registry *Registry, provider metric.MeterProvider, opts ...BridgeOption) (*Bridge, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if provider == nil {
		return nil, ErrNilMeterProvider
	}

	cfg := &bridgeConfig{
		instrumentationName: defaultInstrumentationName,
		counterNames:        DefaultCounterNames(),
		gaugeNames:          DefaultGaugeNames(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	meter := provider.Meter(cfg.instrumentationName)

	counters := make(map[string]metric.Int64ObservableCounter, len(cfg.counterNames))
	observables := make([]metric.Observable, 0, len(cfg.counterNames)+len(cfg.gaugeNames))
	for _, name := range cfg.counterNames {
		c, err := meter.Int64ObservableCounter(name, metric.WithUnit("1"))
		if err != nil {
			return nil, fmt.Errorf("xmetrics: create observable counter %s failed: %w", name, err)
		}
		counters[name] = c
		observables = append(observables, c)
	}

	gauges := make(map[string]metric.Float64ObservableGauge, len(cfg.gaugeNames))
	for _, name := range cfg.gaugeNames {
		g, err := meter.Float64ObservableGauge(name, metric.WithUnit("1"))
		if err != nil {
			return nil, fmt.Errorf("xmetrics: create observable gauge %s failed: %w", name, err)
		}
		gauges[name] = g
		observables = append(observables, g)
	}

	registration, err := meter.RegisterCallback(
		func(_ context.Context, observer metric.Observer) error {
			snap := registry.Snapshot()
			for name, c := range counters {
				observer.ObserveInt64(c, snap.Counter(name))
			}
			for name, g := range gauges {
				observer.ObserveFloat64(g, snap.Gauge(name))
			}
			return nil
		},
		observables...,
	)
	if err != nil {
		return nil, fmt.Errorf("xmetrics: register callback failed: %w", err)
	}

	return &Bridge{registration: registration}, nil
}

// Close 注销桥接回调
//
// Close 后 OTel SDK 不再读取 Registry。幂等。
func (b *Bridge) Close() error {
	if b == nil || b.registration == nil {
		return nil
	}
	err := b.registration.Unregister()
	b.registration = nil
	return err
}
