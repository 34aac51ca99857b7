package xconf

import "time"

// 导出配置的默认值与允许区间
const (
	DefaultServiceName = "mcpkit"

	defaultQueueCapacity = 256
	minQueueCapacity     = 8
	maxQueueCapacity     = 100_000

	defaultRetryMaxAttempts = 3
	minRetryMaxAttempts     = 1
	maxRetryMaxAttempts     = 10

	defaultRetryBaseMS = 500
	minRetryBaseMS     = 50
	maxRetryBaseMS     = 60_000

	defaultRetryMaxMS = 8_000
	minRetryMaxMS     = 100
	maxRetryMaxMS     = 600_000

	defaultExportIntervalSeconds = 15
	minExportIntervalSeconds     = 1
	maxExportIntervalSeconds     = 3_600
)

// 治理配置的默认值
const (
	defaultMaxConcurrentRequests = 4
	defaultQueueWaitMS           = 1_000
	defaultRateLimitPerMinute    = 60
	defaultFailureThreshold      = 5
	defaultCooldownMS            = 10_000
)

// Settings 完整配置
type Settings struct {
	// ServiceName 上报到导出端的服务名
	ServiceName string `koanf:"service_name"`

	// Defaults 所有目标的默认治理配置
	Defaults GovernSettings `koanf:"defaults"`

	// Targets 按目标覆盖的治理配置
	Targets map[string]GovernSettings `koanf:"targets"`

	// Export 指标导出配置
	Export ExportSettings `koanf:"export"`
}

// GovernSettings 单目标治理配置
type GovernSettings struct {
	MaxConcurrentRequests int `koanf:"max_concurrent_requests"`
	QueueWaitMS           int `koanf:"queue_wait_ms"`
	RateLimitPerMinute    int `koanf:"rate_limit_per_minute"`
	FailureThreshold      int `koanf:"failure_threshold"`
	CooldownMS            int `koanf:"cooldown_ms"`
}

// QueueWait 返回舱壁排队等待上限
func (g GovernSettings) QueueWait() time.Duration {
	return time.Duration(g.QueueWaitMS) * time.Millisecond
}

// Cooldown 返回熔断冷却时长
func (g GovernSettings) Cooldown() time.Duration {
	return time.Duration(g.CooldownMS) * time.Millisecond
}

// ExportSettings 指标导出配置
type ExportSettings struct {
	// Enabled 是否启用 OTLP 导出
	Enabled bool `koanf:"otlp_enabled"`

	// Endpoint OTLP/HTTP 采集端点
	Endpoint string `koanf:"otlp_endpoint"`

	// QueueCapacity 导出队列容量，区间 [8, 100000]
	QueueCapacity int `koanf:"otlp_queue_capacity"`

	// RetryMaxAttempts 单条快照的最大发送次数，区间 [1, 10]
	RetryMaxAttempts int `koanf:"otlp_retry_max_attempts"`

	// RetryBaseMS 退避基准延迟毫秒数，区间 [50, 60000]
	RetryBaseMS int `koanf:"otlp_retry_base_ms"`

	// RetryMaxMS 退避延迟上限毫秒数，区间 [100, 600000]
	RetryMaxMS int `koanf:"otlp_retry_max_ms"`

	// ExportIntervalSeconds 采样间隔秒数，区间 [1, 3600]
	ExportIntervalSeconds int `koanf:"otlp_export_interval_seconds"`

	// Headers 附加到每次发送的请求头
	Headers map[string]string `koanf:"otlp_headers"`
}

// RetryBase 返回退避基准延迟
func (e ExportSettings) RetryBase() time.Duration {
	return time.Duration(e.RetryBaseMS) * time.Millisecond
}

// RetryMax 返回退避延迟上限
func (e ExportSettings) RetryMax() time.Duration {
	return time.Duration(e.RetryMaxMS) * time.Millisecond
}

// ExportInterval 返回采样间隔
func (e ExportSettings) ExportInterval() time.Duration {
	return time.Duration(e.ExportIntervalSeconds) * time.Second
}

// normalize 填充默认值并把越界值收敛到允许区间
func (s Settings) normalize() Settings {
	if s.ServiceName == "" {
		s.ServiceName = DefaultServiceName
	}

	s.Defaults = s.Defaults.normalize()
	// 目标覆盖中未设置的字段继承全局默认
	for target, gs := range s.Targets {
		s.Targets[target] = gs.withFallback(s.Defaults)
	}
	s.Export = s.Export.normalize()
	return s
}

// withFallback 用 fallback 填充未设置的字段
func (g GovernSettings) withFallback(fallback GovernSettings) GovernSettings {
	if g.MaxConcurrentRequests <= 0 {
		g.MaxConcurrentRequests = fallback.MaxConcurrentRequests
	}
	if g.QueueWaitMS <= 0 {
		g.QueueWaitMS = fallback.QueueWaitMS
	}
	if g.RateLimitPerMinute <= 0 {
		g.RateLimitPerMinute = fallback.RateLimitPerMinute
	}
	if g.FailureThreshold <= 0 {
		g.FailureThreshold = fallback.FailureThreshold
	}
	if g.CooldownMS <= 0 {
		g.CooldownMS = fallback.CooldownMS
	}
	return g
}

// normalize 填充治理配置默认值
func (g GovernSettings) normalize() GovernSettings {
	if g.MaxConcurrentRequests <= 0 {
		g.MaxConcurrentRequests = defaultMaxConcurrentRequests
	}
	if g.QueueWaitMS <= 0 {
		g.QueueWaitMS = defaultQueueWaitMS
	}
	if g.RateLimitPerMinute <= 0 {
		g.RateLimitPerMinute = defaultRateLimitPerMinute
	}
	if g.FailureThreshold <= 0 {
		g.FailureThreshold = defaultFailureThreshold
	}
	if g.CooldownMS <= 0 {
		g.CooldownMS = defaultCooldownMS
	}
	return g
}

// normalize 填充导出配置默认值并收敛区间
func (e ExportSettings) normalize() ExportSettings {
	// 没有端点的导出无处可发，视为未启用
	if e.Endpoint == "" {
		e.Enabled = false
	}
	e.QueueCapacity = clampOrDefault(e.QueueCapacity, minQueueCapacity, maxQueueCapacity, defaultQueueCapacity)
	e.RetryMaxAttempts = clampOrDefault(e.RetryMaxAttempts, minRetryMaxAttempts, maxRetryMaxAttempts, defaultRetryMaxAttempts)
	e.RetryBaseMS = clampOrDefault(e.RetryBaseMS, minRetryBaseMS, maxRetryBaseMS, defaultRetryBaseMS)
	e.RetryMaxMS = clampOrDefault(e.RetryMaxMS, minRetryMaxMS, maxRetryMaxMS, defaultRetryMaxMS)
	e.ExportIntervalSeconds = clampOrDefault(e.ExportIntervalSeconds, minExportIntervalSeconds, maxExportIntervalSeconds, defaultExportIntervalSeconds)
	return e
}

// clampOrDefault 未设置时取默认值，越界时收敛到区间端点
func clampOrDefault(v, lo, hi, def int) int {
	if v == 0 {
		return def
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
