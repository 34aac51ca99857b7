package xguard

import (
	"github.com/omeyang/mcpkit/pkg/observability/xlog"
	"github.com/omeyang/mcpkit/pkg/observability/xmetrics"
	"github.com/omeyang/mcpkit/pkg/resilience/xrate"
)

// options 治理器配置
type options struct {
	registry  *xmetrics.Registry
	limiter   *xrate.Limiter
	logger    xlog.Logger
	defaults  TargetConfig
	overrides map[string]TargetConfig
}

// Option 治理器选项
type Option func(*options)

// WithRegistry 注入指标注册表
//
// 未注入时治理器自建一个私有注册表，可通过 Registry 方法取得。
func WithRegistry(registry *xmetrics.Registry) Option {
	return func(o *options) {
		if registry != nil {
			o.registry = registry
		}
	}
}

// WithLimiter 注入限流器
//
// 未注入时使用本地内存后端。多实例部署可注入 Redis 后端的
// 限流器共享窗口计数。
func WithLimiter(limiter *xrate.Limiter) Option {
	return func(o *options) {
		if limiter != nil {
			o.limiter = limiter
		}
	}
}

// WithLogger 注入日志器
func WithLogger(logger xlog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDefaults 设置所有目标的默认治理配置
func WithDefaults(cfg TargetConfig) Option {
	return func(o *options) {
		o.defaults = cfg
	}
}

// WithTargetConfig 设置单个目标的治理配置
//
// 优先级高于 WithDefaults，未设置的字段仍取默认值。
func WithTargetConfig(target string, cfg TargetConfig) Option {
	return func(o *options) {
		if target == "" {
			return
		}
		if o.overrides == nil {
			o.overrides = make(map[string]TargetConfig)
		}
		o.overrides[target] = cfg
	}
}
