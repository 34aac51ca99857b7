package xrate

import (
	"github.com/redis/go-redis/v9"

	"github.com/omeyang/mcpkit/pkg/observability/xlog"
)

// FallbackMode 后端不可用时的降级策略
type FallbackMode string

const (
	// FallbackOpen 后端不可用时放行（默认）
	// 限流是保护性策略，后端故障时优先保证业务可用
	FallbackOpen FallbackMode = "open"

	// FallbackClose 后端不可用时拒绝
	FallbackClose FallbackMode = "close"
)

// options 限流器配置
type options struct {
	backend   Backend
	rdb       redis.UniversalClient
	redisSet  bool
	keyPrefix string
	fallback  FallbackMode
	logger    xlog.Logger
}

// Option 限流器选项
type Option func(*options)

// WithBackend 注入自定义后端
// 优先级高于 WithRedis
func WithBackend(backend Backend) Option {
	return func(o *options) {
		o.backend = backend
	}
}

// WithRedis 使用 Redis 后端，多实例共享窗口计数
//
// 传入 nil 客户端时 New 返回 ErrNilRedisClient。
func WithRedis(rdb redis.UniversalClient) Option {
	return func(o *options) {
		o.rdb = rdb
		o.redisSet = true
	}
}

// WithKeyPrefix 设置 Redis 窗口键前缀
//
// 默认值："mcpkit:xrate"。仅对 Redis 后端生效。
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
	}
}

// WithFallbackMode 设置后端不可用时的降级策略
//
// 默认值：FallbackOpen。
func WithFallbackMode(mode FallbackMode) Option {
	return func(o *options) {
		if mode == FallbackOpen || mode == FallbackClose {
			o.fallback = mode
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
