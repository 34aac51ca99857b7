package xrate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/omeyang/mcpkit/pkg/observability/xlog"
)

// Limiter 面向目标的固定窗口限流器
// 在后端之上叠加参数校验与降级处理
type Limiter struct {
	backend  Backend
	fallback FallbackMode
	logger   xlog.Logger
}

// New 创建限流器
//
// 未指定后端时默认使用本地内存后端。
func New(opts ...Option) (*Limiter, error) {
	o := &options{
		fallback: FallbackOpen,
		logger:   xlog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.redisSet && o.rdb == nil {
		return nil, ErrNilRedisClient
	}

	backend := o.backend
	if backend == nil {
		if o.rdb != nil {
			backend = newRedisBackend(o.rdb, o.keyPrefix)
		} else {
			backend = newLocalBackend()
		}
	}

	return &Limiter{
		backend:  backend,
		fallback: o.fallback,
		logger:   o.logger,
	}, nil
}

// Allow 在当前分钟窗口内尝试为目标放行一次调用
//
// 后端故障时按降级策略处理并记录告警日志：FallbackOpen 放行，
// FallbackClose 返回包装后的 ErrBackendUnavailable，调用方可与
// 正常的限流拒绝区分开。
func (l *Limiter) Allow(ctx context.Context, target string, limit int) (bool, error) {
	if ctx == nil {
		return false, ErrNilContext
	}
	if target == "" {
		return false, ErrEmptyTarget
	}
	if limit <= 0 {
		return false, ErrInvalidLimit
	}

	allowed, err := l.backend.Allow(ctx, target, limit)
	if err == nil {
		return allowed, nil
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	l.logger.Warn(ctx, "rate limit backend unavailable, applying fallback",
		xlog.AttrTarget(target),
		slog.String("backend", l.backend.Type()),
		slog.String("fallback", string(l.fallback)),
		xlog.AttrError(err),
	)

	if l.fallback == FallbackOpen {
		return true, nil
	}
	return false, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
}

// Reset 清空指定目标的窗口计数
func (l *Limiter) Reset(ctx context.Context, target string) error {
	if ctx == nil {
		return ErrNilContext
	}
	if target == "" {
		return ErrEmptyTarget
	}
	return l.backend.Reset(ctx, target)
}

// Close 关闭限流器
func (l *Limiter) Close(ctx context.Context) error {
	return l.backend.Close(ctx)
}
