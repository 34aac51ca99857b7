package xrate

import "errors"

var (
	// ErrNilContext 上下文为 nil
	ErrNilContext = errors.New("xrate: context cannot be nil")

	// ErrEmptyTarget 目标名为空
	ErrEmptyTarget = errors.New("xrate: target cannot be empty")

	// ErrInvalidLimit 配额上限必须为正数
	ErrInvalidLimit = errors.New("xrate: limit must be positive")

	// ErrNilRedisClient 选择 Redis 后端但未提供客户端
	ErrNilRedisClient = errors.New("xrate: redis client cannot be nil")

	// ErrBackendUnavailable 后端不可用且降级策略为拒绝
	ErrBackendUnavailable = errors.New("xrate: backend unavailable")
)
