package xbulkhead

import "errors"

var (
	// ErrNilContext 上下文为 nil
	ErrNilContext = errors.New("xbulkhead: context cannot be nil")

	// ErrInvalidCapacity 容量必须为正数
	ErrInvalidCapacity = errors.New("xbulkhead: capacity must be positive")

	// ErrAcquireTimeout 等待许可超时
	ErrAcquireTimeout = errors.New("xbulkhead: acquire timed out")
)
