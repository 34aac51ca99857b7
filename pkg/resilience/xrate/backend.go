package xrate

import (
	"context"
	"time"
)

// windowLength 固定窗口长度，窗口按自然分钟对齐
const windowLength = time.Minute

// Backend 定义固定窗口限流后端的核心操作接口
// 职责单一：只负责窗口计数与判定，不包含降级、日志等关注点
// 实现应该是并发安全的
type Backend interface {
	// Allow 在当前分钟窗口内尝试放行一次调用
	// 放行时窗口计数加一；拒绝时计数保持不变
	Allow(ctx context.Context, target string, limit int) (bool, error)

	// Reset 清空指定目标的窗口计数
	Reset(ctx context.Context, target string) error

	// Close 释放后端自有资源（不关闭注入的外部客户端）
	Close(ctx context.Context) error

	// Type 返回后端类型标识，用于日志和指标
	Type() string
}

// windowIndex 计算时刻所属的分钟窗口序号
func windowIndex(t time.Time) int64 {
	return t.Unix() / int64(windowLength/time.Second)
}
