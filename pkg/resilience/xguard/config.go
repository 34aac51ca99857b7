package xguard

import (
	"time"

	"github.com/omeyang/mcpkit/pkg/resilience/xbreaker"
)

const (
	// DefaultMaxConcurrentRequests 默认单目标并发上限
	DefaultMaxConcurrentRequests = 4

	// DefaultQueueWait 默认舱壁排队等待上限
	DefaultQueueWait = time.Second

	// DefaultRateLimitPerMinute 默认每分钟调用配额
	DefaultRateLimitPerMinute = 60
)

// TargetConfig 单目标的治理配置
//
// 零值字段按默认值处理。
type TargetConfig struct {
	// MaxConcurrentRequests 舱壁并发上限
	MaxConcurrentRequests int

	// QueueWait 舱壁排队等待上限
	QueueWait time.Duration

	// RateLimitPerMinute 每分钟调用配额
	RateLimitPerMinute int

	// FailureThreshold 熔断器连续失败跳闸阈值
	FailureThreshold int

	// Cooldown 熔断器冷却时长
	Cooldown time.Duration
}

// withDefaults 返回填充默认值后的配置副本
func (c TargetConfig) withDefaults() TargetConfig {
	if c.MaxConcurrentRequests <= 0 {
		c.MaxConcurrentRequests = DefaultMaxConcurrentRequests
	}
	if c.QueueWait <= 0 {
		c.QueueWait = DefaultQueueWait
	}
	if c.RateLimitPerMinute <= 0 {
		c.RateLimitPerMinute = DefaultRateLimitPerMinute
	}
	if c.FailureThreshold <= 0 {
		c.FailureThreshold = xbreaker.DefaultFailureThreshold
	}
	if c.Cooldown <= 0 {
		c.Cooldown = xbreaker.DefaultCooldown
	}
	return c
}
