// Package xrate 提供面向外呼目标的固定窗口限流。
//
// 限流按目标（target）独立计数：每个目标在每个自然分钟窗口内
// 最多放行 limit 次调用。窗口切换时计数自动归零，被拒绝的调用
// 不消耗配额。
//
// 支持两种后端：
//   - 本地后端（默认）：进程内存计数，适用于单实例部署
//   - Redis 后端：跨实例共享计数，通过 Lua 脚本保证检查与
//     递增的原子性
//
// 基本用法：
//
//	limiter, err := xrate.New()
//	if err != nil {
//		return err
//	}
//	defer limiter.Close(ctx)
//
//	allowed, err := limiter.Allow(ctx, "weather-api", 60)
//	if err != nil {
//		return err
//	}
//	if !allowed {
//		return errRateLimited
//	}
//
// Redis 后端：
//
//	limiter, err := xrate.New(
//		xrate.WithRedis(rdb),
//		xrate.WithKeyPrefix("mcpkit:rate"),
//	)
//
// 当 Redis 后端不可用时，按 FallbackMode 决定放行（FallbackOpen，
// 默认）或拒绝（FallbackClose）。
package xrate
