// Package xguard 提供外呼调用的统一治理入口。
//
// Governor 按目标组合三道闸门，检查顺序从最廉价、最具决定性的
// 开始：限流（xrate）→ 熔断（xbreaker）→ 舱壁（xbulkhead）。
// 三道闸门全部通过后才执行调用方提供的操作，操作全程持有舱壁
// 许可，许可在任何退出路径上都保证释放。
//
// 每个目标的状态（限流窗口、熔断器、舱壁）在首次调用时惰性
// 创建，进程生命周期内常驻；目标之间同步互不影响，一个目标的
// 拥塞不会串行化其他目标的调用。
//
// 基本用法：
//
//	gov, err := xguard.New(
//		xguard.WithRegistry(registry),
//		xguard.WithTargetConfig("weather-api", xguard.TargetConfig{
//			RateLimitPerMinute: 120,
//		}),
//	)
//	if err != nil {
//		return err
//	}
//
//	err = gov.Guard(ctx, "weather-api", func(ctx context.Context) error {
//		return callUpstream(ctx)
//	})
//	var rej *xguard.RejectionError
//	if errors.As(err, &rej) {
//		// 被闸门拒绝，操作未执行
//	}
//
// 操作内部的策略性拦截（例如权限审查拒绝）通过 xguard.Blocked
// 包装返回：既不计成功也不计失败，不影响熔断统计。
package xguard
