// Package xbreaker 提供面向外呼目标的熔断器。
//
// 熔断器是三态状态机：
//   - Closed（初始）：调用放行，连续失败达到阈值后跳闸进入 Open
//   - Open：调用直接拒绝，冷却期结束后进入 HalfOpen
//   - HalfOpen：只放行一个探测调用，探测成功回到 Closed，
//     失败回到 Open 并重新开始冷却
//
// 准入与结果上报是两阶段 API：Allow 判定是否放行，调用结束后
// 由调用方上报 RecordSuccess 或 RecordFailure。若放行后因其他
// 策略拦截而未实际执行，调用 Cancel 撤销本次准入，不计入任何
// 成败统计。
//
// 基本用法：
//
//	br := xbreaker.New("weather-api")
//
//	if err := br.Allow(); err != nil {
//		return err // 熔断中
//	}
//	err := doCall()
//	if err != nil {
//		br.RecordFailure()
//	} else {
//		br.RecordSuccess()
//	}
//
// failure_threshold = 1 是合法配置：首次失败立即跳闸。
package xbreaker
