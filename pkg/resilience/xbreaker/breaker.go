package xbreaker

import (
	"sync"
	"time"
)

const (
	// DefaultFailureThreshold 默认连续失败跳闸阈值
	DefaultFailureThreshold = 5

	// DefaultCooldown 默认冷却时长
	DefaultCooldown = 10 * time.Second
)

// Breaker 单目标熔断器
//
// 状态转换在一把锁内完成，对所有并发调用方呈现单一权威状态。
// 策略性拦截（限流、舱壁拒绝）不属于调用成败，通过 Cancel
// 撤销准入，不影响失败计数。
type Breaker struct {
	name          string
	threshold     int
	cooldown      time.Duration
	onStateChange func(name string, from, to State)

	mu                  sync.Mutex
	state               State
	consecutiveFailures int
	openedAt            time.Time
	probeInFlight       bool

	// now 可注入的时钟，便于测试冷却窗口
	now func() time.Time
}

// Option 熔断器选项
type Option func(*Breaker)

// WithFailureThreshold 设置连续失败跳闸阈值
//
// 默认值：5。threshold = 1 表示首次失败立即跳闸。
func WithFailureThreshold(threshold int) Option {
	return func(b *Breaker) {
		if threshold > 0 {
			b.threshold = threshold
		}
	}
}

// WithCooldown 设置 Open 状态的冷却时长
//
// 默认值：10 秒。冷却结束后进入 HalfOpen 放行探测。
func WithCooldown(d time.Duration) Option {
	return func(b *Breaker) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// WithOnStateChange 设置状态变化回调
//
// 回调在状态机锁外执行，可用于日志记录与监控告警。
func WithOnStateChange(f func(name string, from, to State)) Option {
	return func(b *Breaker) {
		b.onStateChange = f
	}
}

// New 创建熔断器
//
// name 用于日志和回调标识。初始状态为 Closed。
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:      name,
		threshold: DefaultFailureThreshold,
		cooldown:  DefaultCooldown,
		state:     StateClosed,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name 返回熔断器名称
func (b *Breaker) Name() string {
	return b.name
}

// Cooldown 返回冷却时长
func (b *Breaker) Cooldown() time.Duration {
	return b.cooldown
}

// State 返回当前状态
//
// Open 状态在冷却期结束后惰性转换：此处只读不推进状态机，
// 返回的仍是 Open，转换发生在下一次 Allow。
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow 判定是否放行一次调用
//
// 放行返回 nil；熔断中返回 ErrOpenState。HalfOpen 状态下只放行
// 一个探测调用，探测在途期间其余调用一律拒绝。放行后调用方
// 必须以 RecordSuccess、RecordFailure 或 Cancel 三者之一收尾。
func (b *Breaker) Allow() error {
	b.mu.Lock()

	switch b.state {
	case StateClosed:
		b.mu.Unlock()
		return nil

	case StateOpen:
		if b.now().Sub(b.openedAt) < b.cooldown {
			b.mu.Unlock()
			return ErrOpenState
		}
		// 冷却结束，转入半开并放行探测
		from := b.state
		b.state = StateHalfOpen
		b.probeInFlight = true
		b.mu.Unlock()
		b.notify(from, StateHalfOpen)
		return nil

	case StateHalfOpen:
		if b.probeInFlight {
			b.mu.Unlock()
			return ErrOpenState
		}
		b.probeInFlight = true
		b.mu.Unlock()
		return nil

	default:
		b.mu.Unlock()
		return ErrOpenState
	}
}

// Cancel 撤销一次已放行但未执行的调用
//
// 用于准入之后被其他策略拦截的场景：既不算成功也不算失败。
// HalfOpen 探测被撤销后，探测名额让给下一个调用方。
func (b *Breaker) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.probeInFlight = false
	}
}

// RecordSuccess 上报一次成功结果
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()

	switch b.state {
	case StateClosed:
		b.consecutiveFailures = 0
		b.mu.Unlock()

	case StateHalfOpen:
		// 探测成功，恢复关闭
		from := b.state
		b.state = StateClosed
		b.consecutiveFailures = 0
		b.probeInFlight = false
		b.mu.Unlock()
		b.notify(from, StateClosed)

	default:
		b.mu.Unlock()
	}
}

// RecordFailure 上报一次失败结果
func (b *Breaker) RecordFailure() {
	b.mu.Lock()

	switch b.state {
	case StateClosed:
		b.consecutiveFailures++
		if b.consecutiveFailures < b.threshold {
			b.mu.Unlock()
			return
		}
		from := b.state
		b.state = StateOpen
		b.openedAt = b.now()
		b.mu.Unlock()
		b.notify(from, StateOpen)

	case StateHalfOpen:
		// 探测失败，重新开始冷却
		from := b.state
		b.state = StateOpen
		b.openedAt = b.now()
		b.probeInFlight = false
		b.mu.Unlock()
		b.notify(from, StateOpen)

	default:
		b.mu.Unlock()
	}
}

// notify 触发状态变化回调（必须在锁外调用）
func (b *Breaker) notify(from, to State) {
	if b.onStateChange != nil {
		b.onStateChange(b.name, from, to)
	}
}
