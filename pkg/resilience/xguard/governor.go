package xguard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/omeyang/mcpkit/pkg/observability/xlog"
	"github.com/omeyang/mcpkit/pkg/observability/xmetrics"
	"github.com/omeyang/mcpkit/pkg/resilience/xbreaker"
	"github.com/omeyang/mcpkit/pkg/resilience/xbulkhead"
	"github.com/omeyang/mcpkit/pkg/resilience/xrate"
)

// Operation 被治理的调用
//
// 返回 nil 计为成功，返回 Blocked 包装的错误计为中性结果，
// 其余错误计为失败并驱动熔断统计。
type Operation func(ctx context.Context) error

// targetState 单目标的治理状态
// 熔断器与舱壁各自持锁，目标之间互不串行
type targetState struct {
	cfg      TargetConfig
	breaker  *xbreaker.Breaker
	bulkhead *xbulkhead.Bulkhead
}

// Governor 外呼调用治理器
type Governor struct {
	registry *xmetrics.Registry
	limiter  *xrate.Limiter
	logger   xlog.Logger

	defaults  TargetConfig
	overrides map[string]TargetConfig

	mu      sync.RWMutex
	targets map[string]*targetState
}

// New 创建治理器
func New(opts ...Option) (*Governor, error) {
	o := &options{
		logger: xlog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.registry == nil {
		o.registry = xmetrics.NewRegistry()
	}
	if o.limiter == nil {
		limiter, err := xrate.New(xrate.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		o.limiter = limiter
	}

	overrides := make(map[string]TargetConfig, len(o.overrides))
	for target, cfg := range o.overrides {
		overrides[target] = cfg
	}

	return &Governor{
		registry:  o.registry,
		limiter:   o.limiter,
		logger:    o.logger,
		defaults:  o.defaults,
		overrides: overrides,
		targets:   make(map[string]*targetState),
	}, nil
}

// Registry 返回治理器使用的指标注册表
func (g *Governor) Registry() *xmetrics.Registry {
	return g.registry
}

// Guard 治理一次外呼调用
//
// 检查顺序：限流 → 熔断 → 舱壁。任一闸门拒绝时操作不执行，
// 返回 RejectionError 并递增对应的拒绝计数器；三道闸门全部
// 通过后执行操作并递增 mcp_calls，舱壁许可在操作结束后释放。
func (g *Governor) Guard(ctx context.Context, target string, op Operation) error {
	if ctx == nil {
		return ErrNilContext
	}
	if target == "" {
		return ErrEmptyTarget
	}
	if op == nil {
		return ErrNilOperation
	}

	st := g.target(target)

	allowed, err := g.limiter.Allow(ctx, target, st.cfg.RateLimitPerMinute)
	if err != nil {
		return err
	}
	if !allowed {
		g.registry.Inc(xmetrics.MetricMCPRateLimitedRejections)
		return newRejection(target, ErrRateLimited, 0)
	}

	if err := st.breaker.Allow(); err != nil {
		g.registry.Inc(xmetrics.MetricMCPCircuitOpenRejections)
		return newRejection(target, ErrCircuitOpen, st.breaker.Cooldown())
	}

	permit, err := st.bulkhead.Acquire(ctx, st.cfg.QueueWait)
	if err != nil {
		// 舱壁拦截对熔断器是中性的，撤销已获得的准入
		st.breaker.Cancel()
		if errors.Is(err, xbulkhead.ErrAcquireTimeout) {
			g.registry.Inc(xmetrics.MetricMCPBulkheadRejections)
			return newRejection(target, ErrBulkheadRejected, 0)
		}
		// 调用方自身取消不是策略拒绝，不计入拒绝计数
		return err
	}
	defer permit.Release()

	g.registry.Inc(xmetrics.MetricMCPCalls)

	opErr := op(ctx)
	switch {
	case opErr == nil:
		st.breaker.RecordSuccess()
		return nil
	case IsBlocked(opErr):
		st.breaker.Cancel()
		return opErr
	default:
		st.breaker.RecordFailure()
		return opErr
	}
}

// UpdateConfig 更新单个目标的治理配置
//
// 新配置对后续调用生效：目标状态按新配置重建，正在进行的
// 调用继续使用旧状态直至结束。
func (g *Governor) UpdateConfig(target string, cfg TargetConfig) error {
	if target == "" {
		return ErrEmptyTarget
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.overrides[target] = cfg
	delete(g.targets, target)
	return nil
}

// TargetConfigFor 返回目标生效的治理配置
func (g *Governor) TargetConfigFor(target string) TargetConfig {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.resolveLocked(target)
}

// target 获取或惰性创建目标状态
func (g *Governor) target(target string) *targetState {
	g.mu.RLock()
	st, ok := g.targets[target]
	g.mu.RUnlock()
	if ok {
		return st
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if st, ok := g.targets[target]; ok {
		return st
	}

	st = g.buildStateLocked(target)
	g.targets[target] = st
	return st
}

// resolveLocked 解析目标生效的配置（调用者必须持锁）
func (g *Governor) resolveLocked(target string) TargetConfig {
	cfg, ok := g.overrides[target]
	if !ok {
		cfg = g.defaults
	}
	return cfg.withDefaults()
}

// buildStateLocked 按配置构建目标状态（调用者必须持锁）
func (g *Governor) buildStateLocked(target string) *targetState {
	cfg := g.resolveLocked(target)

	breaker := xbreaker.New(target,
		xbreaker.WithFailureThreshold(cfg.FailureThreshold),
		xbreaker.WithCooldown(cfg.Cooldown),
		xbreaker.WithOnStateChange(func(name string, from, to xbreaker.State) {
			g.logger.Info(context.Background(), "circuit breaker state changed",
				xlog.AttrTarget(name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		}),
	)

	// 配置经 withDefaults 归一化，容量恒为正数
	bulkhead, err := xbulkhead.New(cfg.MaxConcurrentRequests)
	if err != nil {
		bulkhead, _ = xbulkhead.New(DefaultMaxConcurrentRequests)
	}

	return &targetState{
		cfg:      cfg,
		breaker:  breaker,
		bulkhead: bulkhead,
	}
}
