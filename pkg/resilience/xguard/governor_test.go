package xguard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/omeyang/mcpkit/pkg/observability/xmetrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var errUpstream = errors.New("upstream failed")

// noopOp 立即成功的操作
func noopOp(context.Context) error { return nil }

func TestGuardValidation(t *testing.T) {
	gov, err := New()
	require.NoError(t, err)

	assert.ErrorIs(t, gov.Guard(nil, "t", noopOp), ErrNilContext) //nolint:staticcheck // 验证 nil ctx 防御
	assert.ErrorIs(t, gov.Guard(context.Background(), "", noopOp), ErrEmptyTarget)
	assert.ErrorIs(t, gov.Guard(context.Background(), "t", nil), ErrNilOperation)
}

func TestGuardSuccess(t *testing.T) {
	gov, err := New()
	require.NoError(t, err)

	var executed atomic.Int64
	err = gov.Guard(context.Background(), "svc-a", func(context.Context) error {
		executed.Add(1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), executed.Load())
	assert.Equal(t, int64(1), gov.Registry().Counter(xmetrics.MetricMCPCalls))
}

func TestGuardRateLimited(t *testing.T) {
	gov, err := New(WithTargetConfig("svc-a", TargetConfig{RateLimitPerMinute: 1}))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, gov.Guard(ctx, "svc-a", noopOp))

	var executed atomic.Int64
	err = gov.Guard(ctx, "svc-a", func(context.Context) error {
		executed.Add(1)
		return nil
	})
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.True(t, IsRejection(err))

	// 被拒绝的调用未执行，只递增限流拒绝计数器
	assert.Equal(t, int64(0), executed.Load())
	assert.Equal(t, int64(1), gov.Registry().Counter(xmetrics.MetricMCPCalls))
	assert.Equal(t, int64(1), gov.Registry().Counter(xmetrics.MetricMCPRateLimitedRejections))
}

func TestGuardCircuitOpen(t *testing.T) {
	gov, err := New(WithTargetConfig("svc-a", TargetConfig{FailureThreshold: 1}))
	require.NoError(t, err)

	ctx := context.Background()
	err = gov.Guard(ctx, "svc-a", func(context.Context) error { return errUpstream })
	require.ErrorIs(t, err, errUpstream)

	// 首次失败跳闸，后续调用不再执行操作
	var executed atomic.Int64
	err = gov.Guard(ctx, "svc-a", func(context.Context) error {
		executed.Add(1)
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int64(0), executed.Load())

	var rej *RejectionError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "svc-a", rej.Target)
	assert.Greater(t, rej.RetryAfter, time.Duration(0))

	assert.Equal(t, int64(1), gov.Registry().Counter(xmetrics.MetricMCPCalls))
	assert.Equal(t, int64(1), gov.Registry().Counter(xmetrics.MetricMCPCircuitOpenRejections))
}

func TestGuardBreakerRecovery(t *testing.T) {
	gov, err := New(WithTargetConfig("svc-a", TargetConfig{
		FailureThreshold: 1,
		Cooldown:         20 * time.Millisecond,
	}))
	require.NoError(t, err)

	ctx := context.Background()
	require.ErrorIs(t,
		gov.Guard(ctx, "svc-a", func(context.Context) error { return errUpstream }),
		errUpstream)
	require.ErrorIs(t, gov.Guard(ctx, "svc-a", noopOp), ErrCircuitOpen)

	// 冷却结束后探测成功，恢复放行
	time.Sleep(30 * time.Millisecond)
	assert.NoError(t, gov.Guard(ctx, "svc-a", noopOp))
	assert.NoError(t, gov.Guard(ctx, "svc-a", noopOp))
}

func TestGuardBulkheadRejected(t *testing.T) {
	gov, err := New(WithTargetConfig("svc-a", TargetConfig{
		MaxConcurrentRequests: 1,
		QueueWait:             30 * time.Millisecond,
		FailureThreshold:      1,
	}))
	require.NoError(t, err)

	ctx := context.Background()
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- gov.Guard(ctx, "svc-a", func(context.Context) error {
			<-release
			return nil
		})
	}()

	require.Eventually(t, func() bool {
		return gov.Registry().Counter(xmetrics.MetricMCPCalls) == 1
	}, time.Second, time.Millisecond)

	err = gov.Guard(ctx, "svc-a", noopOp)
	assert.ErrorIs(t, err, ErrBulkheadRejected)
	assert.Equal(t, int64(1), gov.Registry().Counter(xmetrics.MetricMCPBulkheadRejections))

	close(release)
	require.NoError(t, <-done)

	// 舱壁拒绝对熔断器是中性的：阈值为 1 也不会跳闸
	assert.NoError(t, gov.Guard(ctx, "svc-a", noopOp))
}

func TestGuardBlockedIsNeutral(t *testing.T) {
	gov, err := New(WithTargetConfig("svc-a", TargetConfig{FailureThreshold: 1}))
	require.NoError(t, err)

	ctx := context.Background()
	policyErr := errors.New("tool denied by policy")
	err = gov.Guard(ctx, "svc-a", func(context.Context) error {
		return Blocked(policyErr)
	})
	require.Error(t, err)
	assert.True(t, IsBlocked(err))
	assert.ErrorIs(t, err, policyErr)

	// 策略拦截不计入熔断失败，后续调用照常放行
	assert.NoError(t, gov.Guard(ctx, "svc-a", noopOp))
	// 操作已执行，mcp_calls 计入两次
	assert.Equal(t, int64(2), gov.Registry().Counter(xmetrics.MetricMCPCalls))
}

func TestGuardContextCanceledWhileQueued(t *testing.T) {
	gov, err := New(WithTargetConfig("svc-a", TargetConfig{
		MaxConcurrentRequests: 1,
		QueueWait:             time.Second,
	}))
	require.NoError(t, err)

	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- gov.Guard(context.Background(), "svc-a", func(context.Context) error {
			<-release
			return nil
		})
	}()
	require.Eventually(t, func() bool {
		return gov.Registry().Counter(xmetrics.MetricMCPCalls) == 1
	}, time.Second, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err = gov.Guard(ctx, "svc-a", noopOp)
	assert.ErrorIs(t, err, context.Canceled)

	// 调用方自身取消不是策略拒绝
	assert.Equal(t, int64(0), gov.Registry().Counter(xmetrics.MetricMCPBulkheadRejections))

	close(release)
	require.NoError(t, <-done)
}

func TestGuardTargetsIndependent(t *testing.T) {
	gov, err := New(WithTargetConfig("svc-a", TargetConfig{RateLimitPerMinute: 1}))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, gov.Guard(ctx, "svc-a", noopOp))
	require.ErrorIs(t, gov.Guard(ctx, "svc-a", noopOp), ErrRateLimited)

	// 另一目标不受影响
	assert.NoError(t, gov.Guard(ctx, "svc-b", noopOp))
}

func TestGuardConcurrentScenario(t *testing.T) {
	gov, err := New(WithTargetConfig("svc-a", TargetConfig{
		MaxConcurrentRequests: 1,
		QueueWait:             50 * time.Millisecond,
		RateLimitPerMinute:    3,
	}))
	require.NoError(t, err)

	const calls = 6
	var wg sync.WaitGroup
	for range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = gov.Guard(context.Background(), "svc-a", func(context.Context) error {
				time.Sleep(200 * time.Millisecond)
				return nil
			})
		}()
	}
	wg.Wait()

	reg := gov.Registry()
	executed := reg.Counter(xmetrics.MetricMCPCalls)
	rateRejected := reg.Counter(xmetrics.MetricMCPRateLimitedRejections)
	bulkheadRejected := reg.Counter(xmetrics.MetricMCPBulkheadRejections)

	// 每次调用要么执行要么恰好计入一个拒绝计数器
	assert.Equal(t, int64(calls), executed+rateRejected+bulkheadRejected)
	assert.GreaterOrEqual(t, rateRejected, int64(1))
	assert.GreaterOrEqual(t, bulkheadRejected, int64(1))

	// 所有许可均已释放
	st := gov.target("svc-a")
	assert.Equal(t, 0, st.bulkhead.InFlight())
	assert.Equal(t, 0, st.bulkhead.QueueLen())
}

func TestUpdateConfig(t *testing.T) {
	gov, err := New(WithTargetConfig("svc-a", TargetConfig{RateLimitPerMinute: 1}))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, gov.Guard(ctx, "svc-a", noopOp))
	require.ErrorIs(t, gov.Guard(ctx, "svc-a", noopOp), ErrRateLimited)

	require.NoError(t, gov.UpdateConfig("svc-a", TargetConfig{RateLimitPerMinute: 10}))
	assert.Equal(t, 10, gov.TargetConfigFor("svc-a").RateLimitPerMinute)
	assert.NoError(t, gov.Guard(ctx, "svc-a", noopOp))

	assert.ErrorIs(t, gov.UpdateConfig("", TargetConfig{}), ErrEmptyTarget)
}

func TestTargetConfigDefaults(t *testing.T) {
	cfg := TargetConfig{}.withDefaults()
	assert.Equal(t, DefaultMaxConcurrentRequests, cfg.MaxConcurrentRequests)
	assert.Equal(t, DefaultQueueWait, cfg.QueueWait)
	assert.Equal(t, DefaultRateLimitPerMinute, cfg.RateLimitPerMinute)
	assert.Positive(t, cfg.FailureThreshold)
	assert.Positive(t, cfg.Cooldown)
}
