package xrate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingBackend 始终报错的后端，用于验证降级策略
type failingBackend struct{}

func (failingBackend) Allow(context.Context, string, int) (bool, error) {
	return false, errors.New("backend down")
}
func (failingBackend) Reset(context.Context, string) error { return nil }
func (failingBackend) Close(context.Context) error         { return nil }
func (failingBackend) Type() string                        { return "failing" }

func TestLimiterValidation(t *testing.T) {
	limiter, err := New()
	require.NoError(t, err)

	_, err = limiter.Allow(nil, "svc-a", 1) //nolint:staticcheck // 验证 nil ctx 防御
	assert.ErrorIs(t, err, ErrNilContext)

	_, err = limiter.Allow(context.Background(), "", 1)
	assert.ErrorIs(t, err, ErrEmptyTarget)

	_, err = limiter.Allow(context.Background(), "svc-a", 0)
	assert.ErrorIs(t, err, ErrInvalidLimit)

	_, err = limiter.Allow(context.Background(), "svc-a", -5)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestLimiterDefaultLocalBackend(t *testing.T) {
	limiter, err := New()
	require.NoError(t, err)
	defer func() { _ = limiter.Close(context.Background()) }()

	ctx := context.Background()
	allowed, err := limiter.Allow(ctx, "svc-a", 1)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = limiter.Allow(ctx, "svc-a", 1)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestLimiterFallbackOpen(t *testing.T) {
	limiter, err := New(WithBackend(failingBackend{}))
	require.NoError(t, err)

	allowed, err := limiter.Allow(context.Background(), "svc-a", 1)
	require.NoError(t, err)
	// 后端故障时默认放行
	assert.True(t, allowed)
}

func TestLimiterFallbackClose(t *testing.T) {
	limiter, err := New(
		WithBackend(failingBackend{}),
		WithFallbackMode(FallbackClose),
	)
	require.NoError(t, err)

	allowed, err := limiter.Allow(context.Background(), "svc-a", 1)
	assert.False(t, allowed)
	// 降级拒绝携带后端不可用错误，可与正常限流拒绝区分
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestNewNilRedisClient(t *testing.T) {
	_, err := New(WithRedis(nil))
	assert.ErrorIs(t, err, ErrNilRedisClient)
}

func TestLimiterReset(t *testing.T) {
	limiter, err := New()
	require.NoError(t, err)

	ctx := context.Background()
	allowed, err := limiter.Allow(ctx, "svc-a", 1)
	require.NoError(t, err)
	require.True(t, allowed)

	require.NoError(t, limiter.Reset(ctx, "svc-a"))

	allowed, err = limiter.Allow(ctx, "svc-a", 1)
	require.NoError(t, err)
	assert.True(t, allowed)

	assert.ErrorIs(t, limiter.Reset(ctx, ""), ErrEmptyTarget)
}
