package xrate

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRedisBackend 启动 miniredis 并绑定后端
func newTestRedisBackend(t *testing.T) (*redisBackend, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return newRedisBackend(rdb, "test:xrate"), srv
}

func TestRedisBackendFixedWindow(t *testing.T) {
	backend, _ := newTestRedisBackend(t)
	now := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	backend.now = func() time.Time { return now }

	ctx := context.Background()
	for range 2 {
		allowed, err := backend.Allow(ctx, "svc-a", 2)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, err := backend.Allow(ctx, "svc-a", 2)
	require.NoError(t, err)
	assert.False(t, allowed)

	// 窗口切换后使用新键，计数从零开始
	now = now.Add(time.Minute)
	allowed, err = backend.Allow(ctx, "svc-a", 2)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisBackendRejectDoesNotIncrement(t *testing.T) {
	backend, srv := newTestRedisBackend(t)
	now := time.Date(2026, 3, 1, 10, 0, 5, 0, time.UTC)
	backend.now = func() time.Time { return now }

	ctx := context.Background()
	for range 2 {
		allowed, err := backend.Allow(ctx, "svc-a", 2)
		require.NoError(t, err)
		require.True(t, allowed)
	}
	for range 4 {
		allowed, err := backend.Allow(ctx, "svc-a", 2)
		require.NoError(t, err)
		require.False(t, allowed)
	}

	// 被拒绝的调用不改变窗口计数
	key := backend.windowKey("svc-a", windowIndex(now))
	val, err := srv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(2), val)
}

func TestRedisBackendKeyExpiry(t *testing.T) {
	backend, srv := newTestRedisBackend(t)

	allowed, err := backend.Allow(context.Background(), "svc-a", 5)
	require.NoError(t, err)
	require.True(t, allowed)

	key := backend.windowKey("svc-a", windowIndex(time.Now()))
	ttl := srv.TTL(key)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, windowKeyTTL)
}

func TestRedisBackendReset(t *testing.T) {
	backend, _ := newTestRedisBackend(t)
	ctx := context.Background()

	allowed, err := backend.Allow(ctx, "svc-a", 1)
	require.NoError(t, err)
	require.True(t, allowed)

	require.NoError(t, backend.Reset(ctx, "svc-a"))

	allowed, err = backend.Allow(ctx, "svc-a", 1)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRedisBackendUnavailable(t *testing.T) {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	backend := newRedisBackend(rdb, "")
	srv.Close()

	_, err := backend.Allow(context.Background(), "svc-a", 1)
	assert.Error(t, err)
}
