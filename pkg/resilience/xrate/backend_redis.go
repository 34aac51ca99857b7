package xrate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// defaultKeyPrefix Redis 键前缀默认值
const defaultKeyPrefix = "mcpkit:xrate"

// 窗口键保留两个窗口长度，覆盖实例间的时钟偏差
const windowKeyTTL = 2 * windowLength

// allowScript 固定窗口检查与递增的原子脚本
//
// 设计决策: 先检查后递增，而不是 INCR 后比较。被拒绝的调用
// 不改变计数，与本地后端语义完全一致。
// KEYS[1]: 窗口键  ARGV[1]: 配额上限  ARGV[2]: 键 TTL（毫秒）
var allowScript = redis.NewScript(`
local count = tonumber(redis.call('GET', KEYS[1]) or '0')
if count >= tonumber(ARGV[1]) then
	return 0
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 1
`)

// redisBackend 基于 Redis 的分布式固定窗口后端
// 多个实例共享同一窗口计数，窗口键自带过期，无需额外清理
type redisBackend struct {
	rdb    redis.UniversalClient
	prefix string

	// now 可注入的时钟，便于测试窗口切换
	now func() time.Time
}

// newRedisBackend 创建 Redis 后端
func newRedisBackend(rdb redis.UniversalClient, prefix string) *redisBackend {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisBackend{
		rdb:    rdb,
		prefix: prefix,
		now:    time.Now,
	}
}

// Type 返回后端类型
func (b *redisBackend) Type() string {
	return "redis"
}

// Allow 在当前分钟窗口内尝试放行一次调用
func (b *redisBackend) Allow(ctx context.Context, target string, limit int) (bool, error) {
	key := b.windowKey(target, windowIndex(b.now()))

	res, err := allowScript.Run(ctx, b.rdb,
		[]string{key}, limit, windowKeyTTL.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("xrate: redis allow failed: %w", err)
	}

	return res == 1, nil
}

// Reset 清空指定目标当前窗口的计数
func (b *redisBackend) Reset(ctx context.Context, target string) error {
	key := b.windowKey(target, windowIndex(b.now()))
	if err := b.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("xrate: redis reset failed: %w", err)
	}
	return nil
}

// Close 关闭后端（注入的客户端由调用方管理）
func (b *redisBackend) Close(_ context.Context) error {
	return nil
}

// windowKey 拼接目标在指定窗口的 Redis 键
func (b *redisBackend) windowKey(target string, index int64) string {
	return fmt.Sprintf("%s:%s:%d", b.prefix, target, index)
}

// 确保 redisBackend 实现了 Backend 接口
var _ Backend = (*redisBackend)(nil)
