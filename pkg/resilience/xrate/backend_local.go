package xrate

import (
	"context"
	"sync"
	"time"
)

// localBackend 进程内固定窗口后端
// 使用内存存储，适用于单实例部署或作为分布式限流的降级方案
type localBackend struct {
	windows sync.Map // map[string]*fixedWindow

	// now 可注入的时钟，便于测试窗口切换
	now func() time.Time
}

// newLocalBackend 创建本地后端
func newLocalBackend() *localBackend {
	return &localBackend{now: time.Now}
}

// Type 返回后端类型
func (b *localBackend) Type() string {
	return "local"
}

// Allow 在当前分钟窗口内尝试放行一次调用
func (b *localBackend) Allow(ctx context.Context, target string, limit int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	w := b.getOrCreateWindow(target)
	return w.allow(windowIndex(b.now()), limit), nil
}

// Reset 清空指定目标的窗口计数
func (b *localBackend) Reset(_ context.Context, target string) error {
	b.windows.Delete(target)
	return nil
}

// Close 关闭后端
func (b *localBackend) Close(_ context.Context) error {
	return nil
}

// getOrCreateWindow 获取或创建目标的窗口计数器
func (b *localBackend) getOrCreateWindow(target string) *fixedWindow {
	if val, ok := b.windows.Load(target); ok {
		if w, ok := val.(*fixedWindow); ok {
			return w
		}
	}

	actual, _ := b.windows.LoadOrStore(target, &fixedWindow{})
	if w, ok := actual.(*fixedWindow); ok {
		return w
	}
	return &fixedWindow{}
}

// fixedWindow 单个目标的固定窗口计数器
type fixedWindow struct {
	mu    sync.Mutex
	index int64
	count int
}

// allow 在指定窗口内尝试放行
// 窗口序号变化时计数归零；拒绝不消耗配额
func (w *fixedWindow) allow(index int64, limit int) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if index != w.index {
		w.index = index
		w.count = 0
	}

	if w.count >= limit {
		return false
	}
	w.count++
	return true
}

// 确保 localBackend 实现了 Backend 接口
var _ Backend = (*localBackend)(nil)
