package xbulkhead

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// waiter 等待队列中的一个调用方
// granted 与出队在同一把锁内翻转，保证授予与移除互斥
type waiter struct {
	ready   chan struct{}
	granted bool
}

// Bulkhead 单目标的舱壁并发隔离器
//
// 在途调用数不变式：任何时刻 inFlight <= capacity。许可释放时
// 优先移交给队首等待者，槽位在调用方之间直接传递，不经过
// 计数归零再抢占的窗口。
type Bulkhead struct {
	capacity int

	mu       sync.Mutex
	inFlight int
	waiters  *list.List // FIFO of *waiter
}

// New 创建舱壁
func New(capacity int) (*Bulkhead, error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Bulkhead{
		capacity: capacity,
		waiters:  list.New(),
	}, nil
}

// Capacity 返回容量上限
func (b *Bulkhead) Capacity() int {
	return b.capacity
}

// InFlight 返回当前在途调用数
func (b *Bulkhead) InFlight() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inFlight
}

// QueueLen 返回当前等待队列长度
func (b *Bulkhead) QueueLen() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.waiters.Len()
}

// Acquire 获取一个许可
//
// 容量未满时立即返回；已满时按 FIFO 排队，最多等待 wait。
// 超时返回 ErrAcquireTimeout，上下文取消返回 ctx.Err()；两种
// 情况下调用方都被原子移出队列，此后不会再被授予许可。
func (b *Bulkhead) Acquire(ctx context.Context, wait time.Duration) (*Permit, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	if b.inFlight < b.capacity {
		b.inFlight++
		b.mu.Unlock()
		return newPermit(b), nil
	}

	if wait <= 0 {
		b.mu.Unlock()
		return nil, ErrAcquireTimeout
	}

	w := &waiter{ready: make(chan struct{})}
	elem := b.waiters.PushBack(w)
	b.mu.Unlock()

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-w.ready:
		return newPermit(b), nil
	case <-timer.C:
		b.abandon(elem, w)
		return nil, ErrAcquireTimeout
	case <-ctx.Done():
		b.abandon(elem, w)
		return nil, ctx.Err()
	}
}

// abandon 将超时或取消的等待者移出队列
//
// 若释放方恰好在边界时刻已将槽位授予该等待者，则把槽位归还给
// 下一个等待者：既不丢失也不重复授予。放弃后的调用方在任何
// 情况下都不再持有许可。
func (b *Bulkhead) abandon(elem *list.Element, w *waiter) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if w.granted {
		b.releaseSlotLocked()
		return
	}
	b.waiters.Remove(elem)
}

// release 归还一个槽位，由 Permit.Release 调用
func (b *Bulkhead) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseSlotLocked()
}

// releaseSlotLocked 槽位移交逻辑（调用者必须持锁）
// 有等待者时槽位直接移交，inFlight 不变；否则计数递减
func (b *Bulkhead) releaseSlotLocked() {
	if elem := b.waiters.Front(); elem != nil {
		b.waiters.Remove(elem)
		if w, ok := elem.Value.(*waiter); ok {
			w.granted = true
			close(w.ready)
			return
		}
	}
	b.inFlight--
}
