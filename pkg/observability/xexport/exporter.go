package xexport

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/omeyang/mcpkit/pkg/observability/xlog"
	"github.com/omeyang/mcpkit/pkg/observability/xmetrics"
)

const (
	// DefaultQueueCapacity 默认队列容量
	DefaultQueueCapacity = 256

	// DefaultMaxAttempts 默认单条快照的最大发送次数
	DefaultMaxAttempts = 3

	// DefaultBaseDelay 默认退避基准延迟
	DefaultBaseDelay = 500 * time.Millisecond

	// DefaultMaxDelay 默认退避延迟上限
	DefaultMaxDelay = 8 * time.Second

	// DefaultSampleInterval 默认采样间隔
	DefaultSampleInterval = 15 * time.Second
)

// item 队列中的一条待导出快照
// 仅由导出工作协程修改
type item struct {
	id        string
	snapshot  xmetrics.Snapshot
	attempts  int
	notBefore time.Time
}

// exporterOptions 导出器配置
type exporterOptions struct {
	capacity       int
	maxAttempts    int
	baseDelay      time.Duration
	maxDelay       time.Duration
	sampleInterval time.Duration
	registry       *xmetrics.Registry
	logger         xlog.Logger
}

// ExporterOption 导出器选项
type ExporterOption func(*exporterOptions)

// WithQueueCapacity 设置队列容量
//
// 默认值：256。
func WithQueueCapacity(capacity int) ExporterOption {
	return func(o *exporterOptions) {
		if capacity > 0 {
			o.capacity = capacity
		}
	}
}

// WithMaxAttempts 设置单条快照的最大发送次数
//
// 默认值：3。第 maxAttempts 次发送仍失败时丢弃该快照。
func WithMaxAttempts(n int) ExporterOption {
	return func(o *exporterOptions) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithRetryDelays 设置退避基准延迟与延迟上限
//
// 默认值：500ms 与 8s。
func WithRetryDelays(base, maxDelay time.Duration) ExporterOption {
	return func(o *exporterOptions) {
		if base > 0 {
			o.baseDelay = base
		}
		if maxDelay > 0 {
			o.maxDelay = maxDelay
		}
	}
}

// WithSampleInterval 设置自动采样间隔
//
// 默认值：15s。仅在注入 Registry 后生效。
func WithSampleInterval(d time.Duration) ExporterOption {
	return func(o *exporterOptions) {
		if d > 0 {
			o.sampleInterval = d
		}
	}
}

// WithRegistry 注入指标注册表，启用周期性自动采样
func WithRegistry(registry *xmetrics.Registry) ExporterOption {
	return func(o *exporterOptions) {
		o.registry = registry
	}
}

// WithLogger 注入日志器
func WithLogger(logger xlog.Logger) ExporterOption {
	return func(o *exporterOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Exporter 指标快照导出器
//
// 队列由单个后台工作协程独占消费，生产者只通过 TryEnqueue
// 交互，生产延迟与重试退避互不影响。
type Exporter struct {
	sender         Sender
	logger         xlog.Logger
	registry       *xmetrics.Registry
	capacity       int
	maxAttempts    int
	baseDelay      time.Duration
	maxDelay       time.Duration
	sampleInterval time.Duration

	mu     sync.Mutex
	queue  *list.List // FIFO of *item
	closed bool

	wake      chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once

	// now 可注入的时钟，便于测试退避调度
	now func() time.Time
}

// New 创建导出器
func New(sender Sender, opts ...ExporterOption) (*Exporter, error) {
	if sender == nil {
		return nil, ErrNilSender
	}

	o := &exporterOptions{
		capacity:       DefaultQueueCapacity,
		maxAttempts:    DefaultMaxAttempts,
		baseDelay:      DefaultBaseDelay,
		maxDelay:       DefaultMaxDelay,
		sampleInterval: DefaultSampleInterval,
		logger:         xlog.Nop(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &Exporter{
		sender:         sender,
		logger:         o.logger,
		registry:       o.registry,
		capacity:       o.capacity,
		maxAttempts:    o.maxAttempts,
		baseDelay:      o.baseDelay,
		maxDelay:       o.maxDelay,
		sampleInterval: o.sampleInterval,
		queue:          list.New(),
		wake:           make(chan struct{}, 1),
		done:           make(chan struct{}),
		now:            time.Now,
	}, nil
}

// TryEnqueue 非阻塞入队一份快照
//
// 队列已满或导出器已关闭时返回 false，调用方丢弃快照即可，
// 绝不阻塞。
func (e *Exporter) TryEnqueue(snapshot xmetrics.Snapshot) bool {
	e.mu.Lock()
	if e.closed || e.queue.Len() >= e.capacity {
		e.mu.Unlock()
		return false
	}
	e.queue.PushBack(&item{
		id:       uuid.NewString(),
		snapshot: snapshot,
	})
	e.mu.Unlock()

	e.notify()
	return true
}

// QueueLen 返回当前队列长度
func (e *Exporter) QueueLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queue.Len()
}

// Start 启动后台工作协程
//
// 注入 Registry 后同时启动周期采样协程。重复调用无效果。
func (e *Exporter) Start() {
	e.startOnce.Do(func() {
		e.wg.Add(1)
		go e.runWorker()

		if e.registry != nil && e.sampleInterval > 0 {
			e.wg.Add(1)
			go e.runSampler()
		}
	})
}

// Close 停止导出器并等待后台协程退出
//
// 队列中未发送的快照直接丢弃，不做跨进程持久化。幂等。
func (e *Exporter) Close(ctx context.Context) error {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		e.closed = true
		e.mu.Unlock()
		close(e.done)
	})

	stopped := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// notify 唤醒工作协程
func (e *Exporter) notify() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// runWorker 导出工作循环
func (e *Exporter) runWorker() {
	defer e.wg.Done()

	for {
		it, wait := e.nextItem()
		if it != nil {
			e.deliver(it)
			continue
		}

		if wait <= 0 {
			// 队列为空，等待新快照或关闭
			select {
			case <-e.done:
				return
			case <-e.wake:
			}
			continue
		}

		// 队首尚未到发送时间
		timer := time.NewTimer(wait)
		select {
		case <-e.done:
			timer.Stop()
			return
		case <-e.wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// nextItem 取出第一条已到发送时间的快照
//
// 队列为空时返回 (nil, 0)；全部未到时间时返回 (nil, 最近一条
// 的剩余等待)。
func (e *Exporter) nextItem() (*item, time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	var earliest time.Time
	for elem := e.queue.Front(); elem != nil; elem = elem.Next() {
		it, ok := elem.Value.(*item)
		if !ok {
			continue
		}
		if !it.notBefore.After(now) {
			e.queue.Remove(elem)
			return it, 0
		}
		if earliest.IsZero() || it.notBefore.Before(earliest) {
			earliest = it.notBefore
		}
	}

	if earliest.IsZero() {
		return nil, 0
	}
	return nil, earliest.Sub(now)
}

// deliver 发送一条快照，失败时按退避重新入队
func (e *Exporter) deliver(it *item) {
	err := e.sender.Send(context.Background(), it.snapshot)
	if err == nil {
		return
	}

	it.attempts++
	if it.attempts >= e.maxAttempts {
		e.logger.Warn(context.Background(), "metrics export dropped after retries",
			slog.String("item_id", it.id),
			xlog.AttrAttempt(it.attempts),
			xlog.AttrError(err),
		)
		return
	}

	delay := backoffDelay(e.baseDelay, e.maxDelay, it.attempts)
	it.notBefore = e.now().Add(delay)
	e.requeue(it)
}

// requeue 将重试项放回队尾
// 重试项不受容量约束：名额在首次入队时已占用
func (e *Exporter) requeue(it *item) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.queue.PushBack(it)
	e.mu.Unlock()

	e.notify()
}

// runSampler 周期采样循环
func (e *Exporter) runSampler() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			if !e.TryEnqueue(e.registry.Snapshot()) {
				e.logger.Warn(context.Background(), "export queue full, snapshot dropped")
			}
		}
	}
}

// backoffDelay 计算第 attempt 次失败后的重试延迟
// 进度为 base, 2*base, 4*base, ...，上限 maxDelay
func backoffDelay(base, maxDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	return min(delay, maxDelay)
}
