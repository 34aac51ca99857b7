package xmetrics

import (
	"sync"
	"time"
)

// Registry 并发安全的指标注册表
//
// 计数器在进程生命周期内单调不减；仪表值可任意覆写。
// 指标名首次使用时隐式注册，重复注册是幂等的。
type Registry struct {
	mu       sync.RWMutex
	counters map[string]int64
	gauges   map[string]float64

	// now 可在测试中替换，控制快照时间戳
	now func() time.Time
}

// NewRegistry 创建指标注册表
//
// 稳定指标名（DefaultCounterNames/DefaultGaugeNames）会被预注册为零值，
// 保证快照中始终包含完整的指标集合，外部报表无需处理字段缺失。
func NewRegistry() *Registry {
	r := &Registry{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		now:      time.Now,
	}
	for _, name := range DefaultCounterNames() {
		r.counters[name] = 0
	}
	for _, name := range DefaultGaugeNames() {
		r.gauges[name] = 0
	}
	return r
}

// Inc 将指定计数器加一
func (r *Registry) Inc(name string) {
	r.Add(name, 1)
}

// Add 将指定计数器增加 n
//
// n <= 0 时静默忽略，保证计数器单调不减。
func (r *Registry) Add(name string, n int64) {
	if name == "" || n <= 0 {
		return
	}
	r.mu.Lock()
	r.counters[name] += n
	r.mu.Unlock()
}

// SetGauge 设置仪表值
func (r *Registry) SetGauge(name string, value float64) {
	if name == "" {
		return
	}
	r.mu.Lock()
	r.gauges[name] = value
	r.mu.Unlock()
}

// Counter 返回指定计数器的当前值
//
// 未注册的名字返回 0。
func (r *Registry) Counter(name string) int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counters[name]
}

// Gauge 返回指定仪表的当前值
func (r *Registry) Gauge(name string) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gauges[name]
}

// Snapshot 返回当前指标的一致性副本
//
// 副本在持有读锁期间一次性拷贝完成，读者不会观察到进行中的写入。
// 返回的 Snapshot 不可变，可安全跨 goroutine 传递。
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counters := make(map[string]int64, len(r.counters))
	for k, v := range r.counters {
		counters[k] = v
	}
	gauges := make(map[string]float64, len(r.gauges))
	for k, v := range r.gauges {
		gauges[k] = v
	}

	return Snapshot{
		Timestamp: r.now(),
		Counters:  counters,
		Gauges:    gauges,
	}
}
