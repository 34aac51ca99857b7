package xmetrics

import "time"

// Snapshot 某一时刻的指标快照
//
// 由 Registry.Snapshot 产出后不再变化。持有者不应修改其中的 map；
// 需要修改时先通过 Clone 获取副本。
type Snapshot struct {
	// Timestamp 快照生成时间
	Timestamp time.Time

	// Counters 计数器名到累计值的映射
	Counters map[string]int64

	// Gauges 仪表名到当前值的映射
	Gauges map[string]float64
}

// Counter 返回指定计数器值，未知名字返回 0
func (s Snapshot) Counter(name string) int64 {
	return s.Counters[name]
}

// Gauge 返回指定仪表值，未知名字返回 0
func (s Snapshot) Gauge(name string) float64 {
	return s.Gauges[name]
}

// Clone 返回快照的深拷贝
func (s Snapshot) Clone() Snapshot {
	counters := make(map[string]int64, len(s.Counters))
	for k, v := range s.Counters {
		counters[k] = v
	}
	gauges := make(map[string]float64, len(s.Gauges))
	for k, v := range s.Gauges {
		gauges[k] = v
	}
	return Snapshot{
		Timestamp: s.Timestamp,
		Counters:  counters,
		Gauges:    gauges,
	}
}
