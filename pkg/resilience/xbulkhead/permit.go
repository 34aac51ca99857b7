package xbulkhead

import "sync/atomic"

// Permit 舱壁许可，作用域句柄
// 持有期间占用一个并发槽位，Release 幂等
type Permit struct {
	bh       *Bulkhead
	released atomic.Bool
}

// newPermit 创建许可
func newPermit(bh *Bulkhead) *Permit {
	return &Permit{bh: bh}
}

// Release 归还许可
//
// 幂等：重复调用只归还一次槽位。归还时若有等待者，槽位直接
// 移交给队首。
func (p *Permit) Release() {
	if p == nil || p.released.Swap(true) {
		return
	}
	p.bh.release()
}
