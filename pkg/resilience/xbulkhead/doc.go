// Package xbulkhead 提供面向外呼目标的舱壁并发隔离。
//
// 舱壁限制单个目标的同时在途调用数。容量未满时立即放行；容量
// 已满时调用方进入 FIFO 等待队列，直到有许可释放或等待超时。
// 许可是一个作用域句柄，释放在任何退出路径上都是幂等且安全的。
//
// 基本用法：
//
//	bh, err := xbulkhead.New(4)
//	if err != nil {
//		return err
//	}
//
//	permit, err := bh.Acquire(ctx, time.Second)
//	if err != nil {
//		return err // 超时或取消
//	}
//	defer permit.Release()
//
//	// 持有许可期间执行受保护的调用
//
// 等待中的调用方超时或取消时会被原子地移出队列：边界时刻释放
// 的许可不会丢失，也不会被重复授予。
package xbulkhead
