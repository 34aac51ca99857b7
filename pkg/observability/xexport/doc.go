// Package xexport 提供指标快照的有界队列导出。
//
// Exporter 持有一个有界队列和一个后台工作协程。生产者通过
// 非阻塞的 TryEnqueue 投递快照，队列满时直接返回 false，绝不
// 阻塞采样路径。工作协程按 FIFO 逐条出队并调用外部 Sender
// 发送；发送失败按指数退避重新入队，重试耗尽后丢弃并记录
// 日志。
//
// 退避进度：第 n 次失败后的重试延迟为 min(base * 2^(n-1), max)。
// 一条快照最多发送 1 + maxAttempts 次。
//
// 基本用法：
//
//	sender, err := xexport.NewOTLPSender("http://collector:4318/v1/metrics",
//		xexport.WithServiceName("my-service"),
//	)
//	if err != nil {
//		return err
//	}
//
//	exporter, err := xexport.New(sender,
//		xexport.WithRegistry(registry),
//		xexport.WithQueueCapacity(256),
//	)
//	if err != nil {
//		return err
//	}
//	exporter.Start()
//	defer exporter.Close(context.Background())
//
// 注入 Registry 后，Exporter 按固定间隔自动采样快照入队；
// 也可以不注入，完全由调用方手动 TryEnqueue。
package xexport
