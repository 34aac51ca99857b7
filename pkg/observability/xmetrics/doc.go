// Package xmetrics 提供并发安全的运行时指标注册表。
//
// Registry 维护单调递增的计数器和可覆写的仪表值，Snapshot 返回
// 某一时刻的一致性副本（读者不会观察到进行中的写入）。注册表是
// 显式构造、可注入的组件，不是包级单例——xguard 治理层写入它，
// xexport 采样器周期性读取它。
//
// 基本用法:
//
//	reg := xmetrics.NewRegistry()
//	reg.Inc(xmetrics.MetricMCPCalls)
//	reg.SetGauge(xmetrics.GaugeActiveSessions, 3)
//
//	snap := reg.Snapshot()
//	sum := xmetrics.Summarize(snap)
//
// 需要接入已有 OpenTelemetry SDK 的部署，可通过 NewOTelBridge 将
// 注册表的计数器以 ObservableCounter 形式暴露给任意 MeterProvider。
package xmetrics
