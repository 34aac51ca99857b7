// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xlog: 结构化日志，基于 log/slog 扩展
//   - xmetrics: 进程内指标注册表与 OTel 桥接
//   - xexport: 指标快照的后台导出队列与 OTLP 发送器
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 指标采集与导出解耦，导出失败不影响调用路径
//   - 支持动态级别控制
package observability
