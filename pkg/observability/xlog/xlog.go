package xlog

import (
	"context"
	"log/slog"
)

// Logger 日志接口
//
// 方法都携带 context.Context，便于接入追踪体系；
// 属性只接受 slog.Attr，避免隐式 key-value 转换。
type Logger interface {
	// Debug 输出调试信息
	Debug(ctx context.Context, msg string, attrs ...slog.Attr)

	// Info 输出常规信息
	Info(ctx context.Context, msg string, attrs ...slog.Attr)

	// Warn 输出警告，如限流降级、导出重试
	Warn(ctx context.Context, msg string, attrs ...slog.Attr)

	// Error 输出错误
	Error(ctx context.Context, msg string, attrs ...slog.Attr)

	// With 返回携带固定属性的派生 Logger
	//
	// 派生 logger 与父级共享 LevelVar，动态级别变更同步生效。
	With(attrs ...slog.Attr) Logger
}

// Leveler 动态级别控制
//
// 独立于 Logger 接口，具体实现是否支持由类型断言判断。
type Leveler interface {
	// SetLevel 设置日志级别，运行时生效
	SetLevel(level slog.Level)

	// GetLevel 返回当前日志级别
	GetLevel() slog.Level
}
