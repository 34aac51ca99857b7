package xlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// 编译时接口检查
var (
	_ Logger  = (*xlogger)(nil)
	_ Leveler = (*xlogger)(nil)
	_ Logger  = (*nopLogger)(nil)
)

// options 日志构建配置
type options struct {
	writer  io.Writer
	level   slog.Level
	handler slog.Handler
}

// Option 日志构建选项
type Option func(*options)

// WithWriter 设置日志输出目标
//
// 默认值：os.Stderr
func WithWriter(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.writer = w
		}
	}
}

// WithLevel 设置初始日志级别
//
// 默认值：slog.LevelInfo
func WithLevel(level slog.Level) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithHandler 直接指定 slog.Handler
//
// 设置后 WithWriter 会被忽略；动态级别控制（Leveler）仅对
// 默认 Handler 生效，自定义 Handler 的级别由调用方自行管理。
func WithHandler(h slog.Handler) Option {
	return func(o *options) {
		if h != nil {
			o.handler = h
		}
	}
}

// New 创建 Logger
//
// 默认使用 JSON Handler 输出到 os.Stderr，级别 Info。
func New(opts ...Option) Logger {
	cfg := &options{
		writer: os.Stderr,
		level:  slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	levelVar := new(slog.LevelVar)
	levelVar.Set(cfg.level)

	handler := cfg.handler
	if handler == nil {
		handler = slog.NewJSONHandler(cfg.writer, &slog.HandlerOptions{
			Level: levelVar,
		})
	}

	return &xlogger{
		handler:  handler,
		levelVar: levelVar,
	}
}

// xlogger Logger 接口的实现
type xlogger struct {
	handler  slog.Handler
	levelVar *slog.LevelVar
}

func (l *xlogger) log(ctx context.Context, level slog.Level, msg string, attrs []slog.Attr) {
	if !l.handler.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	r.AddAttrs(attrs...)
	// 设计决策: Handler.Handle 的错误静默丢弃——日志子系统遵循
	// "失败不扩散"原则，不能因日志写入失败中断治理调用链。
	_ = l.handler.Handle(ctx, r)
}

// Debug 记录 Debug 级别日志
func (l *xlogger) Debug(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelDebug, msg, attrs)
}

// Info 记录 Info 级别日志
func (l *xlogger) Info(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelInfo, msg, attrs)
}

// Warn 记录 Warn 级别日志
func (l *xlogger) Warn(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelWarn, msg, attrs)
}

// Error 记录 Error 级别日志
func (l *xlogger) Error(ctx context.Context, msg string, attrs ...slog.Attr) {
	l.log(ctx, slog.LevelError, msg, attrs)
}

// With 返回带额外属性的派生 Logger
func (l *xlogger) With(attrs ...slog.Attr) Logger {
	if len(attrs) == 0 {
		return l
	}
	return &xlogger{
		handler:  l.handler.WithAttrs(attrs),
		levelVar: l.levelVar, // 共享级别变量，动态调整同步生效
	}
}

// SetLevel 动态设置日志级别（实现 Leveler 接口）
func (l *xlogger) SetLevel(level slog.Level) {
	l.levelVar.Set(level)
}

// GetLevel 获取当前日志级别（实现 Leveler 接口）
func (l *xlogger) GetLevel() slog.Level {
	return l.levelVar.Level()
}

// Nop 返回静默丢弃所有日志的 Logger
//
// 用于测试，以及调用方未注入日志器的默认场景。
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...slog.Attr) {}
func (nopLogger) Info(context.Context, string, ...slog.Attr)  {}
func (nopLogger) Warn(context.Context, string, ...slog.Attr)  {}
func (nopLogger) Error(context.Context, string, ...slog.Attr) {}
func (nopLogger) With(...slog.Attr) Logger                    { return nopLogger{} }
