// Package xlog 提供 mcpkit 各组件共用的结构化日志接口。
//
// 基于标准库 log/slog 封装，强制 context 传递，方法签名只接受
// slog.Attr，避免隐式 key-value 转换。治理组件（xguard、xexport 等）
// 通过 WithLogger 选项注入 Logger；未注入时使用 Nop()，日志静默丢弃。
//
// 基本用法:
//
//	logger := xlog.New(xlog.WithLevel(slog.LevelDebug))
//	logger.Info(ctx, "export worker started",
//	    slog.String("endpoint", endpoint),
//	)
//
// 动态级别控制:
//
//	if lv, ok := logger.(xlog.Leveler); ok {
//	    lv.SetLevel(slog.LevelWarn)
//	}
package xlog
