package xlog

import "log/slog"

// 公共属性键常量
//
// mcpkit 各组件记录日志时统一使用这些键，便于日志检索和聚合。
const (
	// KeyTarget 被治理的上游目标标识
	KeyTarget = "target"

	// KeyReason 拒绝/丢弃原因
	KeyReason = "reason"

	// KeyAttempt 导出重试次数
	KeyAttempt = "attempt"

	// KeyError 错误信息
	KeyError = "error"
)

// AttrTarget 构造目标属性
func AttrTarget(target string) slog.Attr {
	return slog.String(KeyTarget, target)
}

// AttrReason 构造原因属性
func AttrReason(reason string) slog.Attr {
	return slog.String(KeyReason, reason)
}

// AttrAttempt 构造重试次数属性
func AttrAttempt(attempt int) slog.Attr {
	return slog.Int(KeyAttempt, attempt)
}

// AttrError 构造错误属性
//
// err 为 nil 时返回空字符串属性，避免日志中出现 "<nil>"。
func AttrError(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
