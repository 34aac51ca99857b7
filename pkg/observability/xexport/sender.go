package xexport

import (
	"context"

	"github.com/omeyang/mcpkit/pkg/observability/xmetrics"
)

// Sender 外部发送器
//
// 由导出工作协程独占调用，一次发送一份快照。返回 nil 表示
// 对端确认接收，返回 error 触发退避重试。
type Sender interface {
	Send(ctx context.Context, snapshot xmetrics.Snapshot) error
}

// SenderFunc 函数式 Sender 适配器
type SenderFunc func(ctx context.Context, snapshot xmetrics.Snapshot) error

// Send 实现 Sender 接口
func (f SenderFunc) Send(ctx context.Context, snapshot xmetrics.Snapshot) error {
	return f(ctx, snapshot)
}
