package xexport

import "errors"

var (
	// ErrNilSender 发送器为 nil
	ErrNilSender = errors.New("xexport: sender cannot be nil")

	// ErrEmptyEndpoint 导出端点为空
	ErrEmptyEndpoint = errors.New("xexport: endpoint cannot be empty")

	// ErrSendFailed 发送被对端拒绝
	ErrSendFailed = errors.New("xexport: send failed")
)
