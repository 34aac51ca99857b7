package xguard

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNilContext 上下文为 nil
	ErrNilContext = errors.New("xguard: context cannot be nil")

	// ErrEmptyTarget 目标名为空
	ErrEmptyTarget = errors.New("xguard: target cannot be empty")

	// ErrNilOperation 操作为 nil
	ErrNilOperation = errors.New("xguard: operation cannot be nil")

	// ErrRateLimited 被限流闸门拒绝
	ErrRateLimited = errors.New("xguard: rate limited")

	// ErrCircuitOpen 被熔断闸门拒绝
	ErrCircuitOpen = errors.New("xguard: circuit open")

	// ErrBulkheadRejected 被舱壁闸门拒绝（等待许可超时）
	ErrBulkheadRejected = errors.New("xguard: bulkhead rejected")
)

// RejectionError 闸门拒绝错误
//
// 操作未被执行。Unwrap 返回对应的哨兵错误，调用方可用
// errors.Is 判断拒绝类别并转换为面向消费者的非致命错误。
type RejectionError struct {
	// Target 被拒绝的目标
	Target string

	// RetryAfter 建议的重试等待时间，0 表示无建议
	RetryAfter time.Duration

	sentinel error
}

// newRejection 创建拒绝错误
func newRejection(target string, sentinel error, retryAfter time.Duration) *RejectionError {
	return &RejectionError{
		Target:     target,
		RetryAfter: retryAfter,
		sentinel:   sentinel,
	}
}

// Error 实现 error 接口
func (e *RejectionError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%v: target %s; retry in %s", e.sentinel, e.Target, e.RetryAfter)
	}
	return fmt.Sprintf("%v: target %s", e.sentinel, e.Target)
}

// Unwrap 返回哨兵错误
func (e *RejectionError) Unwrap() error {
	return e.sentinel
}

// IsRejection 判断错误是否为闸门拒绝
func IsRejection(err error) bool {
	var rej *RejectionError
	return errors.As(err, &rej)
}

// BlockedError 策略性拦截结果
//
// 操作已被放行执行，但在内部被策略（权限、审计等）明确拒绝。
// 这类结果对熔断器是中性的：既不计成功也不计失败。
type BlockedError struct {
	err error
}

// Blocked 将策略性拦截包装为中性结果
//
// 在被治理的操作内返回 Blocked(err)，熔断器不会将其计入失败。
func Blocked(err error) error {
	if err == nil {
		return nil
	}
	return &BlockedError{err: err}
}

// Error 实现 error 接口
func (e *BlockedError) Error() string {
	return "xguard: policy blocked: " + e.err.Error()
}

// Unwrap 返回被包装的拦截原因
func (e *BlockedError) Unwrap() error {
	return e.err
}

// IsBlocked 判断错误是否为策略性拦截
func IsBlocked(err error) bool {
	var blocked *BlockedError
	return errors.As(err, &blocked)
}
