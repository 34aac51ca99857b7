package xbreaker

import "errors"

// ErrOpenState 熔断器处于打开状态，调用被拒绝
var ErrOpenState = errors.New("xbreaker: circuit breaker is open")
