package xbreaker

// State 熔断器状态
type State int

const (
	// StateClosed 关闭状态，调用正常放行
	StateClosed State = iota
	// StateHalfOpen 半开状态，只放行一个探测调用
	StateHalfOpen
	// StateOpen 打开状态，调用直接拒绝
	StateOpen
)

// String 返回状态的可读名称
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
