package xmetrics

// 稳定指标名常量
//
// 这些名字被外部报表界面消费，属于对外契约，不可改名。
const (
	// MetricHTTPRequests HTTP 请求总数
	MetricHTTPRequests = "http_requests"

	// MetricRequestOK 处理成功的请求数
	MetricRequestOK = "request_ok"

	// MetricRequestError 处理失败的请求数
	MetricRequestError = "request_error"

	// MetricLLMCompletions LLM 补全调用总数
	MetricLLMCompletions = "llm_completions"

	// MetricLLMInputTokens LLM 输入 token 总数
	MetricLLMInputTokens = "llm_input_tokens"

	// MetricLLMOutputTokens LLM 输出 token 总数
	MetricLLMOutputTokens = "llm_output_tokens"

	// MetricToolExecutions 工具执行总数
	MetricToolExecutions = "tool_executions"

	// MetricToolSuccess 工具执行成功数
	MetricToolSuccess = "tool_success"

	// MetricToolError 工具执行失败数
	MetricToolError = "tool_error"

	// MetricToolPolicyBlocks 被策略拦截的工具调用数
	// 策略拦截不计入工具可靠性，也不计入熔断器失败
	MetricToolPolicyBlocks = "tool_policy_blocks"

	// MetricMCPCalls 实际执行的受治理 MCP 调用数
	// 仅在操作真正执行时递增，被拒绝的调用不计入
	MetricMCPCalls = "mcp_calls"

	// MetricMCPRateLimitedRejections 限流拒绝数
	MetricMCPRateLimitedRejections = "mcp_rate_limited_rejections"

	// MetricMCPBulkheadRejections 舱壁拒绝数（等待超时）
	MetricMCPBulkheadRejections = "mcp_bulkhead_rejections"

	// MetricMCPCircuitOpenRejections 熔断拒绝数
	MetricMCPCircuitOpenRejections = "mcp_circuit_open_rejections"

	// GaugeActiveSessions 当前活跃会话数
	GaugeActiveSessions = "active_sessions"
)

// DefaultCounterNames 返回全部稳定计数器名
//
// 每次调用返回新切片，调用者可安全修改。
func DefaultCounterNames() []string {
	return []string{
		MetricHTTPRequests,
		MetricRequestOK,
		MetricRequestError,
		MetricLLMCompletions,
		MetricLLMInputTokens,
		MetricLLMOutputTokens,
		MetricToolExecutions,
		MetricToolSuccess,
		MetricToolError,
		MetricToolPolicyBlocks,
		MetricMCPCalls,
		MetricMCPRateLimitedRejections,
		MetricMCPBulkheadRejections,
		MetricMCPCircuitOpenRejections,
	}
}

// DefaultGaugeNames 返回全部稳定仪表名
func DefaultGaugeNames() []string {
	return []string{
		GaugeActiveSessions,
	}
}
