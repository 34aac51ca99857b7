package xmetrics

// 汇总字段名常量
//
// 与指标名一样属于对外契约。
const (
	// SummaryMCPRejectionsTotal 三类拒绝的总和
	SummaryMCPRejectionsTotal = "summary.mcp_rejections_total"

	// SummaryMCPRejectionRatio 拒绝占比
	SummaryMCPRejectionRatio = "summary.mcp_rejection_ratio"
)

// Summary 治理拒绝情况的派生汇总
type Summary struct {
	// MCPRejectionsTotal 限流、舱壁、熔断三类拒绝的总和
	MCPRejectionsTotal int64

	// MCPRejectionRatio 拒绝数 / (执行数 + 拒绝数)
	// 分母为 0 时取 0
	MCPRejectionRatio float64
}

// Summarize 从快照派生汇总指标
//
// 比率的分母是"执行数 + 拒绝数"，即所有到达治理层的调用；
// 只用执行数做分母会在全拒绝场景下产生无意义的比率。
func Summarize(s Snapshot) Summary {
	total := s.Counter(MetricMCPRateLimitedRejections) +
		s.Counter(MetricMCPBulkheadRejections) +
		s.Counter(MetricMCPCircuitOpenRejections)

	var ratio float64
	if denom := s.Counter(MetricMCPCalls) + total; denom > 0 {
		ratio = float64(total) / float64(denom)
	}

	return Summary{
		MCPRejectionsTotal: total,
		MCPRejectionRatio:  ratio,
	}
}
