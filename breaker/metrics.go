package breaker

// 指标名称常量
const (
	// MetricRequestsTotal 请求总数（含被拒绝的）
	MetricRequestsTotal = "breaker_requests_total"

	// MetricSuccessTotal 成功请求数
	MetricSuccessTotal = "breaker_success_total"

	// MetricFailuresTotal 失败请求数
	MetricFailuresTotal = "breaker_failures_total"

	// MetricRejectsTotal 被熔断拒绝的请求数
	MetricRejectsTotal = "breaker_rejects_total"

	// MetricStateChanges 状态变更次数
	MetricStateChanges = "breaker_state_changes_total"

	// MetricState 当前状态（0=closed, 1=half_open, 2=open）
	MetricState = "breaker_state"

	// MetricRequestDuration 请求耗时分布
	MetricRequestDuration = "breaker_request_duration_seconds"
)

// 指标标签常量
const (
	// LabelName 熔断器名称（熔断组中为键）
	LabelName = "name"

	// LabelFromState 变更前状态
	LabelFromState = "from_state"

	// LabelToState 变更后状态
	LabelToState = "to_state"

	// LabelMethod gRPC 方法名
	LabelMethod = "method"

	// LabelResult 调用结果 (success/failure/reject)
	LabelResult = "result"
)

// 调用结果取值
const (
	resultSuccess = "success"
	resultFailure = "failure"
	resultReject  = "reject"
)
