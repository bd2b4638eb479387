package breaker

import (
	"github.com/apiratorjs/circuit-breaker/clog"
	"github.com/apiratorjs/circuit-breaker/metrics"
)

// instruments 熔断器使用的指标集合
// 构造时一次性创建，避免每次调用都走 Meter 的实例化路径
type instruments struct {
	requests     metrics.Counter
	successes    metrics.Counter
	failures     metrics.Counter
	rejects      metrics.Counter
	stateChanges metrics.Counter
	state        metrics.Gauge
	duration     metrics.Histogram
}

// newInstruments 创建指标集合
// meter 为空时返回 nil，指标上报整体降级为空操作；
// 单个指标创建失败只记日志，不影响熔断器工作
func newInstruments(meter metrics.Meter, logger clog.Logger) *instruments {
	if meter == nil {
		return nil
	}

	var err error
	inst := &instruments{}

	if inst.requests, err = meter.Counter(MetricRequestsTotal, "熔断器请求总数"); err != nil {
		logger.Warn("failed to create breaker metrics", clog.Error(err))
		return nil
	}
	if inst.successes, err = meter.Counter(MetricSuccessTotal, "熔断器成功请求数"); err != nil {
		logger.Warn("failed to create breaker metrics", clog.Error(err))
		return nil
	}
	if inst.failures, err = meter.Counter(MetricFailuresTotal, "熔断器失败请求数"); err != nil {
		logger.Warn("failed to create breaker metrics", clog.Error(err))
		return nil
	}
	if inst.rejects, err = meter.Counter(MetricRejectsTotal, "熔断器拒绝请求数"); err != nil {
		logger.Warn("failed to create breaker metrics", clog.Error(err))
		return nil
	}
	if inst.stateChanges, err = meter.Counter(MetricStateChanges, "熔断器状态变更次数"); err != nil {
		logger.Warn("failed to create breaker metrics", clog.Error(err))
		return nil
	}
	if inst.state, err = meter.Gauge(MetricState, "熔断器当前状态"); err != nil {
		logger.Warn("failed to create breaker metrics", clog.Error(err))
		return nil
	}
	if inst.duration, err = meter.Histogram(MetricRequestDuration, "熔断器请求耗时", metrics.WithUnit("s")); err != nil {
		logger.Warn("failed to create breaker metrics", clog.Error(err))
		return nil
	}

	return inst
}
