package breaker

import (
	"context"

	"github.com/apiratorjs/circuit-breaker/clog"
	"github.com/apiratorjs/circuit-breaker/metrics"
)

// FallbackFunc 降级函数类型
// 熔断器打开时调用，err 为本次的 *OpenError（可下钻到底层失败）
// 返回值直接作为 Execute 的结果，可用于返回缓存数据或默认值
type FallbackFunc func(ctx context.Context, err error) (interface{}, error)

// StateChangeFunc 状态变更回调类型
// 每次状态变更同步触发一次，err 为引起变更的失败（进入 Open 时非空）
//
// 回调在状态变更提交后、内部锁之外执行，回调内可以调用同一熔断器的
// State/Metrics 等方法。回调中的 panic 会向上传播到触发变更的调用方。
type StateChangeFunc func(name string, from, to State, err error)

// Option 定义熔断器的可选配置
type Option func(*options)

// options 熔断器选项集合
type options struct {
	logger        clog.Logger
	meter         metrics.Meter
	fallback      FallbackFunc
	onStateChange StateChangeFunc
	clock         Clock
}

// WithLogger 设置日志记录器
func WithLogger(logger clog.Logger) Option {
	return func(o *options) {
		if logger == nil {
			o.logger = clog.Discard()
			return
		}
		o.logger = logger.WithNamespace("breaker")
	}
}

// WithMeter 设置指标记录器，上报调用量、耗时与状态变更
func WithMeter(meter metrics.Meter) Option {
	return func(o *options) {
		o.meter = meter
	}
}

// WithFallback 设置熔断打开时的降级函数
// 未设置时熔断拒绝直接返回 *OpenError（快速失败）
func WithFallback(fn FallbackFunc) Option {
	return func(o *options) {
		o.fallback = fn
	}
}

// WithOnStateChange 设置状态变更回调
func WithOnStateChange(fn StateChangeFunc) Option {
	return func(o *options) {
		o.onStateChange = fn
	}
}

// WithClock 设置时间源，主要用于测试
func WithClock(clock Clock) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// applyOptions 应用选项并填充默认值
func applyOptions(opts ...Option) *options {
	o := &options{
		logger: clog.Discard(),
		clock:  realClock{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
