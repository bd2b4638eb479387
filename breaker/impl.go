package breaker

import (
	"context"
	"sync"
	"time"

	"github.com/apiratorjs/circuit-breaker/clog"
	"github.com/apiratorjs/circuit-breaker/metrics"
	"github.com/apiratorjs/circuit-breaker/xerrors"
)

// circuitBreaker 熔断器实现
//
// 状态机的全部决策都在互斥锁内完成，底层操作在锁外执行，
// 慢调用不会阻塞其他调用的准入判断。
type circuitBreaker struct {
	name          string
	cfg           *Config
	logger        clog.Logger
	inst          *instruments
	fallback      FallbackFunc
	onStateChange StateChangeFunc
	clock         Clock

	mu sync.Mutex

	// 状态机字段（mu 保护）
	state           State
	failureCount    uint32 // Closed 下的连续失败数
	successCount    uint32 // HalfOpen 下的连续成功数
	lastErr         error  // 最近一次底层失败
	lastFailureTime time.Time
	lastChangeTime  time.Time

	// 累计统计（mu 保护，只增不减）
	totalCalls      uint64
	successfulCalls uint64
	failedCalls     uint64
	rejectedCalls   uint64
}

// newCircuitBreaker 创建熔断器实现（内部使用，调用方负责校验配置）
func newCircuitBreaker(cfg *Config, opt *options) *circuitBreaker {
	return &circuitBreaker{
		name:          cfg.Name,
		cfg:           cfg,
		logger:        opt.logger,
		inst:          newInstruments(opt.meter, opt.logger),
		fallback:      opt.fallback,
		onStateChange: opt.onStateChange,
		clock:         opt.clock,
		state:         StateClosed,
	}
}

// Execute 执行受熔断保护的函数
func (cb *circuitBreaker) Execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	start := cb.clock.Now()

	// 准入判断（含懒惰半开探测），被拒绝时 fn 不会被触达
	if err := cb.allow(); err != nil {
		cb.recordMetrics(ctx, resultReject, 0)
		cb.logger.Debug("call rejected by open circuit breaker",
			clog.String("name", cb.name))
		if cb.fallback != nil {
			cb.logger.Info("circuit breaker open, invoking fallback",
				clog.String("name", cb.name))
			return cb.fallback(ctx, err)
		}
		return nil, err
	}

	// 锁外执行底层操作
	result, err := fn()

	duration := cb.clock.Now().Sub(start)
	if err != nil {
		cb.afterFailure(err)
		cb.recordMetrics(ctx, resultFailure, duration)
		return result, err
	}

	cb.afterSuccess()
	cb.recordMetrics(ctx, resultSuccess, duration)
	return result, nil
}

// State 获取当前状态
//
// 只读快照，不触发恢复探测；Open 超过 BreakDuration 后在下一次
// Execute 之前仍然报告 Open。
func (cb *circuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Metrics 获取调用统计快照
func (cb *circuitBreaker) Metrics() Metrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return Metrics{
		State:               cb.state,
		TotalCalls:          cb.totalCalls,
		SuccessfulCalls:     cb.successfulCalls,
		FailedCalls:         cb.failedCalls,
		RejectedCalls:       cb.rejectedCalls,
		LastFailureTime:     cb.lastFailureTime,
		LastStateChangeTime: cb.lastChangeTime,
	}
}

// Reset 手动重置为 Closed 状态
func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	cb.failureCount = 0
	cb.successCount = 0
	cb.lastErr = nil
	change := cb.transitionTo(StateClosed, nil)
	cb.mu.Unlock()

	cb.notifyStateChange(change)
	cb.logger.Info("circuit breaker manually reset",
		clog.String("name", cb.name))
}

// allow 准入判断
// 返回 nil 表示放行（已计入 totalCalls），否则返回 *OpenError
func (cb *circuitBreaker) allow() error {
	cb.mu.Lock()

	var change *stateChange
	if cb.state == StateOpen {
		// 懒惰恢复探测：距最近一次失败超过 BreakDuration 则先切到半开
		if cb.clock.Now().Sub(cb.lastFailureTime) >= cb.cfg.BreakDuration {
			cb.successCount = 0
			change = cb.transitionTo(StateHalfOpen, nil)
		} else {
			cb.totalCalls++
			cb.rejectedCalls++
			err := &OpenError{Cause: cb.lastErr}
			cb.mu.Unlock()
			return err
		}
	}

	cb.totalCalls++
	cb.mu.Unlock()

	cb.notifyStateChange(change)
	return nil
}

// afterSuccess 记录一次成功
func (cb *circuitBreaker) afterSuccess() {
	cb.mu.Lock()

	cb.successfulCalls++

	var change *stateChange
	switch cb.state {
	case StateClosed:
		// 成功打断连续失败
		cb.failureCount = 0
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.cfg.SuccessThreshold {
			// 完全恢复，清空历史失败
			cb.failureCount = 0
			cb.successCount = 0
			cb.lastErr = nil
			change = cb.transitionTo(StateClosed, nil)
		}
	}
	cb.mu.Unlock()

	cb.notifyStateChange(change)
}

// afterFailure 记录一次失败
func (cb *circuitBreaker) afterFailure(err error) {
	cb.mu.Lock()

	cb.failedCalls++
	cb.lastErr = err
	cb.lastFailureTime = cb.clock.Now()

	var change *stateChange
	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.cfg.FailureThreshold {
			cb.failureCount = 0
			change = cb.transitionTo(StateOpen, err)
		}
	case StateHalfOpen:
		// 半开下任何一次失败立即重新打开
		cb.failureCount = 0
		cb.successCount = 0
		change = cb.transitionTo(StateOpen, err)
	}
	// Open 状态下在途调用的失败只更新统计，不触发变更
	cb.mu.Unlock()

	cb.notifyStateChange(change)
}

// stateChange 一次已提交的状态变更
type stateChange struct {
	from, to State
	cause    error
}

// transitionTo 提交状态变更（调用方必须持有 mu）
// 同状态变更是空操作，返回 nil；日志、指标与回调由调用方
// 在释放锁之后通过 notifyStateChange 完成
func (cb *circuitBreaker) transitionTo(to State, cause error) *stateChange {
	if cb.state == to {
		return nil
	}
	from := cb.state
	cb.state = to
	cb.lastChangeTime = cb.clock.Now()
	return &stateChange{from: from, to: to, cause: cause}
}

// notifyStateChange 上报一次状态变更
// 在锁外执行，回调内可以安全地调用 State/Metrics
func (cb *circuitBreaker) notifyStateChange(change *stateChange) {
	if change == nil {
		return
	}

	if change.to == StateOpen {
		cb.logger.Warn("circuit breaker opened",
			clog.String("name", cb.name),
			clog.String("from_state", change.from.String()),
			clog.Error(change.cause))
	} else {
		cb.logger.Info("circuit breaker state changed",
			clog.String("name", cb.name),
			clog.String("from_state", change.from.String()),
			clog.String("to_state", change.to.String()))
	}

	if cb.inst != nil {
		cb.inst.stateChanges.Inc(context.Background(),
			metrics.L(LabelName, cb.name),
			metrics.L(LabelFromState, change.from.String()),
			metrics.L(LabelToState, change.to.String()))
		cb.inst.state.Set(context.Background(), float64(change.to),
			metrics.L(LabelName, cb.name))
	}

	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, change.from, change.to, change.cause)
	}
}

// recordMetrics 上报单次调用的指标
func (cb *circuitBreaker) recordMetrics(ctx context.Context, result string, duration time.Duration) {
	if cb.inst == nil {
		return
	}

	nameLabel := metrics.L(LabelName, cb.name)
	cb.inst.requests.Inc(ctx, nameLabel, metrics.L(LabelResult, result))

	switch result {
	case resultSuccess:
		cb.inst.successes.Inc(ctx, nameLabel)
	case resultFailure:
		cb.inst.failures.Inc(ctx, nameLabel)
	case resultReject:
		cb.inst.rejects.Inc(ctx, nameLabel)
	}

	if result != resultReject {
		cb.inst.duration.Record(ctx, duration.Seconds(), nameLabel)
	}
}

// IsOpenError 判断错误是否为熔断拒绝
func IsOpenError(err error) bool {
	return xerrors.Is(err, ErrOpenState)
}
