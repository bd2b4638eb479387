// Package breaker 提供了熔断器组件，专注于远程调用的故障隔离与自动恢复。
//
// breaker 是治理层的核心组件，它提供了：
// - 基于连续失败计数的三态熔断状态机（Closed / Open / HalfOpen）
// - 时间驱动的懒惰恢复探测（无后台定时器，由下一次调用触发）
// - 携带原始错误的熔断拒绝（可用 errors.Is / errors.As 区分）
// - 状态变更回调与完整的调用统计快照
// - 键控熔断组（按服务名独立熔断）与 gRPC / Gin 无侵入集成
// - 灵活的降级策略（快速失败或自定义降级逻辑）
//
// ## 基本使用
//
//	// 创建熔断器
//	brk, _ := breaker.New(&breaker.Config{
//		Name:             "payment-gateway",
//		FailureThreshold: 5,
//		SuccessThreshold: 2,
//		BreakDuration:    30 * time.Second,
//	}, breaker.WithLogger(logger))
//
//	result, err := brk.Execute(ctx, func() (interface{}, error) {
//		return client.Charge(ctx, amount)
//	})
//	if errors.Is(err, breaker.ErrOpenState) {
//		// 服务被熔断，走降级路径
//	}
//
// ## 状态机
//
// Closed 是初始状态，调用正常通过，连续失败达到 FailureThreshold 次后进入
// Open；Open 状态下所有调用立即被拒绝，不会触达底层操作；距最近一次失败
// 超过 BreakDuration 后，下一次调用会先把状态切到 HalfOpen 再执行；HalfOpen
// 下连续成功 SuccessThreshold 次关闭熔断器，任何一次失败立即重新打开。
//
// ## 降级策略
//
//	// 自定义降级逻辑
//	brk, _ := breaker.New(cfg,
//		breaker.WithLogger(logger),
//		breaker.WithFallback(func(ctx context.Context, err error) (interface{}, error) {
//			// 返回缓存数据或默认值
//			return cached, nil
//		}),
//	)
//
// ## gRPC 集成
//
//	grp, _ := breaker.NewGroup(cfg, breaker.WithLogger(logger))
//	conn, _ := grpc.NewClient(
//		"localhost:9001",
//		grpc.WithUnaryInterceptor(grp.UnaryClientInterceptor()),
//	)
package breaker

import (
	"context"
	"time"

	"github.com/apiratorjs/circuit-breaker/clog"
)

// ========================================
// 接口定义 (Interface Definitions)
// ========================================

// Breaker 熔断器核心接口
//
// 一个 Breaker 实例保护一个目标操作，可被多个 goroutine 并发使用。
type Breaker interface {
	// Execute 执行受熔断保护的函数
	// fn: 要执行的函数，每次调用至多被触达一次
	// 返回: 函数执行结果和错误；熔断拒绝时返回包装了最近一次失败的 *OpenError
	Execute(ctx context.Context, fn func() (interface{}, error)) (interface{}, error)

	// State 获取当前熔断器状态
	State() State

	// Metrics 获取调用统计快照
	Metrics() Metrics

	// Reset 手动重置熔断器状态为 Closed，清空所有连续计数
	// 用于运维场景的强制恢复，累计统计不受影响
	Reset()
}

// State 熔断器状态
type State int

const (
	// StateClosed 闭合状态（正常）
	StateClosed State = iota
	// StateHalfOpen 半开状态（探测恢复）
	StateHalfOpen
	// StateOpen 打开状态（熔断中）
	StateOpen
)

// String 返回状态的字符串表示
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half_open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Metrics 调用统计快照
//
// 累计计数只增不减，仅用于诊断，不参与状态机决策。
// TotalCalls = SuccessfulCalls + FailedCalls + RejectedCalls 在每次调用
// 完成后恒成立（进行中的调用先计入 TotalCalls）。
type Metrics struct {
	// State 快照时刻的熔断器状态
	State State

	// TotalCalls 全部调用数（含被拒绝的）
	TotalCalls uint64

	// SuccessfulCalls 成功调用数
	SuccessfulCalls uint64

	// FailedCalls 失败调用数
	FailedCalls uint64

	// RejectedCalls 被熔断拒绝的调用数
	RejectedCalls uint64

	// LastFailureTime 最近一次失败的时间，恢复计时以此为锚点
	LastFailureTime time.Time

	// LastStateChangeTime 最近一次状态变更的时间
	LastStateChangeTime time.Time
}

// ========================================
// 配置定义 (Configuration)
// ========================================

// Config 熔断器配置
//
// 三个阈值都必须为正数，New 会在构造时校验，不合法的配置立即返回
// 包装了 ErrInvalidConfig 的错误。
type Config struct {
	// Name 熔断器名称，用于日志和指标标签（可选）
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// FailureThreshold Closed 状态下触发熔断所需的连续失败次数
	FailureThreshold uint32 `json:"failure_threshold" yaml:"failure_threshold" mapstructure:"failure_threshold"`

	// SuccessThreshold HalfOpen 状态下关闭熔断器所需的连续成功次数
	SuccessThreshold uint32 `json:"success_threshold" yaml:"success_threshold" mapstructure:"success_threshold"`

	// BreakDuration Open 状态的最短持续时间
	// 距最近一次失败超过该时长后，下一次调用会触发半开探测
	BreakDuration time.Duration `json:"break_duration" yaml:"break_duration" mapstructure:"break_duration"`
}

// validate 校验配置（内部使用）
func (c *Config) validate() error {
	if c.FailureThreshold == 0 {
		return wrapInvalidConfig("failure_threshold must be greater than zero")
	}
	if c.SuccessThreshold == 0 {
		return wrapInvalidConfig("success_threshold must be greater than zero")
	}
	if c.BreakDuration <= 0 {
		return wrapInvalidConfig("break_duration must be greater than zero")
	}
	return nil
}

// ========================================
// 工厂函数 (Factory Functions)
// ========================================

// New 创建熔断器实例
// 这是标准的工厂函数，支持在不依赖其他容器的情况下独立实例化
//
// 参数:
//   - cfg: 熔断器配置，nil 时返回 ErrConfigNil
//   - opts: 可选参数 (Logger, Meter, Fallback, OnStateChange, Clock)
//
// 使用示例:
//
//	brk, _ := breaker.New(&breaker.Config{
//		FailureThreshold: 5,
//		SuccessThreshold: 2,
//		BreakDuration:    30 * time.Second,
//	}, breaker.WithLogger(logger))
func New(cfg *Config, opts ...Option) (Breaker, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// 应用选项
	opt := applyOptions(opts...)

	if opt.logger != nil {
		opt.logger.Info("creating circuit breaker",
			clog.String("name", cfg.Name),
			clog.Int("failure_threshold", int(cfg.FailureThreshold)),
			clog.Int("success_threshold", int(cfg.SuccessThreshold)),
			clog.Duration("break_duration", cfg.BreakDuration))
	}

	return newCircuitBreaker(cfg, opt), nil
}
