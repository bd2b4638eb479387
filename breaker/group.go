package breaker

import (
	"context"
	"sync"

	"google.golang.org/grpc"
)

// Group 键控熔断组接口
//
// 按键（通常是服务名或方法名）惰性创建并复用熔断器，同一个键
// 始终命中同一个熔断器实例，不同键的熔断状态彼此独立。
// 所有熔断器共享同一份配置与选项。
type Group interface {
	// Execute 使用指定键的熔断器执行受保护的函数
	// 键对应的熔断器不存在时自动创建
	Execute(ctx context.Context, key string, fn func() (interface{}, error)) (interface{}, error)

	// State 获取指定键的熔断器状态
	// 键不存在时返回 ErrBreakerNotFound
	State(key string) (State, error)

	// Metrics 获取指定键的熔断器统计快照
	Metrics(key string) (Metrics, error)

	// Reset 重置指定键的熔断器
	Reset(key string) error

	// UnaryClientInterceptor 返回 gRPC 一元调用客户端拦截器
	UnaryClientInterceptor(opts ...InterceptorOption) grpc.UnaryClientInterceptor

	// StreamClientInterceptor 返回 gRPC 流式调用客户端拦截器
	StreamClientInterceptor(opts ...InterceptorOption) grpc.StreamClientInterceptor
}

// group 熔断组实现
type group struct {
	cfg      *Config
	opt      *options
	breakers sync.Map // key -> *circuitBreaker
}

// NewGroup 创建熔断组
// cfg 和 opts 作为组内所有熔断器的模板，配置在此一次性校验
func NewGroup(cfg *Config, opts ...Option) (Group, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &group{
		cfg: cfg,
		opt: applyOptions(opts...),
	}, nil
}

// getOrCreate 获取或创建指定键的熔断器
func (g *group) getOrCreate(key string) *circuitBreaker {
	if cb, ok := g.breakers.Load(key); ok {
		return cb.(*circuitBreaker)
	}

	cfg := *g.cfg
	cfg.Name = key
	actual, _ := g.breakers.LoadOrStore(key, newCircuitBreaker(&cfg, g.opt))
	return actual.(*circuitBreaker)
}

func (g *group) Execute(ctx context.Context, key string, fn func() (interface{}, error)) (interface{}, error) {
	if key == "" {
		return nil, ErrKeyEmpty
	}
	return g.getOrCreate(key).Execute(ctx, fn)
}

func (g *group) State(key string) (State, error) {
	if key == "" {
		return StateClosed, ErrKeyEmpty
	}
	cb, ok := g.breakers.Load(key)
	if !ok {
		return StateClosed, ErrBreakerNotFound
	}
	return cb.(*circuitBreaker).State(), nil
}

func (g *group) Metrics(key string) (Metrics, error) {
	if key == "" {
		return Metrics{}, ErrKeyEmpty
	}
	cb, ok := g.breakers.Load(key)
	if !ok {
		return Metrics{}, ErrBreakerNotFound
	}
	return cb.(*circuitBreaker).Metrics(), nil
}

func (g *group) Reset(key string) error {
	if key == "" {
		return ErrKeyEmpty
	}
	cb, ok := g.breakers.Load(key)
	if !ok {
		return ErrBreakerNotFound
	}
	cb.(*circuitBreaker).Reset()
	return nil
}
