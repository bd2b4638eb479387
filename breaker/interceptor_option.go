package breaker

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// InterceptorOption 拦截器选项函数类型
type InterceptorOption func(*interceptorConfig)

// interceptorConfig 拦截器内部配置（非导出）
type interceptorConfig struct {
	keyFunc KeyFunc

	// shouldCount 判断哪些错误应计入失败
	// 默认: codes.Unavailable, codes.DeadlineExceeded, codes.Internal, codes.Unknown
	// 以及所有非 gRPC 状态错误；不计入失败的错误原样返回给调用方
	shouldCount func(error) bool
}

// WithKeyFunc 设置 Key 生成函数
func WithKeyFunc(fn KeyFunc) InterceptorOption {
	return func(cfg *interceptorConfig) {
		cfg.keyFunc = fn
	}
}

// WithServiceLevelKey 使用服务级别 Key（默认）
func WithServiceLevelKey() InterceptorOption {
	return WithKeyFunc(ServiceLevelKey())
}

// WithMethodLevelKey 使用方法级别 Key
func WithMethodLevelKey() InterceptorOption {
	return WithKeyFunc(MethodLevelKey())
}

// WithBackendLevelKey 使用后端级别 Key
// 推荐用于负载均衡场景，实现后端级别的熔断隔离
func WithBackendLevelKey() InterceptorOption {
	return WithKeyFunc(BackendLevelKey())
}

// WithCompositeKey 使用组合 Key（目标 + 后端）
func WithCompositeKey() InterceptorOption {
	return WithKeyFunc(CompositeKey(TargetLevelKey(), BackendLevelKey()))
}

// WithShouldCount 自定义失败判断逻辑
func WithShouldCount(fn func(error) bool) InterceptorOption {
	return func(cfg *interceptorConfig) {
		cfg.shouldCount = fn
	}
}

// defaultInterceptorConfig 返回默认拦截器配置
func defaultInterceptorConfig() *interceptorConfig {
	return &interceptorConfig{
		keyFunc: ServiceLevelKey(),
		shouldCount: func(err error) bool {
			if err == nil {
				return false
			}
			st, ok := status.FromError(err)
			if !ok {
				return true
			}
			// 只统计这些错误码，业务错误（如 NotFound）不触发熔断
			code := st.Code()
			return code == codes.Unavailable ||
				code == codes.DeadlineExceeded ||
				code == codes.Internal ||
				code == codes.Unknown
		},
	}
}
