package breaker

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/apiratorjs/circuit-breaker/clog"
)

// UnaryClientInterceptor 返回 gRPC 一元调用客户端拦截器
// 为每个 gRPC 调用提供熔断保护，熔断拒绝转换为 codes.Unavailable
//
// 组上配置的降级函数不作用于拦截器：gRPC 调用被拒绝时 reply 不会被
// 填充，任何降级结果都无处安放，拒绝一律以 Unavailable 上报。
//
// 使用示例:
//
//	grp, _ := breaker.NewGroup(cfg, breaker.WithLogger(logger))
//	conn, _ := grpc.NewClient(
//		"localhost:9001",
//		grpc.WithUnaryInterceptor(grp.UnaryClientInterceptor()),
//	)
func (g *group) UnaryClientInterceptor(opts ...InterceptorOption) grpc.UnaryClientInterceptor {
	cfg := defaultInterceptorConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, callOpts ...grpc.CallOption) error {
		key := cfg.keyFunc(ctx, method, cc)

		g.opt.logger.Debug("unary call with circuit breaker",
			clog.String("key", key),
			clog.String("method", method))

		// 不计入失败的错误在闭包里吞掉，通过 skipped 带回给调用方
		var invoked bool
		var skipped error
		_, err := g.Execute(ctx, key, func() (interface{}, error) {
			invoked = true
			callErr := invoker(ctx, method, req, reply, cc, callOpts...)
			if callErr != nil && !cfg.shouldCount(callErr) {
				skipped = callErr
				return nil, nil
			}
			return nil, callErr
		})

		// invoker 没有被触达说明调用被熔断拒绝，不管降级函数
		// 返回了什么都不能当成功上报：reply 还是空的
		if !invoked {
			return status.Error(codes.Unavailable, "circuit breaker open")
		}
		if skipped != nil {
			return skipped
		}
		return err
	}
}

// StreamClientInterceptor 返回 gRPC 流式调用客户端拦截器
// 熔断只保护流的建立，流上的后续收发不计入熔断统计
func (g *group) StreamClientInterceptor(opts ...InterceptorOption) grpc.StreamClientInterceptor {
	cfg := defaultInterceptorConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(ctx context.Context, desc *grpc.StreamDesc, cc *grpc.ClientConn, method string, streamer grpc.Streamer, callOpts ...grpc.CallOption) (grpc.ClientStream, error) {
		key := cfg.keyFunc(ctx, method, cc)

		g.opt.logger.Debug("stream call with circuit breaker",
			clog.String("key", key),
			clog.String("method", method))

		var invoked bool
		var skipped error
		result, err := g.Execute(ctx, key, func() (interface{}, error) {
			invoked = true
			stream, callErr := streamer(ctx, desc, cc, method, callOpts...)
			if callErr != nil && !cfg.shouldCount(callErr) {
				skipped = callErr
				return nil, nil
			}
			return stream, callErr
		})

		// streamer 没有被触达即熔断拒绝，降级结果无法替代真实的流
		if !invoked {
			return nil, status.Error(codes.Unavailable, "circuit breaker open")
		}
		if skipped != nil {
			return nil, skipped
		}
		if err != nil {
			return nil, err
		}

		stream, ok := result.(grpc.ClientStream)
		if !ok {
			return nil, status.Error(codes.Unavailable, "circuit breaker open")
		}
		return stream, nil
	}
}
