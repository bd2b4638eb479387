package breaker

import (
	"context"

	"github.com/apiratorjs/circuit-breaker/xerrors"
)

// Do 通过熔断器执行一次带类型结果的调用
// 这是 Execute 的泛型便捷封装，免去调用方的类型断言
//
// 降级函数返回的结果同样要求能转换为 T，否则返回包装了
// ErrResultType 的错误，不会伪造零值成功。
func Do[T any](ctx context.Context, b Breaker, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	result, err := b.Execute(ctx, func() (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	v, ok := result.(T)
	if !ok {
		return zero, xerrors.Wrapf(ErrResultType, "got %T", result)
	}
	return v, nil
}

// Wrap 将熔断器绑定到一个函数，返回签名相同的替代函数
// 通过替代函数发起的所有调用共享同一个熔断器实例
//
//	charge := breaker.Wrap[*Receipt](brk, client.Charge)
//	receipt, err := charge(ctx)
func Wrap[T any](b Breaker, fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		return Do(ctx, b, fn)
	}
}
