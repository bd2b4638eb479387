package breaker

import (
	"fmt"

	"github.com/apiratorjs/circuit-breaker/xerrors"
)

// 预定义错误
var (
	// ErrConfigNil 配置为空
	ErrConfigNil = xerrors.New("breaker: config is nil")

	// ErrInvalidConfig 配置不合法
	ErrInvalidConfig = xerrors.New("breaker: invalid configuration")

	// ErrKeyEmpty 键为空
	ErrKeyEmpty = xerrors.New("breaker: key is empty")

	// ErrBreakerNotFound 指定键的熔断器不存在
	ErrBreakerNotFound = xerrors.New("breaker: no breaker for key")

	// ErrOpenState 熔断器处于打开状态，调用被拒绝
	// 实际返回的错误是 *OpenError，可用 errors.Is(err, ErrOpenState) 判断
	ErrOpenState = xerrors.New("breaker: circuit breaker is open")

	// ErrResultType 执行结果（通常来自降级函数）无法转换为期望的类型
	ErrResultType = xerrors.New("breaker: unexpected result type")
)

// wrapInvalidConfig 构造带字段说明的配置错误
func wrapInvalidConfig(reason string) error {
	return xerrors.Wrap(ErrInvalidConfig, reason)
}

// OpenError 熔断拒绝错误
//
// Cause 携带触发（或维持）熔断的最近一次底层失败，调用方可直接得知
// 拒绝的原因而无需额外查询。Cause 可能为空（如手动 Reset 后又被打开前
// 的边界状态不会出现，但防御性地允许）。
//
// errors.Is(err, ErrOpenState) 恒为 true；errors.Is / errors.As 同样可以
// 匹配到 Cause 链上的错误。
type OpenError struct {
	// Cause 最近一次底层操作失败
	Cause error
}

// Error 实现 error 接口
func (e *OpenError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: last failure: %s", ErrOpenState.Error(), e.Cause.Error())
	}
	return ErrOpenState.Error()
}

// Is 使 errors.Is(err, ErrOpenState) 成立
func (e *OpenError) Is(target error) bool {
	return target == ErrOpenState
}

// Unwrap 暴露底层失败，支持 errors.Is / errors.As 继续下钻
func (e *OpenError) Unwrap() error {
	return e.Cause
}
