package breaker

import "time"

// Clock 时间源接口
//
// 熔断器的恢复计时依赖当前时间，通过该接口注入可在测试中使用假时钟
// 精确控制时间推进。生产代码无需关心，默认使用系统时钟。
type Clock interface {
	Now() time.Time
}

// realClock 系统时钟
type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}
