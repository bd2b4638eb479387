package breaker

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GinMiddleware 创建 Gin 熔断中间件
// 保护出站依赖之前先保护自己：处理函数返回 5xx 计为一次失败，
// 熔断打开后直接返回 503，不再进入处理链
//
// 组上配置的降级函数不作用于中间件：HTTP 响应由处理链写出，
// 拒绝一律以 503 应答
//
// 参数:
//   - grp: 熔断组实例
//   - keyFunc: 从请求中提取熔断键的函数，如果为 nil，默认使用请求路径
//
// 使用示例:
//
//	r := gin.New()
//	r.Use(breaker.GinMiddleware(grp, nil))
func GinMiddleware(grp Group, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return GinMiddlewareWithFailure(grp, keyFunc, nil)
}

// GinMiddlewareWithFailure 创建带自定义失败判定的 Gin 熔断中间件
// isFailure 为 nil 时默认把 5xx 响应计为失败
func GinMiddlewareWithFailure(
	grp Group,
	keyFunc func(*gin.Context) string,
	isFailure func(*gin.Context) bool,
) gin.HandlerFunc {
	if keyFunc == nil {
		// 默认使用请求路径作为熔断键
		keyFunc = func(c *gin.Context) string {
			return c.Request.URL.Path
		}
	}
	if isFailure == nil {
		isFailure = func(c *gin.Context) bool {
			return c.Writer.Status() >= http.StatusInternalServerError
		}
	}

	return func(c *gin.Context) {
		key := keyFunc(c)
		if key == "" {
			// 无法提取键，放行
			c.Next()
			return
		}

		var ran bool
		grp.Execute(c.Request.Context(), key, func() (interface{}, error) {
			ran = true
			c.Next()
			if isFailure(c) {
				return nil, fmt.Errorf("handler failed with status %d", c.Writer.Status())
			}
			return nil, nil
		})

		// 处理链没有执行即熔断拒绝，必须中止并写出 503；
		// 组上的降级函数吞掉拒绝错误也不能放行请求。
		// 失败分支的响应已由处理函数写出，不再处理
		if !ran {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "circuit breaker open",
			})
		}
	}
}
