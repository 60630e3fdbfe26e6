package resilience

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/kart-io/formfill/pkg/infra/middleware/internal/pathutil"
	llmresilience "github.com/kart-io/formfill/pkg/llm/resilience"
	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
	"github.com/kart-io/formfill/pkg/utils/errors"
	"github.com/kart-io/formfill/pkg/utils/response"
)

// CircuitBreaker 返回熔断器中间件，复用 llm/resilience 的熔断器实现。
//
// timeout 单位为秒。示例：
//
//	router.Use(CircuitBreaker(5, 60, 1))
func CircuitBreaker(maxFailures int, timeout, halfOpenMaxCalls int) gin.HandlerFunc {
	return CircuitBreakerWithOptions(mwopts.CircuitBreakerOptions{
		MaxFailures:      maxFailures,
		Timeout:          timeout,
		HalfOpenMaxCalls: halfOpenMaxCalls,
		ErrorThreshold:   500, // 5xx 计为失败
	})
}

// CircuitBreakerWithOptions 返回带配置选项的熔断器中间件。
//
// 状态码 >= ErrorThreshold 的响应计为一次失败；失败数达到
// MaxFailures 后熔断器打开，后续请求直接返回 503，直到超时后
// 进入半开状态放行探测请求。
//
// 注意：
//   - 熔断器状态是进程内的，不跨实例共享
//   - SkipPaths/SkipPathPrefixes 命中的请求不参与计数
func CircuitBreakerWithOptions(opts mwopts.CircuitBreakerOptions) gin.HandlerFunc {
	skip := pathutil.NewPathMatcher(opts.SkipPaths, opts.SkipPathPrefixes)
	breaker := llmresilience.NewCircuitBreaker(&llmresilience.CircuitBreakerConfig{
		MaxFailures:      opts.MaxFailures,
		Timeout:          opts.GetTimeout(),
		HalfOpenMaxCalls: opts.HalfOpenMaxCalls,
	})

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skip(path) {
			c.Next()
			return
		}

		err := breaker.Execute(func() (execErr error) {
			defer func() {
				if r := recover(); r != nil {
					// panic 也计为一次失败，然后重新抛出让 Recovery
					// 中间件带着完整堆栈去处理。
					execErr = errors.ErrInternal
					logger.Errorw("circuit breaker caught panic",
						"panic", r,
						"path", path,
					)
					panic(r)
				}
			}()

			c.Next()

			status := c.Writer.Status()
			if status == 0 {
				status = http.StatusOK
			}
			if status >= opts.ErrorThreshold {
				logger.Debugw("circuit breaker detected error response",
					"path", path,
					"status_code", status,
					"threshold", opts.ErrorThreshold,
				)
				return errors.ErrInternal
			}
			return nil
		})

		if err == llmresilience.ErrCircuitBreakerOpen {
			logger.Warnw("circuit breaker open, rejecting request",
				"path", path,
				"state", breaker.State().String(),
				"stats", breaker.Stats(),
			)
			response.Fail(c, errors.ErrServiceUnavailable)
		}
	}
}
