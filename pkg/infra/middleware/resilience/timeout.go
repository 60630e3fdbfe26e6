package resilience

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/formfill/pkg/infra/middleware/internal/pathutil"
	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
	"github.com/kart-io/formfill/pkg/utils/errors"
)

// Timeout returns a middleware that limits request processing time.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return TimeoutWithOptions(mwopts.TimeoutOptions{Timeout: timeout})
}

// TimeoutWithOptions 返回一个带配置选项的超时中间件。
// 这是推荐的构造函数,直接使用 pkg/options/middleware.TimeoutOptions。
//
// 处理器在独立 goroutine 中运行，超时后返回 408。SkipPaths 中的
// 路径不受超时约束，适用于流式或长轮询端点。
func TimeoutWithOptions(opts mwopts.TimeoutOptions) gin.HandlerFunc {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	skipPath := pathutil.NewPathMatcher(opts.SkipPaths, nil)

	return func(c *gin.Context) {
		if skipPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), opts.Timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		done := make(chan struct{})
		panicCh := make(chan interface{}, 1)

		go func() {
			defer func() {
				if r := recover(); r != nil {
					panicCh <- fmt.Sprintf("%v\n%s", r, debug.Stack())
				}
			}()
			c.Next()
			close(done)
		}()

		select {
		case <-done:
		case p := <-panicCh:
			// 处理器 panic 在此重新抛出，交给外层 Recovery 中间件
			panic(p)
		case <-ctx.Done():
			logger.Warnw("request timed out",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"timeout", opts.Timeout.String(),
			)
			c.AbortWithStatusJSON(http.StatusRequestTimeout, gin.H{
				"code":    errors.ErrRequestTimeout.Code,
				"message": errors.ErrRequestTimeout.MessageEN,
			})
		}
	}
}
