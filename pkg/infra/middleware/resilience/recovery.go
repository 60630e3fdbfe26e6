package resilience

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
	"github.com/kart-io/formfill/pkg/utils/errors"
	"github.com/kart-io/formfill/pkg/utils/response"
)

// PanicHandler 在中间件完成日志记录之后被调用，可用于接入告警。
// stack 为 debug.Stack() 捕获的完整堆栈。
type PanicHandler func(ctx *gin.Context, err interface{}, stack []byte)

// Recovery returns a middleware that recovers from panics with default options.
func Recovery() gin.HandlerFunc {
	return RecoveryWithOptions(*mwopts.NewRecoveryOptions(), nil)
}

// RecoveryWithOptions 返回捕获 panic 并转换为统一错误响应的中间件。
//
// opts 为纯配置（可 JSON 序列化），onPanic 为可选回调：
//
//	middleware.RecoveryWithOptions(opts, func(ctx *gin.Context, err interface{}, stack []byte) {
//	    alerting.SendPanicAlert(err, stack)
//	})
//
// 生产环境下（APP_ENV/GO_ENV 为 production/prod）即使开启了
// EnableStackTrace，堆栈也不会返回给客户端，只写入日志。
func RecoveryWithOptions(opts mwopts.RecoveryOptions, onPanic PanicHandler) gin.HandlerFunc {
	stackToClient := opts.EnableStackTrace
	if stackToClient && productionEnv() {
		logger.Warn("Stack trace is enabled but running in production environment. " +
			"Stack trace will NOT be returned to clients for security reasons. " +
			"Full stack trace will still be logged.")
		stackToClient = false
	}

	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			stack := debug.Stack()

			logger.Errorw("panic recovered",
				"panic", r,
				"stack_trace", string(stack),
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
			)

			if onPanic != nil {
				onPanic(c, r, stack)
			}

			response.Fail(c, panicErrno(r, stack, stackToClient))
		}()
		c.Next()
	}
}

func productionEnv() bool {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("GO_ENV")
	}
	switch env {
	case "production", "prod", "PRODUCTION", "PROD":
		return true
	}
	return false
}

// panicErrno 构造返回给客户端的错误；堆栈只在显式开启且非生产环境时附带。
func panicErrno(panicValue interface{}, stack []byte, includeStack bool) *errors.Errno {
	if includeStack {
		return errors.ErrPanic.WithMessage(fmt.Sprintf("panic: %v\n%s", panicValue, string(stack)))
	}
	return errors.ErrPanic.WithMessage(fmt.Sprintf("panic: %v", panicValue))
}
