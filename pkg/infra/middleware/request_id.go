package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/formfill/pkg/infra/middleware/requestutil"
	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
	"github.com/kart-io/formfill/pkg/utils/id"
)

// HeaderXRequestID is the header carrying the request ID.
const HeaderXRequestID = requestutil.HeaderXRequestID

// GetRequestID returns the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestutil.GetRequestID(ctx)
}

// RequestID returns a middleware that assigns each request an ID with
// default options.
func RequestID() gin.HandlerFunc {
	return RequestIDWithOptions(*mwopts.NewRequestIDOptions(), nil)
}

// RequestIDWithOptions 返回一个使用纯配置选项和运行时依赖注入的 RequestID 中间件。
// 这是推荐的 API，适用于配置中心场景。
//
// 已携带 ID 的请求保留原值，便于跨服务调用链路追踪。生成的 ID 同时
// 写入响应头和请求上下文，下游中间件（如 Logger）从上下文读取。
//
// 参数：
//   - opts: 纯配置选项（可 JSON 序列化）
//   - generator: 可选的自定义 ID 生成函数；为 nil 时按 GeneratorType
//     选择内置生成器
func RequestIDWithOptions(opts mwopts.RequestIDOptions, generator func() string) gin.HandlerFunc {
	header := opts.Header
	if header == "" {
		header = HeaderXRequestID
	}

	if generator == nil {
		switch opts.GeneratorType {
		case "ulid":
			generator = id.NewULID
		default:
			generator = requestutil.GenerateRequestID
		}
	}

	return func(c *gin.Context) {
		requestID := c.Request.Header.Get(header)
		if requestID == "" {
			requestID = generator()
		}

		c.Request = c.Request.WithContext(requestutil.WithRequestID(c.Request.Context(), requestID))
		c.Writer.Header().Set(header, requestID)

		c.Next()
	}
}
