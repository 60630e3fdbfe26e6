package resilience

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/formfill/pkg/infra/middleware/internal/pathutil"
	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
	"github.com/kart-io/formfill/pkg/utils/errors"
	"github.com/kart-io/formfill/pkg/utils/response"
)

// BodyLimit 返回请求体大小限制中间件，防止超大请求体耗尽服务资源。
//
//	router.Use(BodyLimit(10 * 1024 * 1024)) // 限制 10MB
func BodyLimit(maxSize int64) gin.HandlerFunc {
	return BodyLimitWithOptions(mwopts.BodyLimitOptions{MaxSize: maxSize})
}

// BodyLimitWithOptions 返回带配置的请求体大小限制中间件。
//
// Content-Length 超限的请求被直接拒绝，不读取任何数据；
// 其余请求通过 http.MaxBytesReader 在实际读取时强制限制，
// 因此伪造的 Content-Length 也无法绕过。
// 文档上传等需要大请求体的路径配置到 SkipPaths 中单独处理。
// 必须排在任何读取请求体的中间件之前。
func BodyLimitWithOptions(opts mwopts.BodyLimitOptions) gin.HandlerFunc {
	if opts.MaxSize <= 0 {
		opts.MaxSize = 4 * 1024 * 1024
	}

	pathMatcher := pathutil.NewPathMatcher(opts.SkipPaths, opts.SkipPathPrefixes)

	return func(c *gin.Context) {
		req := c.Request

		if pathMatcher(req.URL.Path) {
			c.Next()
			return
		}

		if req.ContentLength > opts.MaxSize {
			logger.Warnw("request body too large (Content-Length check)",
				"path", req.URL.Path,
				"content_length", req.ContentLength,
				"max_size", opts.MaxSize,
			)
			response.Fail(c, errors.ErrRequestTooLarge)
			return
		}

		req.Body = http.MaxBytesReader(c.Writer, req.Body, opts.MaxSize)
		c.Next()
	}
}
