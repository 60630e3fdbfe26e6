package security

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
)

// 安全响应头名称。
const (
	HeaderXFrameOptions           = "X-Frame-Options"
	HeaderXContentTypeOptions     = "X-Content-Type-Options"
	HeaderXXSSProtection          = "X-XSS-Protection"
	HeaderContentSecurityPolicy   = "Content-Security-Policy"
	HeaderReferrerPolicy          = "Referrer-Policy"
	HeaderStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders 返回使用默认配置的安全响应头中间件。
func SecurityHeaders() gin.HandlerFunc {
	return SecurityHeadersWithOptions(*mwopts.NewSecurityHeadersOptions())
}

// SecurityHeadersWithOptions 按配置为每个响应附加安全头。
//
//	opts := mwopts.NewSecurityHeadersOptions()
//	opts.EnableHSTS = true
//	security.SecurityHeadersWithOptions(*opts)
func SecurityHeadersWithOptions(opts mwopts.SecurityHeadersOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		// HSTS 只在 HTTPS 连接上返回才有意义
		if opts.EnableHSTS && isHTTPSConnection(c) {
			c.Header(HeaderStrictTransportSecurity, buildHSTSValue(opts))
		}
		if opts.EnableFrameOptions {
			c.Header(HeaderXFrameOptions, opts.FrameOptionsValue)
		}
		if opts.EnableContentTypeOptions {
			c.Header(HeaderXContentTypeOptions, "nosniff")
		}
		if opts.EnableXSSProtection {
			c.Header(HeaderXXSSProtection, opts.XSSProtectionValue)
		}
		if opts.ContentSecurityPolicy != "" {
			c.Header(HeaderContentSecurityPolicy, opts.ContentSecurityPolicy)
		}
		if opts.ReferrerPolicy != "" {
			c.Header(HeaderReferrerPolicy, opts.ReferrerPolicy)
		}

		c.Next()
	}
}

func buildHSTSValue(opts mwopts.SecurityHeadersOptions) string {
	hsts := fmt.Sprintf("max-age=%d", opts.HSTSMaxAge)
	if opts.HSTSIncludeSubdomains {
		hsts += "; includeSubDomains"
	}
	if opts.HSTSPreload {
		hsts += "; preload"
	}
	return hsts
}

// isHTTPSConnection 判断请求是否经由 HTTPS：直接 TLS 连接，
// 或反向代理透传的 X-Forwarded-Proto。
func isHTTPSConnection(c *gin.Context) bool {
	if c.Request.TLS != nil {
		return true
	}
	return strings.EqualFold(c.Request.Header.Get("X-Forwarded-Proto"), "https")
}
