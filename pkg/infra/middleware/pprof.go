// Package middleware provides pprof endpoint registration.
package middleware

import (
	"net/http/pprof"
	"runtime"

	"github.com/gin-gonic/gin"
	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
)

// RegisterPprofRoutesWithOptions registers pprof handlers under the
// configured prefix. The index handler also serves the named runtime
// profiles (heap, goroutine, block, mutex, allocs, threadcreate).
//
// 生产环境默认关闭；开启时应配合访问控制，profile 数据会暴露内部信息。
func RegisterPprofRoutesWithOptions(engine *gin.Engine, opts mwopts.PprofOptions) {
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "/debug/pprof"
	}

	if opts.BlockProfileRate > 0 {
		runtime.SetBlockProfileRate(opts.BlockProfileRate)
	}
	if opts.MutexProfileFraction > 0 {
		runtime.SetMutexProfileFraction(opts.MutexProfileFraction)
	}

	group := engine.Group(prefix)

	group.GET("/", gin.WrapF(pprof.Index))
	group.GET("/:profile", func(c *gin.Context) {
		// pprof.Index 只识别固定前缀，命名 profile 直接按名称查找
		pprof.Handler(c.Param("profile")).ServeHTTP(c.Writer, c.Request)
	})

	if opts.EnableCmdline {
		group.GET("/cmdline", gin.WrapF(pprof.Cmdline))
	}
	if opts.EnableProfile {
		group.GET("/profile", gin.WrapF(pprof.Profile))
	}
	if opts.EnableSymbol {
		group.GET("/symbol", gin.WrapF(pprof.Symbol))
		group.POST("/symbol", gin.WrapF(pprof.Symbol))
	}
	if opts.EnableTrace {
		group.GET("/trace", gin.WrapF(pprof.Trace))
	}
}
