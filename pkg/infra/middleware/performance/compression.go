package performance

import (
	"bufio"
	"compress/gzip"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/formfill/pkg/infra/middleware/internal/pathutil"
	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
)

// defaultCompressTypes 是未显式配置时参与压缩的 Content-Type。
// 已压缩内容（图片、视频）不在其中，再压一遍只会浪费 CPU。
var defaultCompressTypes = []string{
	"application/json",
	"application/javascript",
	"text/html",
	"text/css",
	"text/plain",
	"text/xml",
}

// Compression 返回 gzip 响应压缩中间件。level 取 1-9，推荐 6：
//
//	router.Use(Compression(6))
func Compression(level int) gin.HandlerFunc {
	return CompressionWithOptions(mwopts.CompressionOptions{
		Level: level,
	})
}

// CompressionWithOptions 返回带配置选项的响应压缩中间件。
//
// 只有客户端 Accept-Encoding 包含 gzip、响应 Content-Type 在
// Types 列表中、且响应体不小于 MinSize 时才压缩。压缩时会移除
// Content-Length 并设置 Content-Encoding 与 Vary 头。
//
// 该中间件应排在业务处理之后（低优先级），压缩换带宽是以
// CPU 为代价的。
func CompressionWithOptions(opts mwopts.CompressionOptions) gin.HandlerFunc {
	if opts.Level == 0 {
		opts.Level = 6
	}
	if opts.MinSize == 0 {
		opts.MinSize = 1024
	}
	types := opts.Types
	if len(types) == 0 {
		types = defaultCompressTypes
	}
	compressTypes := make(map[string]bool, len(types))
	for _, ct := range types {
		compressTypes[ct] = true
	}

	skip := pathutil.NewPathMatcher(opts.SkipPaths, opts.SkipPathPrefixes)

	// gzip.Writer 分配不便宜，池化复用。
	gzipPool := sync.Pool{
		New: func() interface{} {
			gz, _ := gzip.NewWriterLevel(io.Discard, opts.Level)
			return gz
		},
	}

	return func(c *gin.Context) {
		if skip(c.Request.URL.Path) {
			c.Next()
			return
		}
		if !strings.Contains(c.Request.Header.Get("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gw := &gzipResponseWriter{
			ResponseWriter: c.Writer,
			minSize:        opts.MinSize,
			compressTypes:  compressTypes,
			gzipPool:       &gzipPool,
		}

		// gin.Context 不提供替换 ResponseWriter 的入口，
		// 依赖框架适配层让后续处理器走这个包装 writer。
		c.Next()

		gw.Close()
	}
}

// gzipResponseWriter 按 Content-Type 和响应大小决定是否压缩。
type gzipResponseWriter struct {
	http.ResponseWriter
	gzipWriter     *gzip.Writer
	gzipPool       *sync.Pool
	minSize        int
	compressTypes  map[string]bool
	written        int
	headerWritten  bool
	shouldCompress bool
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	if w.headerWritten {
		return
	}
	w.headerWritten = true

	w.shouldCompress = w.compressTypes[mediaType(w.Header().Get("Content-Type"))]
	if w.shouldCompress {
		// 压缩后长度未知，Content-Length 必须去掉；
		// Vary 告知缓存层响应随 Accept-Encoding 变化。
		w.Header().Del("Content-Length")
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Set("Vary", "Accept-Encoding")
	}

	w.ResponseWriter.WriteHeader(code)
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	if !w.shouldCompress {
		return w.ResponseWriter.Write(b)
	}

	w.written += len(b)

	if w.gzipWriter == nil {
		// 首次写入时按已知大小做一次性判定：小响应直接放弃
		// 压缩并撤掉相关头。不做跨 Write 的缓冲。
		if w.written < w.minSize {
			w.Header().Del("Content-Encoding")
			w.Header().Del("Vary")
			w.shouldCompress = false
			return w.ResponseWriter.Write(b)
		}
		gz := w.gzipPool.Get().(*gzip.Writer)
		gz.Reset(w.ResponseWriter)
		w.gzipWriter = gz
	}

	return w.gzipWriter.Write(b)
}

// Close 结束压缩流并把 gzip.Writer 归还池中。
func (w *gzipResponseWriter) Close() error {
	if w.gzipWriter == nil {
		return nil
	}
	err := w.gzipWriter.Close()
	w.gzipPool.Put(w.gzipWriter)
	w.gzipWriter = nil
	return err
}

// Flush 实现 http.Flusher，支持流式响应。
func (w *gzipResponseWriter) Flush() {
	if w.gzipWriter != nil {
		_ = w.gzipWriter.Flush()
	}
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack 实现 http.Hijacker，支持 WebSocket 升级。
func (w *gzipResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// mediaType 去掉 Content-Type 的参数部分（如 charset），空值按
// text/plain 处理。
func mediaType(contentType string) string {
	if contentType == "" {
		return "text/plain"
	}
	if idx := strings.IndexByte(contentType, ';'); idx > 0 {
		contentType = contentType[:idx]
	}
	return strings.TrimSpace(contentType)
}
