package observability

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	applogger "github.com/kart-io/formfill/pkg/infra/logger"
	"github.com/kart-io/formfill/pkg/infra/middleware/requestutil"
	loggeropts "github.com/kart-io/formfill/pkg/options/logger"
)

// responseWriter wraps http.ResponseWriter and records status code,
// bytes written, and optionally a copy of the body.
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int64
	body         *bytes.Buffer
	captureBody  bool
}

func newResponseWriter(w http.ResponseWriter, captureBody bool) *responseWriter {
	rw := &responseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK, // implicit status when WriteHeader never fires
		captureBody:    captureBody,
	}
	if captureBody {
		rw.body = &bytes.Buffer{}
	}
	return rw
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += int64(n)
	if rw.captureBody && rw.body != nil {
		rw.body.Write(b)
	}
	return n, err
}

// Status returns the captured status code.
func (rw *responseWriter) Status() int {
	return rw.statusCode
}

// BytesWritten returns the number of bytes written.
func (rw *responseWriter) BytesWritten() int64 {
	return rw.bytesWritten
}

// Body returns the captured response body.
func (rw *responseWriter) Body() string {
	if rw.body == nil {
		return ""
	}
	return rw.body.String()
}

// healthPaths are always skipped when SkipHealthChecks is on.
var healthPaths = map[string]bool{
	"/health":  true,
	"/healthz": true,
	"/livez":   true,
	"/readyz":  true,
}

// EnhancedLogger returns an http.Handler middleware that logs requests with
// optional body capture, sensitive-data redaction, and level selection by
// status code (5xx error, 4xx warn, otherwise info). A nil config uses
// defaults.
func EnhancedLogger(opts *loggeropts.EnhancedLoggerConfig) func(http.Handler) http.Handler {
	if opts == nil {
		opts = loggeropts.NewEnhancedLoggerConfig()
	}

	bufPool := sync.Pool{
		New: func() interface{} {
			return new(bytes.Buffer)
		},
	}

	skipped := func(path string) bool {
		if opts.SkipHealthChecks && healthPaths[path] {
			return true
		}
		for _, p := range opts.SkipPaths {
			if path == p {
				return true
			}
		}
		return false
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skipped(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()

			var reqBody []byte
			if opts.LogRequestBody && r.Body != nil {
				buf := bufPool.Get().(*bytes.Buffer)
				buf.Reset()
				if _, err := io.Copy(buf, r.Body); err == nil {
					reqBody = buf.Bytes()
					// the handler chain still needs to read the body
					r.Body = io.NopCloser(bytes.NewBuffer(reqBody))
				}
				bufPool.Put(buf)
			}

			rw := newResponseWriter(w, opts.LogResponseBody)
			next.ServeHTTP(rw, r)

			traceID := r.Header.Get(requestutil.HeaderTraceID)
			if traceID == "" {
				traceID = r.Header.Get("X-Request-ID")
			}

			fields := []interface{}{
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"ip", requestutil.GetClientIP(r),
				"status", rw.statusCode,
				"size", rw.bytesWritten,
				"duration", time.Since(start),
				"user_agent", r.UserAgent(),
			}
			if traceID != "" {
				fields = append(fields, "trace_id", traceID)
			}

			if len(opts.CaptureHeaders) > 0 {
				headers := make(map[string]string)
				for _, h := range opts.CaptureHeaders {
					val := r.Header.Get(h)
					if val == "" {
						continue
					}
					if sensitiveHeader(h, opts.SensitiveHeaders) {
						val = "[REDACTED]"
					}
					headers[h] = val
				}
				if len(headers) > 0 {
					fields = append(fields, "headers", headers)
				}
			}

			if len(reqBody) > 0 {
				fields = append(fields, "request_body", loggableBody(string(reqBody), opts))
			}
			if rw.captureBody && rw.body != nil && rw.body.Len() > 0 {
				fields = append(fields, "response_body", loggableBody(rw.body.String(), opts))
			}

			logger := applogger.GetLogger(context.Background())
			switch {
			case rw.statusCode >= 500:
				logger.Errorw("HTTP Request", fields...)
			case rw.statusCode >= 400:
				logger.Warnw("HTTP Request", fields...)
			default:
				logger.Infow("HTTP Request", fields...)
			}
		})
	}
}

// loggableBody redacts sensitive content and truncates to MaxBodyLogSize.
func loggableBody(body string, opts *loggeropts.EnhancedLoggerConfig) string {
	out := redactSensitiveData(body, opts.SensitiveHeaders)
	if len(out) > opts.MaxBodyLogSize {
		out = out[:opts.MaxBodyLogSize] + "...(truncated)"
	}
	return out
}

// sensitiveHeader reports whether a header name matches one of the
// sensitive patterns, case-insensitively.
func sensitiveHeader(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, pattern := range patterns {
		if lower == strings.ToLower(pattern) {
			return true
		}
	}
	return false
}

// redactSensitiveData replaces the whole payload when it mentions any of the
// given patterns. Coarse on purpose: field-level redaction would require
// parsing arbitrary bodies.
func redactSensitiveData(data string, patterns []string) string {
	lower := strings.ToLower(data)
	for _, pattern := range patterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return "[REDACTED]"
		}
	}
	return data
}
