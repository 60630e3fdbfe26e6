package observability

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/formfill/pkg/infra/middleware/internal/pathutil"
	"github.com/kart-io/formfill/pkg/infra/middleware/requestutil"
	"github.com/kart-io/formfill/pkg/infra/tracing"
)

const (
	// TracerName is the name of the tracer for HTTP middleware.
	TracerName = "github.com/kart-io/formfill/pkg/infra/middleware"
)

// TracingOptions configures the tracing middleware.
type TracingOptions struct {
	// TracerName is the name to use for the tracer.
	// Default: TracerName constant
	TracerName string

	// SpanNameFormatter formats the span name from the request.
	// Default: "{http.method} {http.route}"
	SpanNameFormatter func(ctx *gin.Context) string

	// IncludeRequestBody enables capturing request body in span attributes.
	// WARNING: This can expose sensitive data. Use with caution.
	IncludeRequestBody bool

	// IncludeResponseBody enables capturing response body in span attributes.
	// WARNING: This can expose sensitive data. Use with caution.
	IncludeResponseBody bool

	// SkipPaths is a list of paths to skip tracing.
	SkipPaths []string

	// SkipPathPrefixes is a list of path prefixes to skip tracing.
	SkipPathPrefixes []string

	// AttributeExtractor extracts custom attributes from the request.
	AttributeExtractor func(ctx *gin.Context) []attribute.KeyValue
}

// TracingOption is a functional option for TracingOptions.
type TracingOption func(*TracingOptions)

// NewTracingOptions creates default tracing options.
func NewTracingOptions() *TracingOptions {
	return &TracingOptions{
		TracerName:          TracerName,
		SpanNameFormatter:   defaultSpanNameFormatter,
		IncludeRequestBody:  false,
		IncludeResponseBody: false,
		SkipPaths:           []string{},
		SkipPathPrefixes:    []string{},
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(o *TracingOptions) {
		o.TracerName = name
	}
}

// WithSpanNameFormatter sets the span name formatter.
func WithSpanNameFormatter(formatter func(ctx *gin.Context) string) TracingOption {
	return func(o *TracingOptions) {
		o.SpanNameFormatter = formatter
	}
}

// WithRequestBodyCapture enables request body capture.
func WithRequestBodyCapture(enabled bool) TracingOption {
	return func(o *TracingOptions) {
		o.IncludeRequestBody = enabled
	}
}

// WithResponseBodyCapture enables response body capture.
func WithResponseBodyCapture(enabled bool) TracingOption {
	return func(o *TracingOptions) {
		o.IncludeResponseBody = enabled
	}
}

// WithTracingSkipPaths sets paths to skip tracing.
func WithTracingSkipPaths(paths []string) TracingOption {
	return func(o *TracingOptions) {
		o.SkipPaths = paths
	}
}

// WithTracingSkipPathPrefixes sets path prefixes to skip tracing.
func WithTracingSkipPathPrefixes(prefixes []string) TracingOption {
	return func(o *TracingOptions) {
		o.SkipPathPrefixes = prefixes
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(ctx *gin.Context) []attribute.KeyValue) TracingOption {
	return func(o *TracingOptions) {
		o.AttributeExtractor = extractor
	}
}

// Tracing creates a tracing middleware.
//
// This middleware:
// - Extracts trace context from incoming requests (W3C Trace Context)
// - Creates a new span for each request
// - Adds standard HTTP attributes (method, URL, status code, etc.)
// - Propagates trace context through the request lifecycle
// - Records errors in spans for 4xx/5xx responses
func Tracing(opts ...TracingOption) gin.HandlerFunc {
	options := NewTracingOptions()
	for _, opt := range opts {
		opt(options)
	}

	skipPath := pathutil.NewPathMatcher(options.SkipPaths, options.SkipPathPrefixes)
	propagator := tracing.GetGlobalTextMapPropagator()

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if skipPath(path) {
			c.Next()
			return
		}

		// 从上游请求头提取 W3C trace context
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		tracer := tracing.GetGlobalTracerProvider().Tracer(options.TracerName)

		spanName := options.SpanNameFormatter(c)
		ctx, span := tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				semconv.HTTPMethod(c.Request.Method),
				semconv.HTTPURL(c.Request.URL.String()),
				semconv.HTTPRoute(c.FullPath()),
				semconv.UserAgentOriginal(c.Request.UserAgent()),
				attribute.String("http.client_ip", c.ClientIP()),
			),
		)
		defer span.End()

		if requestID := requestutil.GetRequestID(c.Request.Context()); requestID != "" {
			span.SetAttributes(attribute.String("http.request_id", requestID))
		}

		if options.AttributeExtractor != nil {
			span.SetAttributes(options.AttributeExtractor(c)...)
		}

		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(semconv.HTTPStatusCode(status))

		switch {
		case status >= http.StatusInternalServerError:
			span.SetStatus(codes.Error, fmt.Sprintf("server error: %d", status))
		case status >= http.StatusBadRequest:
			span.SetStatus(codes.Error, fmt.Sprintf("client error: %d", status))
		default:
			span.SetStatus(codes.Ok, "")
		}

		if len(c.Errors) > 0 {
			span.RecordError(c.Errors.Last())
		}
	}
}

// defaultSpanNameFormatter formats span names as "{method} {route}",
// falling back to the raw URL path before route matching.
func defaultSpanNameFormatter(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = c.Request.URL.Path
	}
	return c.Request.Method + " " + route
}

// ExtractTraceID returns the current trace ID, or empty if no span is
// recording.
func ExtractTraceID(c *gin.Context) string {
	spanCtx := trace.SpanContextFromContext(c.Request.Context())
	if !spanCtx.HasTraceID() {
		return ""
	}
	return spanCtx.TraceID().String()
}

// ExtractSpanID returns the current span ID, or empty if no span is
// recording.
func ExtractSpanID(c *gin.Context) string {
	spanCtx := trace.SpanContextFromContext(c.Request.Context())
	if !spanCtx.HasSpanID() {
		return ""
	}
	return spanCtx.SpanID().String()
}

// tracingResponseWriter records the response status code for span
// attributes when a handler writes through net/http directly.
type tracingResponseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (w *tracingResponseWriter) WriteHeader(statusCode int) {
	if !w.wroteHeader {
		w.statusCode = statusCode
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *tracingResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b)
}
