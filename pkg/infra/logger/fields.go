// Package logger provides structured logging utilities with context propagation.
package logger

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/logger"
	"github.com/kart-io/logger/core"
)

type contextKey int

const (
	loggerFieldsKey contextKey = iota
	contextLoggerKey
)

// loggerFields accumulates structured fields attached to a context.
// Instances are copy-on-write: every mutation clones first, so a child
// context never leaks fields into its parent.
type loggerFields struct {
	fields map[string]interface{}
}

func newLoggerFields() *loggerFields {
	return &loggerFields{fields: make(map[string]interface{})}
}

func (lf *loggerFields) clone() *loggerFields {
	copied := newLoggerFields()
	for k, v := range lf.fields {
		copied.fields[k] = v
	}
	return copied
}

func (lf *loggerFields) set(key string, value interface{}) {
	lf.fields[key] = value
}

func (lf *loggerFields) toSlice() []interface{} {
	if len(lf.fields) == 0 {
		return nil
	}
	slice := make([]interface{}, 0, len(lf.fields)*2)
	for k, v := range lf.fields {
		slice = append(slice, k, v)
	}
	return slice
}

func getLoggerFields(ctx context.Context) *loggerFields {
	if lf, ok := ctx.Value(loggerFieldsKey).(*loggerFields); ok {
		return lf
	}
	return newLoggerFields()
}

func withField(ctx context.Context, key string, value interface{}) context.Context {
	lf := getLoggerFields(ctx).clone()
	lf.set(key, value)
	return context.WithValue(ctx, loggerFieldsKey, lf)
}

// WithRequestID attaches request_id to the context logger fields.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return withField(ctx, "request_id", requestID)
}

// WithTraceID attaches trace_id manually, for callers outside the
// OpenTelemetry propagation path.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	if traceID == "" {
		return ctx
	}
	return withField(ctx, "trace_id", traceID)
}

// WithSpanID attaches span_id manually.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	if spanID == "" {
		return ctx
	}
	return withField(ctx, "span_id", spanID)
}

// WithTenantID attaches tenant_id. Every log line emitted while
// serving a tenant's request should carry this.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	if tenantID == "" {
		return ctx
	}
	return withField(ctx, "tenant_id", tenantID)
}

// WithSourceID attaches source_id, identifying the document an
// indexing operation is working on.
func WithSourceID(ctx context.Context, sourceID string) context.Context {
	if sourceID == "" {
		return ctx
	}
	return withField(ctx, "source_id", sourceID)
}

// WithError attaches error_message and error_type fields.
func WithError(ctx context.Context, err error) context.Context {
	if err == nil {
		return ctx
	}
	lf := getLoggerFields(ctx).clone()
	lf.set("error_message", err.Error())
	lf.set("error_type", fmt.Sprintf("%T", err))
	return context.WithValue(ctx, loggerFieldsKey, lf)
}

// WithErrorCode attaches a business error code.
func WithErrorCode(ctx context.Context, code string) context.Context {
	if code == "" {
		return ctx
	}
	return withField(ctx, "error_code", code)
}

// WithFields attaches multiple fields given as key-value pairs. A
// trailing unpaired argument is dropped.
func WithFields(ctx context.Context, keysAndValues ...interface{}) context.Context {
	if len(keysAndValues) == 0 {
		return ctx
	}
	if len(keysAndValues)%2 != 0 {
		keysAndValues = keysAndValues[:len(keysAndValues)-1]
	}

	lf := getLoggerFields(ctx).clone()
	for i := 0; i < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			lf.set(key, keysAndValues[i+1])
		}
	}
	return context.WithValue(ctx, loggerFieldsKey, lf)
}

// ExtractOpenTelemetryFields copies trace_id/span_id from the active
// span into the logger fields. Middleware calls this once per request.
func ExtractOpenTelemetryFields(ctx context.Context) context.Context {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return ctx
	}

	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ctx
	}

	lf := getLoggerFields(ctx).clone()
	if spanCtx.HasTraceID() {
		lf.set("trace_id", spanCtx.TraceID().String())
	}
	if spanCtx.HasSpanID() {
		lf.set("span_id", spanCtx.SpanID().String())
	}
	if spanCtx.IsSampled() {
		lf.set("trace_sampled", true)
	}
	return context.WithValue(ctx, loggerFieldsKey, lf)
}

// GetContextFields returns all logger fields as a key-value slice,
// nil when the context has none.
func GetContextFields(ctx context.Context) []interface{} {
	return getLoggerFields(ctx).toSlice()
}

// GetLogger returns a logger carrying all fields stored in the
// context. A logger placed via WithLogger wins over field assembly.
func GetLogger(ctx context.Context) core.Logger {
	if ctxLogger, ok := ctx.Value(contextLoggerKey).(core.Logger); ok {
		return ctxLogger
	}

	baseLogger := logger.Global()
	fields := GetContextFields(ctx)
	if len(fields) == 0 {
		return baseLogger
	}
	return baseLogger.With(fields...)
}

// WithLogger stores a pre-configured logger in the context for reuse
// across a request's lifecycle.
func WithLogger(ctx context.Context, log core.Logger) context.Context {
	return context.WithValue(ctx, contextLoggerKey, log)
}
