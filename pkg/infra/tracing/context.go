package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SpanFromContext returns the current span, or a non-recording span
// when the context carries none.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// StartSpan starts a span on the named tracer.
func StartSpan(ctx context.Context, tracerName, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, opts...)
}

// StartSpanWithKind starts a span with an explicit span kind.
func StartSpanWithKind(ctx context.Context, tracerName, spanName string, kind trace.SpanKind, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append(opts, trace.WithSpanKind(kind))
	return StartSpan(ctx, tracerName, spanName, opts...)
}

// AddSpanAttributes attaches attributes to the context's span. No-op
// without an active span.
func AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// AddSpanEvent adds a named event to the context's span.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}

// RecordError records err on the context's span and marks the span as
// failed. nil errors are ignored.
func RecordError(ctx context.Context, err error, opts ...trace.EventOption) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err, opts...)
	span.SetStatus(codes.Error, err.Error())
}

// SetSpanStatus sets the status of the context's span.
func SetSpanStatus(ctx context.Context, code codes.Code, description string) {
	trace.SpanFromContext(ctx).SetStatus(code, description)
}

// SetSpanOK marks the context's span as successful.
func SetSpanOK(ctx context.Context) {
	trace.SpanFromContext(ctx).SetStatus(codes.Ok, "")
}

// WithSpanContext copies the span from spanCtx onto parent, for
// propagating trace context into detached goroutines.
func WithSpanContext(parent, spanCtx context.Context) context.Context {
	return trace.ContextWithSpan(parent, trace.SpanFromContext(spanCtx))
}

// TraceIDFromContext returns the active trace ID, or "" when no trace
// is in flight.
func TraceIDFromContext(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanIDFromContext returns the active span ID, or "" when no span is
// in flight.
func SpanIDFromContext(ctx context.Context) string {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.SpanID().String()
}

// IsRecording reports whether the context's span records events.
func IsRecording(ctx context.Context) bool {
	return trace.SpanFromContext(ctx).IsRecording()
}

// String creates a string attribute.
func String(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// Int creates an int attribute.
func Int(key string, value int) attribute.KeyValue {
	return attribute.Int(key, value)
}

// Float64 creates a float64 attribute.
func Float64(key string, value float64) attribute.KeyValue {
	return attribute.Float64(key, value)
}

// Bool creates a bool attribute.
func Bool(key string, value bool) attribute.KeyValue {
	return attribute.Bool(key, value)
}

// StringSlice creates a string slice attribute.
func StringSlice(key string, value []string) attribute.KeyValue {
	return attribute.StringSlice(key, value)
}

// Any stringifies an arbitrary value into a string attribute.
func Any(key string, value interface{}) attribute.KeyValue {
	return attribute.String(key, fmt.Sprint(value))
}

// Attribute keys used across the fill pipeline.
const (
	// HTTP attributes
	HTTPMethod     = "http.method"
	HTTPRoute      = "http.route"
	HTTPStatusCode = "http.status_code"
	HTTPClientIP   = "http.client_ip"
	HTTPRequestID  = "http.request_id"

	// Vector store attributes
	DBSystem    = "db.system"
	DBName      = "db.name"
	DBOperation = "db.operation"

	// Error attributes
	ErrorType    = "error.type"
	ErrorMessage = "error.message"

	// Application attributes
	TenantID      = "tenant.id"
	SourceID      = "source.id"
	DocumentID    = "document.id"
	FieldSelector = "field.selector"
	FieldType     = "field.type"
	ChunkCount    = "chunk.count"
	LLMProvider   = "llm.provider"
	RequestID     = "request.id"
)
