package logger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kart-io/logger"
	"github.com/kart-io/logger/option"
)

func fieldsToMap(t *testing.T, fields []interface{}) map[string]interface{} {
	t.Helper()
	m := make(map[string]interface{}, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		require.True(t, ok, "field key at %d is not a string", i)
		m[key] = fields[i+1]
	}
	return m
}

func initTestLogger(t *testing.T) {
	t.Helper()
	opts := option.DefaultLogOption()
	opts.Level = "DEBUG"
	opts.Format = "json"
	log, err := logger.New(opts)
	require.NoError(t, err)
	logger.SetGlobal(log)
}

func TestScalarFieldHelpers(t *testing.T) {
	tests := []struct {
		name   string
		attach func(ctx context.Context) context.Context
		key    string
		want   interface{}
	}{
		{"request id", func(ctx context.Context) context.Context { return WithRequestID(ctx, "req-123") }, "request_id", "req-123"},
		{"trace id", func(ctx context.Context) context.Context { return WithTraceID(ctx, "trace-456") }, "trace_id", "trace-456"},
		{"span id", func(ctx context.Context) context.Context { return WithSpanID(ctx, "span-789") }, "span_id", "span-789"},
		{"tenant id", func(ctx context.Context) context.Context { return WithTenantID(ctx, "tenant-acme") }, "tenant_id", "tenant-acme"},
		{"source id", func(ctx context.Context) context.Context { return WithSourceID(ctx, "cv-2024") }, "source_id", "cv-2024"},
		{"error code", func(ctx context.Context) context.Context { return WithErrorCode(ctx, "21400001") }, "error_code", "21400001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.attach(context.Background())
			m := fieldsToMap(t, GetContextFields(ctx))
			assert.Equal(t, tt.want, m[tt.key])
		})
	}
}

func TestScalarFieldHelpersIgnoreEmpty(t *testing.T) {
	ctx := context.Background()
	ctx = WithRequestID(ctx, "")
	ctx = WithTraceID(ctx, "")
	ctx = WithSpanID(ctx, "")
	ctx = WithTenantID(ctx, "")
	ctx = WithSourceID(ctx, "")
	ctx = WithErrorCode(ctx, "")
	ctx = WithError(ctx, nil)

	assert.Empty(t, GetContextFields(ctx))
}

func TestWithError(t *testing.T) {
	err := errors.New("embedding provider unreachable")
	ctx := WithError(context.Background(), err)

	m := fieldsToMap(t, GetContextFields(ctx))
	assert.Equal(t, err.Error(), m["error_message"])
	assert.Equal(t, fmt.Sprintf("%T", err), m["error_type"])
}

func TestWithFields(t *testing.T) {
	tests := []struct {
		name          string
		keysAndValues []interface{}
		want          map[string]interface{}
	}{
		{
			name:          "even arguments",
			keysAndValues: []interface{}{"tenant_id", "acme", "chunk_count", 7},
			want:          map[string]interface{}{"tenant_id": "acme", "chunk_count": 7},
		},
		{
			name:          "odd arguments drop the trailing key",
			keysAndValues: []interface{}{"tenant_id", "acme", "dangling"},
			want:          map[string]interface{}{"tenant_id": "acme"},
		},
		{
			name:          "no arguments",
			keysAndValues: nil,
			want:          map[string]interface{}{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := WithFields(context.Background(), tt.keysAndValues...)
			assert.Equal(t, tt.want, fieldsToMap(t, GetContextFields(ctx)))
		})
	}
}

func TestFieldIsolationBetweenContexts(t *testing.T) {
	parent := WithTenantID(context.Background(), "tenant-a")
	child := WithSourceID(parent, "cv-1")

	parentFields := fieldsToMap(t, GetContextFields(parent))
	childFields := fieldsToMap(t, GetContextFields(child))

	assert.NotContains(t, parentFields, "source_id")
	assert.Equal(t, "tenant-a", childFields["tenant_id"])
	assert.Equal(t, "cv-1", childFields["source_id"])
}

func TestExtractOpenTelemetryFields(t *testing.T) {
	// noop spans are non-recording, so no trace fields are attached
	tp := noop.NewTracerProvider()
	otel.SetTracerProvider(tp)
	tracer := tp.Tracer("formfill-test")

	ctx, _ := tracer.Start(context.Background(), "fill-request")
	ctx = ExtractOpenTelemetryFields(ctx)

	m := fieldsToMap(t, GetContextFields(ctx))
	assert.NotContains(t, m, "trace_id")
	assert.NotContains(t, m, "span_id")

	bare := ExtractOpenTelemetryFields(context.Background())
	assert.Empty(t, GetContextFields(bare))
}

func TestGetLogger(t *testing.T) {
	initTestLogger(t)

	t.Run("without context fields", func(t *testing.T) {
		assert.NotNil(t, GetLogger(context.Background()))
	})

	t.Run("with context fields", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-123")
		ctx = WithTenantID(ctx, "tenant-acme")
		assert.NotNil(t, GetLogger(ctx))
	})

	t.Run("logger placed via WithLogger wins", func(t *testing.T) {
		custom := logger.Global().With("component", "indexer")
		ctx := WithLogger(context.Background(), custom)
		assert.Equal(t, custom, GetLogger(ctx))
	})
}

func TestContextLogger(t *testing.T) {
	initTestLogger(t)

	t.Run("binds the construction context", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "req-789")
		cl := NewContextLogger(ctx)
		require.NotNil(t, cl)
		assert.Equal(t, ctx, cl.Context())
		assert.NotNil(t, cl.Logger())
	})

	t.Run("WithContext rebinds", func(t *testing.T) {
		cl := NewContextLogger(WithRequestID(context.Background(), "req-001"))
		ctx2 := WithRequestID(context.Background(), "req-002")
		assert.Equal(t, ctx2, cl.WithContext(ctx2).Context())
	})

	t.Run("WithFields returns a child", func(t *testing.T) {
		cl := NewContextLogger(context.Background())
		child := cl.WithFields("tenant_id", "acme")
		require.NotNil(t, child)
		assert.NotSame(t, cl, child)
	})
}

func TestUnwrapError(t *testing.T) {
	inner := errors.New("milvus timeout")
	wrapped := fmt.Errorf("searching chunks: %w", inner)
	doubly := fmt.Errorf("resolving field: %w", wrapped)

	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"nil error", nil, nil},
		{"single error", inner, []string{"milvus timeout"}},
		{
			"wrapped twice",
			doubly,
			[]string{
				"resolving field: searching chunks: milvus timeout",
				"searching chunks: milvus timeout",
				"milvus timeout",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UnwrapError(tt.err))
		})
	}
}

func TestLoggerFieldsClone(t *testing.T) {
	lf := newLoggerFields()
	lf.set("tenant_id", "acme")
	lf.set("chunk_count", 42)

	clone := lf.clone()
	require.Len(t, clone.fields, 2)

	clone.set("source_id", "cv-1")
	assert.Len(t, lf.fields, 2, "clone mutation leaked into original")
	assert.Len(t, clone.fields, 3)
}

func TestLoggerFieldsToSlice(t *testing.T) {
	lf := newLoggerFields()
	assert.Nil(t, lf.toSlice())

	lf.set("tenant_id", "acme")
	lf.set("chunk_count", 42)

	slice := lf.toSlice()
	require.Len(t, slice, 4)

	m := make(map[string]interface{})
	for i := 0; i < len(slice); i += 2 {
		m[slice[i].(string)] = slice[i+1]
	}
	assert.Equal(t, "acme", m["tenant_id"])
	assert.Equal(t, 42, m["chunk_count"])
}

func BenchmarkWithRequestID(b *testing.B) {
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = WithRequestID(ctx, "req-123")
	}
}

func BenchmarkGetLogger(b *testing.B) {
	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithTenantID(ctx, "tenant-acme")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetLogger(ctx)
	}
}

func BenchmarkGetContextFields(b *testing.B) {
	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithTenantID(ctx, "tenant-acme")
	ctx = WithTraceID(ctx, "trace-789")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = GetContextFields(ctx)
	}
}
