package logger

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/kart-io/logger/core"

	logopts "github.com/kart-io/formfill/pkg/options/logger"
)

// ContextLogger binds a core.Logger to a context so every log call
// carries the fields accumulated on that context. Safe for concurrent
// use.
type ContextLogger struct {
	ctx    context.Context
	logger core.Logger
}

// NewContextLogger builds a ContextLogger from the fields stored in ctx.
func NewContextLogger(ctx context.Context) *ContextLogger {
	return &ContextLogger{
		ctx:    ctx,
		logger: GetLogger(ctx),
	}
}

// WithContext rebinds the logger to a new context, picking up any
// fields added since this logger was created.
func (cl *ContextLogger) WithContext(ctx context.Context) *ContextLogger {
	return &ContextLogger{
		ctx:    ctx,
		logger: GetLogger(ctx),
	}
}

// WithFields returns a child logger with extra key-value pairs.
func (cl *ContextLogger) WithFields(fields ...interface{}) *ContextLogger {
	return &ContextLogger{
		ctx:    cl.ctx,
		logger: cl.logger.With(fields...),
	}
}

func (cl *ContextLogger) Debug(msg string) { cl.logger.Debug(msg) }

func (cl *ContextLogger) Debugf(format string, args ...interface{}) {
	cl.logger.Debugf(format, args...)
}

func (cl *ContextLogger) Debugw(msg string, keysAndValues ...interface{}) {
	cl.logger.Debugw(msg, keysAndValues...)
}

func (cl *ContextLogger) Info(msg string) { cl.logger.Info(msg) }

func (cl *ContextLogger) Infof(format string, args ...interface{}) {
	cl.logger.Infof(format, args...)
}

func (cl *ContextLogger) Infow(msg string, keysAndValues ...interface{}) {
	cl.logger.Infow(msg, keysAndValues...)
}

func (cl *ContextLogger) Warn(msg string) { cl.logger.Warn(msg) }

func (cl *ContextLogger) Warnf(format string, args ...interface{}) {
	cl.logger.Warnf(format, args...)
}

func (cl *ContextLogger) Warnw(msg string, keysAndValues ...interface{}) {
	cl.logger.Warnw(msg, keysAndValues...)
}

func (cl *ContextLogger) Error(msg string) { cl.logger.Error(msg) }

func (cl *ContextLogger) Errorf(format string, args ...interface{}) {
	cl.logger.Errorf(format, args...)
}

func (cl *ContextLogger) Errorw(msg string, keysAndValues ...interface{}) {
	cl.logger.Errorw(msg, keysAndValues...)
}

// ErrorWithError logs err with structured error fields and, when
// requested, the caller's stack trace.
func (cl *ContextLogger) ErrorWithError(msg string, err error, captureStack bool) {
	fields := []interface{}{
		"error_message", err.Error(),
		"error_type", fmt.Sprintf("%T", err),
	}
	if captureStack {
		// skip captureStackTrace, ErrorWithError and the caller frame
		fields = append(fields, "stack_trace", captureStackTrace(3))
	}
	cl.logger.Errorw(msg, fields...)
}

func (cl *ContextLogger) Fatal(msg string) { cl.logger.Fatal(msg) }

func (cl *ContextLogger) Fatalf(format string, args ...interface{}) {
	cl.logger.Fatalf(format, args...)
}

func (cl *ContextLogger) Fatalw(msg string, keysAndValues ...interface{}) {
	cl.logger.Fatalw(msg, keysAndValues...)
}

// Context returns the bound context.
func (cl *ContextLogger) Context() context.Context { return cl.ctx }

// Logger returns the underlying core.Logger.
func (cl *ContextLogger) Logger() core.Logger { return cl.logger }

func captureStackTrace(skip int) string {
	const maxDepth = 32
	var pcs [maxDepth]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var builder strings.Builder
	for {
		frame, more := frames.Next()
		if builder.Len() > 0 {
			builder.WriteByte('\n')
		}
		fmt.Fprintf(&builder, "%s:%d %s", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return builder.String()
}

// LogError logs err with error_message/error_type fields and an
// optional stack trace, using the context's logger.
func LogError(ctx context.Context, msg string, err error, captureStack bool) {
	fields := []interface{}{
		"error_message", err.Error(),
		"error_type", fmt.Sprintf("%T", err),
	}
	if captureStack {
		fields = append(fields, "stack_trace", captureStackTrace(2))
	}
	GetLogger(ctx).Errorw(msg, fields...)
}

// LogInfo logs at info level with the context's logger.
func LogInfo(ctx context.Context, msg string, keysAndValues ...interface{}) {
	GetLogger(ctx).Infow(msg, keysAndValues...)
}

// LogDebug logs at debug level with the context's logger.
func LogDebug(ctx context.Context, msg string, keysAndValues ...interface{}) {
	GetLogger(ctx).Debugw(msg, keysAndValues...)
}

// LogWarn logs at warn level with the context's logger.
func LogWarn(ctx context.Context, msg string, keysAndValues ...interface{}) {
	GetLogger(ctx).Warnw(msg, keysAndValues...)
}

// UnwrapError walks the error chain and returns each message in order,
// outermost first.
func UnwrapError(err error) []string {
	var messages []string
	for err != nil {
		messages = append(messages, err.Error())
		err = errors.Unwrap(err)
	}
	return messages
}

// LogErrorChain logs err together with every message in its wrap
// chain, which makes fmt.Errorf("%w") nesting visible in one entry.
func LogErrorChain(ctx context.Context, msg string, err error, captureStack bool) {
	fields := []interface{}{
		"error_message", err.Error(),
		"error_type", fmt.Sprintf("%T", err),
		"error_chain", UnwrapError(err),
	}
	if captureStack {
		fields = append(fields, "stack_trace", captureStackTrace(2))
	}
	GetLogger(ctx).Errorw(msg, fields...)
}

// ContextualLoggerFunc resolves a logger from a context. Components
// that accept one stay decoupled from how fields are stored.
type ContextualLoggerFunc func(ctx context.Context) core.Logger

// DefaultContextualLogger resolves loggers via GetLogger.
var DefaultContextualLogger ContextualLoggerFunc = GetLogger

// SetGlobalContextualLogger overrides the default resolver, mainly for
// tests. A nil fn is ignored.
func SetGlobalContextualLogger(fn ContextualLoggerFunc) {
	if fn != nil {
		DefaultContextualLogger = fn
	}
}

// Must panics when err is non-nil, otherwise returns log. For use in
// initialization paths where a missing logger is unrecoverable.
func Must(log core.Logger, err error) core.Logger {
	if err != nil {
		panic(err)
	}
	return log
}

// MustInit initializes the global logger and panics on failure.
func MustInit(opts *logopts.Options) {
	if err := opts.Init(); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

// SyncGlobal flushes buffered log entries before shutdown. The
// underlying logger currently flushes on write, so this is a no-op
// kept for call-site stability.
func SyncGlobal() error {
	return nil
}
