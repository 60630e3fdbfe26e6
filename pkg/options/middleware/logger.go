package middleware

import (
	"log"

	"github.com/spf13/pflag"

	"github.com/kart-io/formfill/pkg/options"
)

// LoggerOptions defines logger middleware options.
type LoggerOptions struct {
	// SkipPaths lists exact paths excluded from request logging.
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`

	// UseStructuredLogger switches between structured key/value logging
	// and printf-style output.
	UseStructuredLogger bool `json:"use-structured-logger" mapstructure:"use-structured-logger"`

	// Output receives printf-style log lines when UseStructuredLogger
	// is false. Defaults to log.Printf.
	Output func(format string, args ...interface{}) `json:"-" mapstructure:"-"`
}

// NewLoggerOptions creates default logger middleware options.
func NewLoggerOptions() *LoggerOptions {
	return &LoggerOptions{
		SkipPaths:           []string{"/health", "/ready", "/live", "/metrics"},
		UseStructuredLogger: true,
	}
}

// AddFlags adds flags for logger options to the specified FlagSet.
func (o *LoggerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringSliceVar(&o.SkipPaths, options.Join(prefixes...)+"middleware.logger.skip-paths", o.SkipPaths, "Paths to skip logging.")
	fs.BoolVar(&o.UseStructuredLogger, options.Join(prefixes...)+"middleware.logger.use-structured-logger", o.UseStructuredLogger, "Use structured logger.")
}

// Validate validates the logger options.
func (o *LoggerOptions) Validate() []error {
	return nil
}

// Complete completes the logger options with defaults.
func (o *LoggerOptions) Complete() error {
	if o.Output == nil {
		o.Output = log.Printf
	}
	return nil
}

// WithLogger configures and enables the logger middleware.
func WithLogger(skipPaths ...string) Option {
	return func(o *Options) {
		o.DisableLogger = false
		if o.Logger == nil {
			o.Logger = NewLoggerOptions()
		}
		if len(skipPaths) > 0 {
			o.Logger.SkipPaths = skipPaths
		}
	}
}

// WithoutLogger disables the logger middleware.
func WithoutLogger() Option {
	return func(o *Options) { o.DisableLogger = true }
}
