package middleware

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/formfill/pkg/options"
)

// CircuitBreakerOptions defines circuit breaker middleware options.
type CircuitBreakerOptions struct {
	// MaxFailures is the number of consecutive failures that opens the
	// breaker.
	MaxFailures int `json:"max-failures" mapstructure:"max-failures"`

	// Timeout is how long the breaker stays open, in seconds.
	Timeout int `json:"timeout" mapstructure:"timeout"`

	// HalfOpenMaxCalls is the number of probe calls allowed while
	// half-open.
	HalfOpenMaxCalls int `json:"half-open-max-calls" mapstructure:"half-open-max-calls"`

	// SkipPaths lists exact paths exempt from the breaker, typically
	// health and metrics endpoints.
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`

	// SkipPathPrefixes lists path prefixes exempt from the breaker.
	SkipPathPrefixes []string `json:"skip-path-prefixes" mapstructure:"skip-path-prefixes"`

	// ErrorThreshold is the HTTP status code at or above which a
	// response counts as a failure. 500 counts 5xx only; 400 counts
	// 4xx and 5xx.
	ErrorThreshold int `json:"error-threshold" mapstructure:"error-threshold"`
}

// NewCircuitBreakerOptions creates default circuit breaker options.
func NewCircuitBreakerOptions() *CircuitBreakerOptions {
	return &CircuitBreakerOptions{
		MaxFailures:      5,
		Timeout:          60,
		HalfOpenMaxCalls: 1,
		SkipPaths:        []string{"/health", "/metrics"},
		SkipPathPrefixes: []string{},
		ErrorThreshold:   500,
	}
}

// AddFlags adds flags for circuit breaker options to the specified FlagSet.
func (o *CircuitBreakerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "middleware.circuit-breaker."

	fs.IntVar(&o.MaxFailures, prefix+"max-failures", o.MaxFailures, "Maximum number of failures before opening circuit breaker.")
	fs.IntVar(&o.Timeout, prefix+"timeout", o.Timeout, "Circuit breaker timeout duration (seconds).")
	fs.IntVar(&o.HalfOpenMaxCalls, prefix+"half-open-max-calls", o.HalfOpenMaxCalls, "Maximum calls allowed in half-open state.")
	fs.StringSliceVar(&o.SkipPaths, prefix+"skip-paths", o.SkipPaths, "List of paths to skip circuit breaker.")
	fs.StringSliceVar(&o.SkipPathPrefixes, prefix+"skip-path-prefixes", o.SkipPathPrefixes, "List of path prefixes to skip circuit breaker.")
	fs.IntVar(&o.ErrorThreshold, prefix+"error-threshold", o.ErrorThreshold, "HTTP status code threshold for errors (>= this value triggers circuit breaker).")
}

// Validate validates the circuit breaker options.
func (o *CircuitBreakerOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.MaxFailures <= 0 {
		errs = append(errs, errors.New("max failures must be positive"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if o.HalfOpenMaxCalls <= 0 {
		errs = append(errs, errors.New("half-open max calls must be positive"))
	}
	if o.ErrorThreshold < 400 || o.ErrorThreshold > 599 {
		errs = append(errs, errors.New("error threshold must be between 400 and 599"))
	}
	return errs
}

// Complete completes the circuit breaker options with defaults.
func (o *CircuitBreakerOptions) Complete() error {
	return nil
}

// GetTimeout returns the open-state timeout as a time.Duration.
func (o *CircuitBreakerOptions) GetTimeout() time.Duration {
	return time.Duration(o.Timeout) * time.Second
}

// WithCircuitBreaker enables the circuit breaker middleware.
func WithCircuitBreaker() Option {
	return func(o *Options) {
		o.DisableCircuitBreaker = false
		if o.CircuitBreaker == nil {
			o.CircuitBreaker = NewCircuitBreakerOptions()
		}
	}
}

// WithoutCircuitBreaker disables the circuit breaker middleware.
func WithoutCircuitBreaker() Option {
	return func(o *Options) { o.DisableCircuitBreaker = true }
}
