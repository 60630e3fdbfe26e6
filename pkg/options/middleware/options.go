// Package middleware provides middleware configuration options.
package middleware

import (
	"fmt"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/formfill/pkg/options"
)

// ConfigError describes an invalid middleware configuration value.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config error in field %q: %s", e.Field, e.Message)
	}
	return e.Message
}

// PathMatcher contains common path matching configuration.
type PathMatcher struct {
	SkipPaths        []string
	SkipPathPrefixes []string
}

// Middleware name constants.
const (
	MiddlewareRecovery        = "recovery"
	MiddlewareRequestID       = "request-id"
	MiddlewareLogger          = "logger"
	MiddlewareCORS            = "cors"
	MiddlewareBodyLimit       = "body-limit"
	MiddlewareTimeout         = "timeout"
	MiddlewareHealth          = "health"
	MiddlewareMetrics         = "metrics"
	MiddlewarePprof           = "pprof"
	MiddlewareVersion         = "version"
	MiddlewareCompression     = "compression"
	MiddlewareSecurityHeaders = "security-headers"
	MiddlewareRateLimit       = "rate-limit"
	MiddlewareCircuitBreaker  = "circuit-breaker"
)

// allMiddlewares lists every known middleware name in a stable order.
var allMiddlewares = []string{
	MiddlewareRecovery,
	MiddlewareRequestID,
	MiddlewareLogger,
	MiddlewareMetrics,
	MiddlewareCORS,
	MiddlewareBodyLimit,
	MiddlewareTimeout,
	MiddlewareHealth,
	MiddlewarePprof,
	MiddlewareVersion,
	MiddlewareCompression,
	MiddlewareSecurityHeaders,
	MiddlewareRateLimit,
	MiddlewareCircuitBreaker,
}

// Options is the typed container for all middleware configurations.
// A middleware is applied when its sub-options are non-nil and the
// matching Disable flag is false. Runtime dependencies (panic handlers,
// health checkers, rate limiter backends) are injected as function or
// interface arguments at construction time, never stored here, so the
// whole struct stays serializable.
type Options struct {
	// Middleware overrides the request-path middleware application
	// order. Empty means DefaultMiddlewareOrder. Only names listed here
	// are reordered; endpoint registrations (health, metrics, pprof,
	// version) are unaffected.
	Middleware []string `json:"middleware,omitempty" mapstructure:"middleware"`

	DisableRecovery        bool `json:"disable-recovery" mapstructure:"disable-recovery"`
	DisableRequestID       bool `json:"disable-request-id" mapstructure:"disable-request-id"`
	DisableLogger          bool `json:"disable-logger" mapstructure:"disable-logger"`
	DisableCORS            bool `json:"disable-cors" mapstructure:"disable-cors"`
	DisableTimeout         bool `json:"disable-timeout" mapstructure:"disable-timeout"`
	DisableHealth          bool `json:"disable-health" mapstructure:"disable-health"`
	DisableMetrics         bool `json:"disable-metrics" mapstructure:"disable-metrics"`
	DisablePprof           bool `json:"disable-pprof" mapstructure:"disable-pprof"`
	DisableVersion         bool `json:"disable-version" mapstructure:"disable-version"`
	DisableBodyLimit       bool `json:"disable-body-limit" mapstructure:"disable-body-limit"`
	DisableCompression     bool `json:"disable-compression" mapstructure:"disable-compression"`
	DisableSecurityHeaders bool `json:"disable-security-headers" mapstructure:"disable-security-headers"`
	DisableRateLimit       bool `json:"disable-rate-limit" mapstructure:"disable-rate-limit"`
	DisableCircuitBreaker  bool `json:"disable-circuit-breaker" mapstructure:"disable-circuit-breaker"`

	Recovery        *RecoveryOptions        `json:"recovery,omitempty" mapstructure:"recovery"`
	RequestID       *RequestIDOptions       `json:"request-id,omitempty" mapstructure:"request-id"`
	Logger          *LoggerOptions          `json:"logger,omitempty" mapstructure:"logger"`
	CORS            *CORSOptions            `json:"cors,omitempty" mapstructure:"cors"`
	Timeout         *TimeoutOptions         `json:"timeout,omitempty" mapstructure:"timeout"`
	Health          *HealthOptions          `json:"health,omitempty" mapstructure:"health"`
	Metrics         *MetricsOptions         `json:"metrics,omitempty" mapstructure:"metrics"`
	Pprof           *PprofOptions           `json:"pprof,omitempty" mapstructure:"pprof"`
	Version         *VersionOptions         `json:"version,omitempty" mapstructure:"version"`
	BodyLimit       *BodyLimitOptions       `json:"body-limit,omitempty" mapstructure:"body-limit"`
	Compression     *CompressionOptions     `json:"compression,omitempty" mapstructure:"compression"`
	SecurityHeaders *SecurityHeadersOptions `json:"security-headers,omitempty" mapstructure:"security-headers"`
	RateLimit       *RateLimitOptions       `json:"rate-limit,omitempty" mapstructure:"rate-limit"`
	CircuitBreaker  *CircuitBreakerOptions  `json:"circuit-breaker,omitempty" mapstructure:"circuit-breaker"`
}

// Option is a function that configures Options.
type Option func(*Options)

// NewOptions creates middleware options with every sub-configuration
// populated with its defaults. Recovery, request ID, logger, health,
// metrics and version are enabled out of the box; the remaining
// middlewares are present but disabled until explicitly turned on.
func NewOptions(opts ...Option) *Options {
	o := &Options{
		DisableCORS:            true,
		DisableTimeout:         true,
		DisablePprof:           true,
		DisableBodyLimit:       true,
		DisableCompression:     true,
		DisableSecurityHeaders: true,
		DisableRateLimit:       true,
		DisableCircuitBreaker:  true,

		Recovery:        NewRecoveryOptions(),
		RequestID:       NewRequestIDOptions(),
		Logger:          NewLoggerOptions(),
		CORS:            NewCORSOptions(),
		Timeout:         NewTimeoutOptions(),
		Health:          NewHealthOptions(),
		Metrics:         NewMetricsOptions(),
		Pprof:           NewPprofOptions(),
		Version:         NewVersionOptions(),
		BodyLimit:       NewBodyLimitOptions(),
		Compression:     NewCompressionOptions(),
		SecurityHeaders: NewSecurityHeadersOptions(),
		RateLimit:       NewRateLimitOptions(),
		CircuitBreaker:  NewCircuitBreakerOptions(),
	}

	for _, fn := range opts {
		fn(o)
	}

	return o
}

// IsEnabled reports whether the named middleware is enabled.
func (o *Options) IsEnabled(name string) bool {
	if o == nil {
		return false
	}
	switch name {
	case MiddlewareRecovery:
		return !o.DisableRecovery && o.Recovery != nil
	case MiddlewareRequestID:
		return !o.DisableRequestID && o.RequestID != nil
	case MiddlewareLogger:
		return !o.DisableLogger && o.Logger != nil
	case MiddlewareCORS:
		return !o.DisableCORS && o.CORS != nil
	case MiddlewareTimeout:
		return !o.DisableTimeout && o.Timeout != nil
	case MiddlewareHealth:
		return !o.DisableHealth && o.Health != nil
	case MiddlewareMetrics:
		return !o.DisableMetrics && o.Metrics != nil
	case MiddlewarePprof:
		return !o.DisablePprof && o.Pprof != nil
	case MiddlewareVersion:
		return !o.DisableVersion && o.Version != nil
	case MiddlewareBodyLimit:
		return !o.DisableBodyLimit && o.BodyLimit != nil
	case MiddlewareCompression:
		return !o.DisableCompression && o.Compression != nil
	case MiddlewareSecurityHeaders:
		return !o.DisableSecurityHeaders && o.SecurityHeaders != nil
	case MiddlewareRateLimit:
		return !o.DisableRateLimit && o.RateLimit != nil
	case MiddlewareCircuitBreaker:
		return !o.DisableCircuitBreaker && o.CircuitBreaker != nil
	default:
		return false
	}
}

// GetEnabledMiddlewares returns the names of all enabled middlewares
// in a stable order.
func (o *Options) GetEnabledMiddlewares() []string {
	if o == nil {
		return nil
	}
	var enabled []string
	for _, name := range allMiddlewares {
		if o.IsEnabled(name) {
			enabled = append(enabled, name)
		}
	}
	return enabled
}

// DefaultMiddlewareOrder returns the order in which request-path
// middlewares are applied to the engine. Recovery must run first so it
// wraps everything below it; request ID precedes the logger because the
// logger reads the ID from the request context.
func DefaultMiddlewareOrder() []string {
	return []string{
		MiddlewareRecovery,
		MiddlewareRequestID,
		MiddlewareLogger,
		MiddlewareMetrics,
		MiddlewareCORS,
		MiddlewareTimeout,
	}
}

// GetMiddlewareOrder returns the middleware application order. An
// explicitly configured Middleware list wins over the default order.
func (o *Options) GetMiddlewareOrder() []string {
	if o != nil && len(o.Middleware) > 0 {
		return o.Middleware
	}
	return DefaultMiddlewareOrder()
}

// ValidateMiddleware checks a configured Middleware order for unknown
// or duplicate names. An empty list is valid.
func (o *Options) ValidateMiddleware() []error {
	if o == nil || len(o.Middleware) == 0 {
		return nil
	}

	known := make(map[string]bool, len(allMiddlewares))
	for _, name := range allMiddlewares {
		known[name] = true
	}

	var errs []error
	seen := make(map[string]bool, len(o.Middleware))
	for _, name := range o.Middleware {
		if !known[name] {
			errs = append(errs, &ConfigError{Field: "middleware", Message: "unknown middleware: " + name})
			continue
		}
		if seen[name] {
			errs = append(errs, &ConfigError{Field: "middleware", Message: "duplicate middleware: " + name})
			continue
		}
		seen[name] = true
	}
	return errs
}

// GetConfig returns the typed configuration for the named middleware,
// or nil when the name is unknown.
func (o *Options) GetConfig(name string) MiddlewareConfig {
	if o == nil {
		return nil
	}
	switch name {
	case MiddlewareRecovery:
		return o.Recovery
	case MiddlewareRequestID:
		return o.RequestID
	case MiddlewareLogger:
		return o.Logger
	case MiddlewareCORS:
		return o.CORS
	case MiddlewareTimeout:
		return o.Timeout
	case MiddlewareHealth:
		return o.Health
	case MiddlewareMetrics:
		return o.Metrics
	case MiddlewarePprof:
		return o.Pprof
	case MiddlewareVersion:
		return o.Version
	case MiddlewareBodyLimit:
		return o.BodyLimit
	case MiddlewareCompression:
		return o.Compression
	case MiddlewareSecurityHeaders:
		return o.SecurityHeaders
	case MiddlewareRateLimit:
		return o.RateLimit
	case MiddlewareCircuitBreaker:
		return o.CircuitBreaker
	default:
		return nil
	}
}

// SetConfig replaces the configuration for the named middleware. A
// config of the wrong concrete type is ignored.
func (o *Options) SetConfig(name string, cfg MiddlewareConfig) {
	if o == nil {
		return
	}
	switch name {
	case MiddlewareRecovery:
		if c, ok := cfg.(*RecoveryOptions); ok {
			o.Recovery = c
		}
	case MiddlewareRequestID:
		if c, ok := cfg.(*RequestIDOptions); ok {
			o.RequestID = c
		}
	case MiddlewareLogger:
		if c, ok := cfg.(*LoggerOptions); ok {
			o.Logger = c
		}
	case MiddlewareCORS:
		if c, ok := cfg.(*CORSOptions); ok {
			o.CORS = c
		}
	case MiddlewareTimeout:
		if c, ok := cfg.(*TimeoutOptions); ok {
			o.Timeout = c
		}
	case MiddlewareHealth:
		if c, ok := cfg.(*HealthOptions); ok {
			o.Health = c
		}
	case MiddlewareMetrics:
		if c, ok := cfg.(*MetricsOptions); ok {
			o.Metrics = c
		}
	case MiddlewarePprof:
		if c, ok := cfg.(*PprofOptions); ok {
			o.Pprof = c
		}
	case MiddlewareVersion:
		if c, ok := cfg.(*VersionOptions); ok {
			o.Version = c
		}
	case MiddlewareBodyLimit:
		if c, ok := cfg.(*BodyLimitOptions); ok {
			o.BodyLimit = c
		}
	case MiddlewareCompression:
		if c, ok := cfg.(*CompressionOptions); ok {
			o.Compression = c
		}
	case MiddlewareSecurityHeaders:
		if c, ok := cfg.(*SecurityHeadersOptions); ok {
			o.SecurityHeaders = c
		}
	case MiddlewareRateLimit:
		if c, ok := cfg.(*RateLimitOptions); ok {
			o.RateLimit = c
		}
	case MiddlewareCircuitBreaker:
		if c, ok := cfg.(*CircuitBreakerOptions); ok {
			o.CircuitBreaker = c
		}
	}
}

// Validate checks every enabled middleware configuration and returns an
// aggregate error describing all problems found. Disabled sections are
// not validated.
func (o *Options) Validate() error {
	if o == nil {
		return nil
	}

	var errs []error
	collect := func(name string, sub []error) {
		for _, err := range sub {
			errs = append(errs, &ConfigError{Field: name, Message: err.Error()})
		}
	}

	errs = append(errs, o.ValidateMiddleware()...)

	if o.IsEnabled(MiddlewareRecovery) {
		collect(MiddlewareRecovery, o.Recovery.Validate())
	}
	if o.IsEnabled(MiddlewareRequestID) {
		collect(MiddlewareRequestID, o.RequestID.Validate())
	}
	if o.IsEnabled(MiddlewareLogger) {
		collect(MiddlewareLogger, o.Logger.Validate())
	}
	if o.IsEnabled(MiddlewareCORS) {
		collect(MiddlewareCORS, o.CORS.Validate())
	}
	if o.IsEnabled(MiddlewareTimeout) {
		collect(MiddlewareTimeout, o.Timeout.Validate())
	}
	if o.IsEnabled(MiddlewareHealth) {
		collect(MiddlewareHealth, o.Health.Validate())
	}
	if o.IsEnabled(MiddlewareMetrics) {
		collect(MiddlewareMetrics, o.Metrics.Validate())
	}
	if o.IsEnabled(MiddlewarePprof) {
		collect(MiddlewarePprof, o.Pprof.Validate())
	}
	if o.IsEnabled(MiddlewareVersion) {
		collect(MiddlewareVersion, o.Version.Validate())
	}
	if o.IsEnabled(MiddlewareBodyLimit) {
		collect(MiddlewareBodyLimit, o.BodyLimit.Validate())
	}
	if o.IsEnabled(MiddlewareCompression) {
		collect(MiddlewareCompression, o.Compression.Validate())
	}
	if o.IsEnabled(MiddlewareSecurityHeaders) {
		collect(MiddlewareSecurityHeaders, o.SecurityHeaders.Validate())
	}
	if o.IsEnabled(MiddlewareRateLimit) {
		collect(MiddlewareRateLimit, o.RateLimit.Validate())
	}
	if o.IsEnabled(MiddlewareCircuitBreaker) {
		collect(MiddlewareCircuitBreaker, o.CircuitBreaker.Validate())
	}

	return utilerrors.NewAggregate(errs)
}

// Complete fills in any missing sub-configurations with their defaults
// so that enabled middlewares can always dereference their options.
func (o *Options) Complete() error {
	if o.Recovery == nil {
		o.Recovery = NewRecoveryOptions()
	}
	if o.RequestID == nil {
		o.RequestID = NewRequestIDOptions()
	}
	if o.Logger == nil {
		o.Logger = NewLoggerOptions()
	}
	if o.CORS == nil {
		o.CORS = NewCORSOptions()
	}
	if o.Timeout == nil {
		o.Timeout = NewTimeoutOptions()
	}
	if o.Health == nil {
		o.Health = NewHealthOptions()
	}
	if o.Metrics == nil {
		o.Metrics = NewMetricsOptions()
	}
	if o.Pprof == nil {
		o.Pprof = NewPprofOptions()
	}
	if o.Version == nil {
		o.Version = NewVersionOptions()
	}
	if o.BodyLimit == nil {
		o.BodyLimit = NewBodyLimitOptions()
	}
	if o.Compression == nil {
		o.Compression = NewCompressionOptions()
	}
	if o.SecurityHeaders == nil {
		o.SecurityHeaders = NewSecurityHeadersOptions()
	}
	if o.RateLimit == nil {
		o.RateLimit = NewRateLimitOptions()
	}
	if o.CircuitBreaker == nil {
		o.CircuitBreaker = NewCircuitBreakerOptions()
	}

	subs := map[string]interface{ Complete() error }{
		MiddlewareRecovery:        o.Recovery,
		MiddlewareRequestID:       o.RequestID,
		MiddlewareLogger:          o.Logger,
		MiddlewareCORS:            o.CORS,
		MiddlewareTimeout:         o.Timeout,
		MiddlewareHealth:          o.Health,
		MiddlewareMetrics:         o.Metrics,
		MiddlewarePprof:           o.Pprof,
		MiddlewareVersion:         o.Version,
		MiddlewareBodyLimit:       o.BodyLimit,
		MiddlewareCompression:     o.Compression,
		MiddlewareSecurityHeaders: o.SecurityHeaders,
		MiddlewareRateLimit:       o.RateLimit,
		MiddlewareCircuitBreaker:  o.CircuitBreaker,
	}
	for name, sub := range subs {
		if err := sub.Complete(); err != nil {
			return &ConfigError{Field: name, Message: err.Error()}
		}
	}

	return nil
}

// AddFlags adds flags for all middleware configurations to the given
// FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "middleware."

	fs.BoolVar(&o.DisableRecovery, prefix+"disable-recovery", o.DisableRecovery, "Disable the panic recovery middleware.")
	fs.BoolVar(&o.DisableRequestID, prefix+"disable-request-id", o.DisableRequestID, "Disable the request ID middleware.")
	fs.BoolVar(&o.DisableLogger, prefix+"disable-logger", o.DisableLogger, "Disable the request logging middleware.")
	fs.BoolVar(&o.DisableCORS, prefix+"disable-cors", o.DisableCORS, "Disable the CORS middleware.")
	fs.BoolVar(&o.DisableTimeout, prefix+"disable-timeout", o.DisableTimeout, "Disable the request timeout middleware.")
	fs.BoolVar(&o.DisableHealth, prefix+"disable-health", o.DisableHealth, "Disable the health check endpoints.")
	fs.BoolVar(&o.DisableMetrics, prefix+"disable-metrics", o.DisableMetrics, "Disable the metrics middleware and endpoint.")
	fs.BoolVar(&o.DisablePprof, prefix+"disable-pprof", o.DisablePprof, "Disable the pprof endpoints.")
	fs.BoolVar(&o.DisableVersion, prefix+"disable-version", o.DisableVersion, "Disable the version endpoint.")
	fs.BoolVar(&o.DisableBodyLimit, prefix+"disable-body-limit", o.DisableBodyLimit, "Disable the request body size limit middleware.")
	fs.BoolVar(&o.DisableCompression, prefix+"disable-compression", o.DisableCompression, "Disable the response compression middleware.")
	fs.BoolVar(&o.DisableSecurityHeaders, prefix+"disable-security-headers", o.DisableSecurityHeaders, "Disable the security headers middleware.")
	fs.BoolVar(&o.DisableRateLimit, prefix+"disable-rate-limit", o.DisableRateLimit, "Disable the rate limiting middleware.")
	fs.BoolVar(&o.DisableCircuitBreaker, prefix+"disable-circuit-breaker", o.DisableCircuitBreaker, "Disable the circuit breaker middleware.")

	if o.Recovery != nil {
		o.Recovery.AddFlags(fs, prefixes...)
	}
	if o.RequestID != nil {
		o.RequestID.AddFlags(fs, prefixes...)
	}
	if o.Logger != nil {
		o.Logger.AddFlags(fs, prefixes...)
	}
	if o.CORS != nil {
		o.CORS.AddFlags(fs, prefixes...)
	}
	if o.Timeout != nil {
		o.Timeout.AddFlags(fs, prefixes...)
	}
	if o.Health != nil {
		o.Health.AddFlags(fs, prefixes...)
	}
	if o.Metrics != nil {
		o.Metrics.AddFlags(fs, prefixes...)
	}
	if o.Pprof != nil {
		o.Pprof.AddFlags(fs, prefixes...)
	}
	if o.Version != nil {
		o.Version.AddFlags(fs, prefixes...)
	}
	if o.BodyLimit != nil {
		o.BodyLimit.AddFlags(fs, prefixes...)
	}
	if o.Compression != nil {
		o.Compression.AddFlags(fs, prefixes...)
	}
	if o.SecurityHeaders != nil {
		o.SecurityHeaders.AddFlags(fs, prefixes...)
	}
	if o.RateLimit != nil {
		o.RateLimit.AddFlags(fs, prefixes...)
	}
	if o.CircuitBreaker != nil {
		o.CircuitBreaker.AddFlags(fs, prefixes...)
	}
}
