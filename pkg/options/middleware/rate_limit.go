package middleware

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/formfill/pkg/options"
)

// RateLimitOptions defines rate limiting middleware options.
type RateLimitOptions struct {
	// Limit is the maximum number of requests allowed per window.
	Limit int `json:"limit" mapstructure:"limit"`

	// Window is the sliding window size in seconds.
	Window int `json:"window" mapstructure:"window"`

	// SkipPaths lists exact paths exempt from rate limiting.
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`

	// TrustedProxies lists proxy addresses whose forwarding headers may
	// be trusted for client IP extraction.
	TrustedProxies []string `json:"trusted-proxies" mapstructure:"trusted-proxies"`

	// TrustProxyHeaders enables X-Forwarded-For and X-Real-IP parsing
	// for requests arriving from a trusted proxy.
	TrustProxyHeaders bool `json:"trust-proxy-headers" mapstructure:"trust-proxy-headers"`

	// UseRedis selects the Redis-backed limiter so limits are shared
	// across replicas.
	UseRedis bool `json:"use-redis" mapstructure:"use-redis"`

	// RedisAddr is the Redis server address.
	RedisAddr string `json:"redis-addr" mapstructure:"redis-addr"`

	// RedisPassword is the Redis password.
	RedisPassword string `json:"redis-password" mapstructure:"redis-password"`

	// RedisDB is the Redis database number.
	RedisDB int `json:"redis-db" mapstructure:"redis-db"`
}

// NewRateLimitOptions creates default rate limit options.
func NewRateLimitOptions() *RateLimitOptions {
	return &RateLimitOptions{
		Limit:             100,
		Window:            60,
		SkipPaths:         []string{},
		TrustedProxies:    []string{},
		TrustProxyHeaders: false,
		UseRedis:          false,
		RedisAddr:         "localhost:6379",
		RedisPassword:     "",
		RedisDB:           0,
	}
}

// AddFlags adds flags for rate limit options to the specified FlagSet.
func (o *RateLimitOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "middleware.rate-limit."

	fs.IntVar(&o.Limit, prefix+"limit", o.Limit, "Maximum number of requests allowed within the time window.")
	fs.IntVar(&o.Window, prefix+"window", o.Window, "Time window duration for rate limiting (seconds).")
	fs.StringSliceVar(&o.SkipPaths, prefix+"skip-paths", o.SkipPaths, "List of paths to skip rate limiting.")
	fs.StringSliceVar(&o.TrustedProxies, prefix+"trusted-proxies", o.TrustedProxies, "List of trusted proxy IP addresses or CIDR ranges.")
	fs.BoolVar(&o.TrustProxyHeaders, prefix+"trust-proxy-headers", o.TrustProxyHeaders, "Trust proxy headers for IP extraction.")
	fs.BoolVar(&o.UseRedis, prefix+"use-redis", o.UseRedis, "Use Redis as rate limiter backend.")
	fs.StringVar(&o.RedisAddr, prefix+"redis-addr", o.RedisAddr, "Redis server address.")
	fs.StringVar(&o.RedisPassword, prefix+"redis-password", o.RedisPassword, "Redis password.")
	fs.IntVar(&o.RedisDB, prefix+"redis-db", o.RedisDB, "Redis database number.")
}

// Validate validates the rate limit options.
func (o *RateLimitOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.Limit <= 0 {
		errs = append(errs, errors.New("rate limit must be positive"))
	}
	if o.Window <= 0 {
		errs = append(errs, errors.New("rate limit window must be positive"))
	}
	if o.UseRedis && o.RedisAddr == "" {
		errs = append(errs, errors.New("redis address is required when the redis backend is selected"))
	}
	return errs
}

// Complete completes the rate limit options with defaults.
func (o *RateLimitOptions) Complete() error {
	return nil
}

// GetWindow returns the window size as a time.Duration.
func (o *RateLimitOptions) GetWindow() time.Duration {
	return time.Duration(o.Window) * time.Second
}

// WithRateLimit configures and enables the rate limiting middleware.
func WithRateLimit(limit, windowSeconds int) Option {
	return func(o *Options) {
		o.DisableRateLimit = false
		if o.RateLimit == nil {
			o.RateLimit = NewRateLimitOptions()
		}
		if limit > 0 {
			o.RateLimit.Limit = limit
		}
		if windowSeconds > 0 {
			o.RateLimit.Window = windowSeconds
		}
	}
}

// WithoutRateLimit disables the rate limiting middleware.
func WithoutRateLimit() Option {
	return func(o *Options) { o.DisableRateLimit = true }
}
