package middleware

import (
	"errors"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/formfill/pkg/options"
)

// TimeoutOptions defines timeout middleware options.
type TimeoutOptions struct {
	// Timeout is the per-request deadline.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// SkipPaths lists exact paths exempt from the deadline, typically
	// streaming or long-poll endpoints.
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`
}

// NewTimeoutOptions creates default timeout options.
func NewTimeoutOptions() *TimeoutOptions {
	return &TimeoutOptions{
		Timeout:   30 * time.Second,
		SkipPaths: []string{},
	}
}

// AddFlags adds flags for timeout options to the specified FlagSet.
func (o *TimeoutOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"middleware.timeout.timeout", o.Timeout, "Per-request timeout duration.")
	fs.StringSliceVar(&o.SkipPaths, options.Join(prefixes...)+"middleware.timeout.skip-paths", o.SkipPaths, "Paths exempt from the request timeout.")
}

// Validate validates the timeout options.
func (o *TimeoutOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	return errs
}

// Complete completes the timeout options with defaults.
func (o *TimeoutOptions) Complete() error {
	return nil
}

// WithTimeout configures and enables the timeout middleware.
func WithTimeout(timeout time.Duration, skipPaths ...string) Option {
	return func(o *Options) {
		o.DisableTimeout = false
		if o.Timeout == nil {
			o.Timeout = NewTimeoutOptions()
		}
		if timeout > 0 {
			o.Timeout.Timeout = timeout
		}
		if len(skipPaths) > 0 {
			o.Timeout.SkipPaths = skipPaths
		}
	}
}

// WithoutTimeout disables the timeout middleware.
func WithoutTimeout() Option {
	return func(o *Options) { o.DisableTimeout = true }
}
