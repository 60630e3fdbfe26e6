package middleware

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/kart-io/formfill/pkg/options"
)

// BodyLimitOptions defines request body size limit middleware options.
type BodyLimitOptions struct {
	// MaxSize is the maximum allowed request body size in bytes.
	MaxSize int64 `json:"max-size" mapstructure:"max-size"`

	// SkipPaths lists exact paths exempt from the limit.
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`

	// SkipPathPrefixes lists path prefixes exempt from the limit.
	SkipPathPrefixes []string `json:"skip-path-prefixes" mapstructure:"skip-path-prefixes"`
}

// NewBodyLimitOptions creates default body limit options. The 4MB
// default covers document uploads comfortably while still bounding
// memory per request.
func NewBodyLimitOptions() *BodyLimitOptions {
	return &BodyLimitOptions{
		MaxSize:          4 * 1024 * 1024,
		SkipPaths:        []string{},
		SkipPathPrefixes: []string{},
	}
}

// AddFlags adds flags for body limit options to the specified FlagSet.
func (o *BodyLimitOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.Int64Var(&o.MaxSize, options.Join(prefixes...)+"middleware.body-limit.max-size", o.MaxSize, "Maximum request body size in bytes.")
	fs.StringSliceVar(&o.SkipPaths, options.Join(prefixes...)+"middleware.body-limit.skip-paths", o.SkipPaths, "Skip paths for body limit middleware.")
	fs.StringSliceVar(&o.SkipPathPrefixes, options.Join(prefixes...)+"middleware.body-limit.skip-path-prefixes", o.SkipPathPrefixes, "Skip path prefixes for body limit middleware.")
}

// Validate validates the body limit options.
func (o *BodyLimitOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.MaxSize <= 0 {
		errs = append(errs, errors.New("body limit max size must be positive"))
	}
	return errs
}

// Complete completes the body limit options with defaults.
func (o *BodyLimitOptions) Complete() error {
	return nil
}

// WithBodyLimit configures and enables the body limit middleware.
func WithBodyLimit(maxSize int64, skipPaths ...string) Option {
	return func(o *Options) {
		o.DisableBodyLimit = false
		if o.BodyLimit == nil {
			o.BodyLimit = NewBodyLimitOptions()
		}
		if maxSize > 0 {
			o.BodyLimit.MaxSize = maxSize
		}
		if len(skipPaths) > 0 {
			o.BodyLimit.SkipPaths = skipPaths
		}
	}
}

// WithoutBodyLimit disables the body limit middleware.
func WithoutBodyLimit() Option {
	return func(o *Options) { o.DisableBodyLimit = true }
}
