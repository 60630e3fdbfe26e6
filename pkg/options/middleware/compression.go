package middleware

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/kart-io/formfill/pkg/options"
)

// CompressionOptions defines response compression middleware options.
type CompressionOptions struct {
	// Level is the gzip compression level, 1 (fastest) through 9
	// (smallest). -1 selects the default level.
	Level int `json:"level" mapstructure:"level"`

	// MinSize is the minimum response body size in bytes to compress.
	// Smaller bodies are passed through unchanged.
	MinSize int `json:"min-size" mapstructure:"min-size"`

	// Types lists the Content-Types eligible for compression. Already
	// compressed content such as images should not be listed.
	Types []string `json:"types" mapstructure:"types"`

	// SkipPaths lists exact paths exempt from compression.
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`

	// SkipPathPrefixes lists path prefixes exempt from compression.
	SkipPathPrefixes []string `json:"skip-path-prefixes" mapstructure:"skip-path-prefixes"`
}

// NewCompressionOptions creates default compression options.
func NewCompressionOptions() *CompressionOptions {
	return &CompressionOptions{
		Level:   6,
		MinSize: 1024,
		Types: []string{
			"application/json",
			"application/javascript",
			"application/xml",
			"text/html",
			"text/css",
			"text/plain",
			"text/xml",
			"text/javascript",
		},
		SkipPaths:        []string{},
		SkipPathPrefixes: []string{},
	}
}

// AddFlags adds flags for compression options to the specified FlagSet.
func (o *CompressionOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.Level, options.Join(prefixes...)+"middleware.compression.level", o.Level, "Compression level (1-9, 6 is recommended).")
	fs.IntVar(&o.MinSize, options.Join(prefixes...)+"middleware.compression.min-size", o.MinSize, "Minimum size in bytes to compress.")
	fs.StringSliceVar(&o.Types, options.Join(prefixes...)+"middleware.compression.types", o.Types, "Content-Type list to compress.")
	fs.StringSliceVar(&o.SkipPaths, options.Join(prefixes...)+"middleware.compression.skip-paths", o.SkipPaths, "Skip paths for compression middleware.")
	fs.StringSliceVar(&o.SkipPathPrefixes, options.Join(prefixes...)+"middleware.compression.skip-path-prefixes", o.SkipPathPrefixes, "Skip path prefixes for compression middleware.")
}

// Validate validates the compression options.
func (o *CompressionOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.Level < -1 || o.Level > 9 {
		errs = append(errs, errors.New("compression level must be between -1 and 9"))
	}
	if o.MinSize < 0 {
		errs = append(errs, errors.New("compression min size must not be negative"))
	}
	if len(o.Types) == 0 {
		errs = append(errs, errors.New("at least one compressible content type is required"))
	}
	return errs
}

// Complete completes the compression options with defaults.
func (o *CompressionOptions) Complete() error {
	if o.Level == -1 {
		o.Level = 6
	}
	return nil
}

// WithCompression configures and enables the compression middleware.
func WithCompression(level, minSize int, types ...string) Option {
	return func(o *Options) {
		o.DisableCompression = false
		if o.Compression == nil {
			o.Compression = NewCompressionOptions()
		}
		if level >= -1 && level <= 9 {
			o.Compression.Level = level
		}
		if minSize >= 0 {
			o.Compression.MinSize = minSize
		}
		if len(types) > 0 {
			o.Compression.Types = types
		}
	}
}

// WithoutCompression disables the compression middleware.
func WithoutCompression() Option {
	return func(o *Options) { o.DisableCompression = true }
}
