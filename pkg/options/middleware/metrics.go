package middleware

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/kart-io/formfill/pkg/options"
)

// MetricsOptions defines metrics middleware and endpoint options.
type MetricsOptions struct {
	// Path is the scrape endpoint path.
	Path string `json:"path" mapstructure:"path"`

	// Namespace prefixes all metric names.
	Namespace string `json:"namespace" mapstructure:"namespace"`

	// Subsystem groups metrics below the namespace.
	Subsystem string `json:"subsystem" mapstructure:"subsystem"`
}

// NewMetricsOptions creates default metrics options.
func NewMetricsOptions() *MetricsOptions {
	return &MetricsOptions{
		Path:      "/metrics",
		Namespace: "formfill",
		Subsystem: "http",
	}
}

// AddFlags adds flags for metrics options to the specified FlagSet.
func (o *MetricsOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Path, options.Join(prefixes...)+"middleware.metrics.path", o.Path, "Metrics endpoint path.")
	fs.StringVar(&o.Namespace, options.Join(prefixes...)+"middleware.metrics.namespace", o.Namespace, "Metrics namespace.")
	fs.StringVar(&o.Subsystem, options.Join(prefixes...)+"middleware.metrics.subsystem", o.Subsystem, "Metrics subsystem.")
}

// Validate validates the metrics options.
func (o *MetricsOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.Path == "" {
		errs = append(errs, errors.New("metrics path is required"))
	}
	if o.Namespace == "" {
		errs = append(errs, errors.New("metrics namespace is required"))
	}
	if o.Subsystem == "" {
		errs = append(errs, errors.New("metrics subsystem is required"))
	}
	return errs
}

// Complete completes the metrics options with defaults.
func (o *MetricsOptions) Complete() error {
	return nil
}

// WithMetrics configures and enables the metrics middleware.
func WithMetrics(path, namespace, subsystem string) Option {
	return func(o *Options) {
		o.DisableMetrics = false
		if o.Metrics == nil {
			o.Metrics = NewMetricsOptions()
		}
		if path != "" {
			o.Metrics.Path = path
		}
		if namespace != "" {
			o.Metrics.Namespace = namespace
		}
		if subsystem != "" {
			o.Metrics.Subsystem = subsystem
		}
	}
}

// WithoutMetrics disables the metrics middleware.
func WithoutMetrics() Option {
	return func(o *Options) { o.DisableMetrics = true }
}
