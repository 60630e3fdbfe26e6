package middleware

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/kart-io/formfill/pkg/options"
)

// HealthOptions defines health check endpoint options.
type HealthOptions struct {
	// Path is the combined health endpoint.
	Path string `json:"path" mapstructure:"path"`

	// LivenessPath reports process liveness only.
	LivenessPath string `json:"liveness-path" mapstructure:"liveness-path"`

	// ReadinessPath reports dependency readiness via Checker.
	ReadinessPath string `json:"readiness-path" mapstructure:"readiness-path"`

	// Checker is the runtime readiness probe. It is injected by the
	// server wiring and never serialized.
	Checker func() error `json:"-" mapstructure:"-"`
}

// NewHealthOptions creates default health check options.
func NewHealthOptions() *HealthOptions {
	return &HealthOptions{
		Path:          "/health",
		LivenessPath:  "/live",
		ReadinessPath: "/ready",
	}
}

// AddFlags adds flags for health check options to the specified FlagSet.
func (o *HealthOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Path, options.Join(prefixes...)+"middleware.health.path", o.Path, "Health check endpoint path.")
	fs.StringVar(&o.LivenessPath, options.Join(prefixes...)+"middleware.health.liveness-path", o.LivenessPath, "Liveness probe path.")
	fs.StringVar(&o.ReadinessPath, options.Join(prefixes...)+"middleware.health.readiness-path", o.ReadinessPath, "Readiness probe path.")
}

// Validate validates the health check options.
func (o *HealthOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.Path == "" && o.LivenessPath == "" && o.ReadinessPath == "" {
		errs = append(errs, errors.New("health check path is required"))
	}
	return errs
}

// Complete completes the health check options with defaults.
func (o *HealthOptions) Complete() error {
	return nil
}

// WithHealth configures and enables the health check endpoints.
func WithHealth(path, livenessPath, readinessPath string) Option {
	return func(o *Options) {
		o.DisableHealth = false
		if o.Health == nil {
			o.Health = NewHealthOptions()
		}
		if path != "" {
			o.Health.Path = path
		}
		if livenessPath != "" {
			o.Health.LivenessPath = livenessPath
		}
		if readinessPath != "" {
			o.Health.ReadinessPath = readinessPath
		}
	}
}

// WithoutHealth disables the health check endpoints.
func WithoutHealth() Option {
	return func(o *Options) { o.DisableHealth = true }
}
