package middleware

import (
	"github.com/spf13/pflag"

	"github.com/kart-io/formfill/pkg/options"
)

// RecoveryOptions defines recovery middleware options.
// Custom panic handlers are runtime dependencies and are passed to the
// middleware constructor directly, keeping this struct serializable.
type RecoveryOptions struct {
	// EnableStackTrace includes the stack trace in error responses.
	// Forced off in production environments.
	EnableStackTrace bool `json:"enable-stack-trace" mapstructure:"enable-stack-trace"`
}

// NewRecoveryOptions creates default recovery options.
func NewRecoveryOptions() *RecoveryOptions {
	return &RecoveryOptions{
		EnableStackTrace: false,
	}
}

// AddFlags adds flags for recovery options to the specified FlagSet.
func (o *RecoveryOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.EnableStackTrace, options.Join(prefixes...)+"middleware.recovery.enable-stack-trace", o.EnableStackTrace, "Include stack traces in panic error responses.")
}

// Validate validates the recovery options.
func (o *RecoveryOptions) Validate() []error {
	return nil
}

// Complete completes the recovery options with defaults.
func (o *RecoveryOptions) Complete() error {
	return nil
}

// WithRecovery configures and enables the recovery middleware.
func WithRecovery(enableStackTrace bool) Option {
	return func(o *Options) {
		o.DisableRecovery = false
		if o.Recovery == nil {
			o.Recovery = NewRecoveryOptions()
		}
		o.Recovery.EnableStackTrace = enableStackTrace
	}
}

// WithoutRecovery disables the recovery middleware.
func WithoutRecovery() Option {
	return func(o *Options) { o.DisableRecovery = true }
}
