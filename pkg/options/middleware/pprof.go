package middleware

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/kart-io/formfill/pkg/options"
)

// PprofOptions defines pprof endpoint options.
type PprofOptions struct {
	// Prefix is the URL prefix for all pprof handlers.
	Prefix string `json:"prefix" mapstructure:"prefix"`

	EnableCmdline bool `json:"enable-cmdline" mapstructure:"enable-cmdline"`
	EnableProfile bool `json:"enable-profile" mapstructure:"enable-profile"`
	EnableSymbol  bool `json:"enable-symbol" mapstructure:"enable-symbol"`
	EnableTrace   bool `json:"enable-trace" mapstructure:"enable-trace"`

	// BlockProfileRate sets runtime.SetBlockProfileRate when positive.
	BlockProfileRate int `json:"block-profile-rate" mapstructure:"block-profile-rate"`

	// MutexProfileFraction sets runtime.SetMutexProfileFraction when positive.
	MutexProfileFraction int `json:"mutex-profile-fraction" mapstructure:"mutex-profile-fraction"`
}

// NewPprofOptions creates default pprof options.
func NewPprofOptions() *PprofOptions {
	return &PprofOptions{
		Prefix:               "/debug/pprof",
		EnableCmdline:        true,
		EnableProfile:        true,
		EnableSymbol:         true,
		EnableTrace:          true,
		BlockProfileRate:     0,
		MutexProfileFraction: 0,
	}
}

// AddFlags adds flags for pprof options to the specified FlagSet.
func (o *PprofOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Prefix, options.Join(prefixes...)+"middleware.pprof.prefix", o.Prefix, "Pprof URL prefix.")
	fs.BoolVar(&o.EnableCmdline, options.Join(prefixes...)+"middleware.pprof.enable-cmdline", o.EnableCmdline, "Enable cmdline pprof.")
	fs.BoolVar(&o.EnableProfile, options.Join(prefixes...)+"middleware.pprof.enable-profile", o.EnableProfile, "Enable profile pprof.")
	fs.BoolVar(&o.EnableSymbol, options.Join(prefixes...)+"middleware.pprof.enable-symbol", o.EnableSymbol, "Enable symbol pprof.")
	fs.BoolVar(&o.EnableTrace, options.Join(prefixes...)+"middleware.pprof.enable-trace", o.EnableTrace, "Enable trace pprof.")
	fs.IntVar(&o.BlockProfileRate, options.Join(prefixes...)+"middleware.pprof.block-profile-rate", o.BlockProfileRate, "Block profile rate.")
	fs.IntVar(&o.MutexProfileFraction, options.Join(prefixes...)+"middleware.pprof.mutex-profile-fraction", o.MutexProfileFraction, "Mutex profile fraction.")
}

// Validate validates the pprof options.
func (o *PprofOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.Prefix == "" {
		errs = append(errs, errors.New("pprof prefix is required"))
	}
	if o.BlockProfileRate < 0 {
		errs = append(errs, errors.New("block profile rate must not be negative"))
	}
	if o.MutexProfileFraction < 0 {
		errs = append(errs, errors.New("mutex profile fraction must not be negative"))
	}
	return errs
}

// Complete completes the pprof options with defaults.
func (o *PprofOptions) Complete() error {
	return nil
}

// WithPprof configures and enables the pprof endpoints.
func WithPprof(prefix string) Option {
	return func(o *Options) {
		o.DisablePprof = false
		if o.Pprof == nil {
			o.Pprof = NewPprofOptions()
		}
		if prefix != "" {
			o.Pprof.Prefix = prefix
		}
	}
}

// WithoutPprof disables the pprof endpoints.
func WithoutPprof() Option {
	return func(o *Options) { o.DisablePprof = true }
}
