package middleware

import (
	"errors"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kart-io/formfill/pkg/options"
)

// VersionOptions contains version endpoint configuration.
type VersionOptions struct {
	// Path specifies the version endpoint path.
	Path string `json:"path" mapstructure:"path"`

	// HideDetails hides sensitive build details (commit hash, build date).
	HideDetails bool `json:"hide-details" mapstructure:"hide-details"`
}

// NewVersionOptions creates default version options.
func NewVersionOptions() *VersionOptions {
	return &VersionOptions{
		Path:        "/version",
		HideDetails: false,
	}
}

// AddFlags adds flags for version options to the specified FlagSet.
func (o *VersionOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...) + "middleware.version."

	fs.StringVar(&o.Path, prefix+"path", o.Path, "Version endpoint path.")
	fs.BoolVar(&o.HideDetails, prefix+"hide-details", o.HideDetails, "Hide sensitive build details in version response.")
}

// Validate validates version options.
func (o *VersionOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.Path != "" && !strings.HasPrefix(o.Path, "/") {
		errs = append(errs, errors.New("version path must start with '/'"))
	}
	return errs
}

// Complete completes version options with defaults.
func (o *VersionOptions) Complete() error {
	if o.Path == "" {
		o.Path = "/version"
	}
	return nil
}

// WithVersion configures and enables the version endpoint.
func WithVersion(path string, hideDetails bool) Option {
	return func(o *Options) {
		o.DisableVersion = false
		if o.Version == nil {
			o.Version = NewVersionOptions()
		}
		if path != "" {
			o.Version.Path = path
		}
		o.Version.HideDetails = hideDetails
	}
}

// WithoutVersion disables the version endpoint.
func WithoutVersion() Option {
	return func(o *Options) { o.DisableVersion = true }
}
