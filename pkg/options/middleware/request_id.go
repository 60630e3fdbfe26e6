package middleware

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/kart-io/formfill/pkg/options"
)

// RequestIDOptions defines request ID middleware options.
// Custom generator functions are injected at construction time so this
// struct stays serializable.
type RequestIDOptions struct {
	// Header is the request and response header carrying the ID.
	Header string `json:"header" mapstructure:"header"`

	// GeneratorType selects the built-in ID generator:
	//   - "random" or "hex": cryptographically random hex, 32 chars
	//   - "ulid": ULID, 26 chars, lexicographically sortable
	GeneratorType string `json:"generator_type" mapstructure:"generator_type"`
}

// NewRequestIDOptions creates default request ID middleware options.
func NewRequestIDOptions() *RequestIDOptions {
	return &RequestIDOptions{
		Header:        "X-Request-ID",
		GeneratorType: "random",
	}
}

// AddFlags adds flags for request ID options to the specified FlagSet.
func (o *RequestIDOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Header, options.Join(prefixes...)+"middleware.request-id.header", o.Header, "Request ID header name.")
	fs.StringVar(&o.GeneratorType, options.Join(prefixes...)+"middleware.request-id.generator", o.GeneratorType, "ID generator type: random/hex (32 chars) or ulid (26 chars, sortable).")
}

// Validate validates the request ID options.
func (o *RequestIDOptions) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	if o.Header == "" {
		errs = append(errs, errors.New("request ID header name is required"))
	}
	switch o.GeneratorType {
	case "", "random", "hex", "ulid":
	default:
		errs = append(errs, errors.New("invalid generator type: must be 'random', 'hex', or 'ulid'"))
	}
	return errs
}

// Complete completes the request ID options with defaults.
func (o *RequestIDOptions) Complete() error {
	if o.Header == "" {
		o.Header = "X-Request-ID"
	}
	return nil
}

// WithRequestID configures and enables the request ID middleware.
func WithRequestID(header string) Option {
	return func(o *Options) {
		o.DisableRequestID = false
		if o.RequestID == nil {
			o.RequestID = NewRequestIDOptions()
		}
		if header != "" {
			o.RequestID.Header = header
		}
	}
}

// WithoutRequestID disables the request ID middleware.
func WithoutRequestID() Option {
	return func(o *Options) { o.DisableRequestID = true }
}
