package logger

// EnhancedLoggerConfig configures the enhanced HTTP request logger:
// which paths to skip, whether to capture bodies, and what to redact.
type EnhancedLoggerConfig struct {
	// SkipPaths are exact request paths that are never logged.
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`

	// SkipHealthChecks additionally skips the well-known health probe
	// paths (/health, /healthz, /livez, /readyz).
	SkipHealthChecks bool `json:"skip-health-checks" mapstructure:"skip-health-checks"`

	// LogRequestBody captures and logs the request body.
	LogRequestBody bool `json:"log-request-body" mapstructure:"log-request-body"`

	// LogResponseBody captures and logs the response body.
	LogResponseBody bool `json:"log-response-body" mapstructure:"log-response-body"`

	// MaxBodyLogSize truncates logged bodies beyond this many bytes.
	MaxBodyLogSize int `json:"max-body-log-size" mapstructure:"max-body-log-size"`

	// CaptureHeaders are request headers copied into the log entry.
	CaptureHeaders []string `json:"capture-headers" mapstructure:"capture-headers"`

	// SensitiveHeaders are substrings that mark a captured body as
	// sensitive; a match redacts the whole body.
	SensitiveHeaders []string `json:"sensitive-headers" mapstructure:"sensitive-headers"`
}

// NewEnhancedLoggerConfig returns the default enhanced logger config:
// health probes skipped, bodies not captured, and the common credential
// field names redacted when body capture is turned on.
func NewEnhancedLoggerConfig() *EnhancedLoggerConfig {
	return &EnhancedLoggerConfig{
		SkipHealthChecks: true,
		LogRequestBody:   false,
		LogResponseBody:  false,
		MaxBodyLogSize:   4096,
		SensitiveHeaders: []string{"password", "token", "secret", "apikey", "authorization"},
	}
}
