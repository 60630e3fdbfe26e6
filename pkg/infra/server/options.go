// Package server provides server manager configuration options.
package server

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	mwopts "github.com/kart-io/formfill/pkg/options/middleware"
	grpcopts "github.com/kart-io/formfill/pkg/options/server/grpc"
	httpopts "github.com/kart-io/formfill/pkg/options/server/http"
)

// Mode 表示服务启动模式。自动填充 API 默认 HTTP + gRPC 双协议对外，
// 纯内网部署可只保留 gRPC。
type Mode int

const (
	// ModeHTTPOnly 仅启动 HTTP 服务。
	ModeHTTPOnly Mode = 1 << iota
	// ModeGRPCOnly 仅启动 gRPC 服务。
	ModeGRPCOnly
	// ModeBoth 同时启动 HTTP 与 gRPC 服务。
	ModeBoth = ModeHTTPOnly | ModeGRPCOnly
)

var modeNames = map[Mode]string{
	ModeHTTPOnly: "http",
	ModeGRPCOnly: "grpc",
	ModeBoth:     "both",
}

// String returns the flag-friendly name of the mode.
func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMode 解析命令行/配置中的模式字符串。
func ParseMode(s string) (Mode, error) {
	for mode, name := range modeNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("invalid mode: %s", s)
}

// Options 汇聚服务管理器的全部配置。
type Options struct {
	// Mode determines which servers to start.
	Mode Mode `json:"mode" mapstructure:"-"`

	// ModeString is the string representation of mode for flags.
	ModeString string `json:"mode-string" mapstructure:"mode"`

	HTTP       *httpopts.Options `json:"http" mapstructure:"http"`
	GRPC       *grpcopts.Options `json:"grpc" mapstructure:"grpc"`
	Middleware *mwopts.Options   `json:"middleware" mapstructure:"middleware"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// Option is a function that configures Options.
type Option func(*Options)

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		Mode:            ModeBoth,
		ModeString:      ModeBoth.String(),
		HTTP:            httpopts.NewOptions(),
		GRPC:            grpcopts.NewOptions(),
		Middleware:      mwopts.NewOptions(),
		ShutdownTimeout: 30 * time.Second,
	}
}

// AddFlags adds flags for server options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.ModeString, "server.mode", o.ModeString, "Server mode: http, grpc, or both")
	fs.DurationVar(&o.ShutdownTimeout, "server.shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")

	o.HTTP.AddFlags(fs, "server.")
	o.GRPC.AddFlags(fs)
	o.Middleware.AddFlags(fs, "server.")
}

// Validate 校验启用的各个子选项。
func (o *Options) Validate() error {
	if o.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown-timeout must be positive")
	}

	if o.EnableHTTP() {
		if err := utilerrors.NewAggregate(o.HTTP.Validate()); err != nil {
			return err
		}
		if err := o.Middleware.Validate(); err != nil {
			return err
		}
	}

	if o.EnableGRPC() {
		if err := o.GRPC.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Complete 解析模式字符串并补全子选项的默认值。
func (o *Options) Complete() error {
	if o.ModeString != "" {
		mode, err := ParseMode(o.ModeString)
		if err != nil {
			return err
		}
		o.Mode = mode
	}

	if o.HTTP != nil {
		if err := o.HTTP.Complete(); err != nil {
			return err
		}
	}
	if o.GRPC != nil {
		if err := o.GRPC.Complete(); err != nil {
			return err
		}
	}

	if o.Middleware == nil {
		o.Middleware = mwopts.NewOptions()
	}
	return o.Middleware.Complete()
}

// EnableHTTP returns true if the HTTP server should be started.
func (o *Options) EnableHTTP() bool {
	return o.Mode&ModeHTTPOnly != 0
}

// EnableGRPC returns true if the gRPC server should be started.
func (o *Options) EnableGRPC() bool {
	return o.Mode&ModeGRPCOnly != 0
}

// ApplyOptions applies the given options to the Options.
func (o *Options) ApplyOptions(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithMode sets the server mode.
func WithMode(mode Mode) Option {
	return func(o *Options) {
		o.Mode = mode
		o.ModeString = mode.String()
	}
}

// WithHTTPOptions sets HTTP server options.
func WithHTTPOptions(opts *httpopts.Options) Option {
	return func(o *Options) {
		o.HTTP = opts
	}
}

// WithGRPCOptions sets gRPC server options.
func WithGRPCOptions(opts *grpcopts.Options) Option {
	return func(o *Options) {
		o.GRPC = opts
	}
}

// WithMiddleware sets HTTP middleware options.
func WithMiddleware(opts *mwopts.Options) Option {
	return func(o *Options) {
		o.Middleware = opts
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ShutdownTimeout = d
	}
}
