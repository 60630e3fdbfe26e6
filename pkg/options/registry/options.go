// Package registry provides document registry database options.
package registry

import (
	"fmt"

	"github.com/kart-io/formfill/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Supported registry database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Options contains document registry database configuration.
type Options struct {
	// Driver 数据库驱动：sqlite 或 mysql。
	Driver string `json:"driver" mapstructure:"driver"`

	// Path SQLite 数据库文件路径（仅 sqlite 驱动使用）。
	Path string `json:"path" mapstructure:"path"`

	// DSN MySQL 连接串（仅 mysql 驱动使用）。
	DSN string `json:"dsn" mapstructure:"dsn"`

	// MaxOpenConnections 最大打开连接数。
	MaxOpenConnections int `json:"max-open-connections" mapstructure:"max-open-connections"`

	// MaxIdleConnections 最大空闲连接数。
	MaxIdleConnections int `json:"max-idle-connections" mapstructure:"max-idle-connections"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Driver:             DriverSQLite,
		Path:               "formfill.db",
		MaxOpenConnections: 10,
		MaxIdleConnections: 5,
	}
}

// AddFlags adds flags for registry options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Driver, options.Join(prefixes...)+"registry.driver", o.Driver, "Document registry database driver (sqlite or mysql).")
	fs.StringVar(&o.Path, options.Join(prefixes...)+"registry.path", o.Path, "SQLite database file path.")
	fs.StringVar(&o.DSN, options.Join(prefixes...)+"registry.dsn", o.DSN, "MySQL data source name.")
	fs.IntVar(&o.MaxOpenConnections, options.Join(prefixes...)+"registry.max-open-connections", o.MaxOpenConnections, "Maximum number of open database connections.")
	fs.IntVar(&o.MaxIdleConnections, options.Join(prefixes...)+"registry.max-idle-connections", o.MaxIdleConnections, "Maximum number of idle database connections.")
}

// Validate validates the registry options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	switch o.Driver {
	case DriverSQLite:
		if o.Path == "" {
			errs = append(errs, fmt.Errorf("registry path is required for sqlite driver"))
		}
	case DriverMySQL:
		if o.DSN == "" {
			errs = append(errs, fmt.Errorf("registry dsn is required for mysql driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported registry driver %q", o.Driver))
	}
	return errs
}
