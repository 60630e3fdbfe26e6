// Package milvusopts holds connection options for the Milvus vector store.
package milvusopts

import (
	"fmt"
	"time"

	"github.com/kart-io/formfill/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options configures the Milvus client connection.
type Options struct {
	// Address is host:port of the Milvus server.
	Address string `json:"address" mapstructure:"address"`

	// Database selects the Milvus database.
	Database string `json:"database" mapstructure:"database"`

	// Username and Password authenticate the connection when the
	// server has auth enabled.
	Username string `json:"username" mapstructure:"username"`
	Password string `json:"password" mapstructure:"password"`

	// Timeout bounds connecting and individual operations.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// PoolSize is the connection pool size.
	PoolSize int `json:"pool-size" mapstructure:"pool-size"`
}

// NewOptions returns Milvus options with localhost defaults.
func NewOptions() *Options {
	return &Options{
		Address:  "localhost:19530",
		Database: "default",
		Timeout:  30 * time.Second,
		PoolSize: 10,
	}
}

// AddFlags registers Milvus flags, optionally under a dotted prefix.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	prefix := options.Join(prefixes...)
	fs.StringVar(&o.Address, prefix+"milvus.address", o.Address, "Milvus server address (host:port).")
	fs.StringVar(&o.Database, prefix+"milvus.database", o.Database, "Milvus database name.")
	fs.StringVar(&o.Username, prefix+"milvus.username", o.Username, "Milvus username for authentication.")
	fs.StringVar(&o.Password, prefix+"milvus.password", o.Password, "Milvus password for authentication.")
	fs.DurationVar(&o.Timeout, prefix+"milvus.timeout", o.Timeout, "Connection and operation timeout.")
	fs.IntVar(&o.PoolSize, prefix+"milvus.pool-size", o.PoolSize, "Connection pool size.")
}

// Validate rejects a missing address and non-positive timeouts.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Address == "" {
		errs = append(errs, fmt.Errorf("milvus address is required"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("milvus timeout must be positive"))
	}
	return errs
}
