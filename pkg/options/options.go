// Package options defines the contract shared by all option groups and
// small helpers for composing flag names.
package options

import (
	"strings"

	"github.com/spf13/pflag"
)

// IOptions is implemented by every option group that binds to flags.
type IOptions interface {
	// Validate checks required fields and may normalize values in place.
	Validate() []error

	// AddFlags binds the group's flags, optionally under a dotted prefix.
	AddFlags(fs *pflag.FlagSet, prefixes ...string)
}

// Join builds a dotted flag-name prefix from the given segments,
// including the trailing dot: Join("server") + "http.addr" yields
// "server.http.addr". With no segments it returns "".
func Join(prefixes ...string) string {
	joined := strings.Join(prefixes, ".")
	if joined != "" {
		joined += "."
	}
	return joined
}
