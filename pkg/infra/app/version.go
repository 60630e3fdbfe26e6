package app

import "github.com/kart-io/version"

// GetVersion returns the git version string of the running binary.
func GetVersion() string {
	return version.Get().GitVersion
}

// GetVersionInfo returns the full build information, suitable for
// embedding in health and stats payloads.
func GetVersionInfo() version.Info {
	return version.Get()
}
