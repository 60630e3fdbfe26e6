// Package server provides a unified multi-protocol server framework
// supporting HTTP and gRPC with pluggable adapters.
package server

import "context"

// Lifecycle is the start/stop contract every transport implements.
// Stop is expected to drain in-flight work before returning.
type Lifecycle interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Server is an alias for Lifecycle, representing a runnable server.
type Server = Lifecycle

// Runnable is a named Lifecycle, so the manager can report which
// transport failed during startup or shutdown.
type Runnable interface {
	Lifecycle
	Name() string
}
