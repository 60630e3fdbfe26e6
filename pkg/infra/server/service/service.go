// Package service defines the service contracts used by the server manager.
package service

import "context"

// Service is the minimal contract every registered service implements.
type Service interface {
	// ServiceName returns the unique name of the service.
	ServiceName() string
}

// Initializable is implemented by services that need initialization before serving.
type Initializable interface {
	// Init initializes the service.
	Init(ctx context.Context) error
}

// Closeable is implemented by services that hold resources to release on shutdown.
type Closeable interface {
	// Close releases the service's resources.
	Close(ctx context.Context) error
}
