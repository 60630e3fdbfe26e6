package id

import "errors"

// Sentinel errors shared by the generators in this package.
var (
	ErrInvalidUUID        = errors.New("invalid UUID format")
	ErrInvalidULID        = errors.New("invalid ULID format")
	ErrInvalidNodeID      = errors.New("node ID must be between 0 and 1023")
	ErrClockMovedBackward = errors.New("clock moved backward")
	ErrSequenceOverflow   = errors.New("sequence overflow")
)
