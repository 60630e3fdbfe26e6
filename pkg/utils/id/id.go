// Package id generates unique identifiers.
//
// Three strategies are available, each behind a Generator:
//   - UUID v4: random, no ordering guarantees
//   - Snowflake: time-based and sortable, needs a node ID in clusters
//   - ULID: lexicographically sortable, the default for document IDs
//
// Package-level helpers use lazily initialized shared generators:
//
//	docID := id.NewULID()      // "01ARZ3NDEKTSV4RRFFQ69G5FAV"
//	reqID := id.NewUUID()      // "550e8400-e29b-41d4-a716-446655440000"
//
// For custom configuration construct a generator directly:
//
//	gen := id.Must(id.NewSnowflakeGenerator(id.WithNodeID(1)))
package id

import (
	"sync"
)

// Generator produces unique string IDs.
type Generator interface {
	// Generate creates one unique ID.
	Generate() string

	// GenerateN creates n unique IDs.
	GenerateN(n int) []string
}

// Type selects an ID generation strategy.
type Type string

const (
	TypeUUID      Type = "uuid"
	TypeSnowflake Type = "snowflake"
	TypeULID      Type = "ulid"
)

var (
	initOnce         sync.Once
	defaultUUID      Generator
	defaultSnowflake Generator
	defaultULID      Generator
)

func defaults() (uuid, snowflake, ulid Generator) {
	initOnce.Do(func() {
		defaultUUID = NewUUIDGenerator()
		defaultSnowflake, _ = NewSnowflakeGenerator()
		defaultULID = NewULIDGenerator()
	})
	return defaultUUID, defaultSnowflake, defaultULID
}

// NewUUID returns a UUID v4 from the shared generator.
func NewUUID() string {
	uuid, _, _ := defaults()
	return uuid.Generate()
}

// NewSnowflake returns a Snowflake ID from the shared generator.
func NewSnowflake() string {
	_, snowflake, _ := defaults()
	return snowflake.Generate()
}

// NewULID returns a ULID from the shared generator.
func NewULID() string {
	_, _, ulid := defaults()
	return ulid.Generate()
}

// New generates an ID of the given type, defaulting to UUID for
// unknown types.
func New(t Type) string {
	switch t {
	case TypeSnowflake:
		return NewSnowflake()
	case TypeULID:
		return NewULID()
	default:
		return NewUUID()
	}
}

// Must unwraps a (value, error) pair, panicking on error.
func Must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
