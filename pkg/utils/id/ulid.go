package id

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ULIDGenerator generates Universally Unique Lexicographically Sortable
// Identifiers. IDs generated within the same millisecond are strictly
// monotonic.
type ULIDGenerator struct {
	mu      sync.Mutex
	entropy io.Reader
}

// ULIDOption is a functional option for ULIDGenerator.
type ULIDOption func(*ULIDGenerator)

// WithULIDEntropy sets a custom entropy source for ULID generation.
func WithULIDEntropy(r io.Reader) ULIDOption {
	return func(g *ULIDGenerator) {
		g.entropy = r
	}
}

// NewULIDGenerator creates a new ULID generator.
func NewULIDGenerator(opts ...ULIDOption) *ULIDGenerator {
	g := &ULIDGenerator{}

	for _, opt := range opts {
		opt(g)
	}

	if g.entropy == nil {
		g.entropy = ulid.Monotonic(rand.Reader, 0)
	}

	return g
}

// Generate creates a new ULID string.
// Panics if the entropy source fails (should never happen with crypto/rand).
func (g *ULIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
}

// GenerateN creates n ULID strings.
func (g *ULIDGenerator) GenerateN(n int) []string {
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = g.Generate()
	}
	return ids
}

// ParseULID parses a ULID string in strict mode.
func ParseULID(s string) (ulid.ULID, error) {
	u, err := ulid.ParseStrict(s)
	if err != nil {
		return ulid.ULID{}, ErrInvalidULID
	}
	return u, nil
}

// ULIDTime returns the time encoded in a ULID.
func ULIDTime(u ulid.ULID) time.Time {
	return ulid.Time(u.Time())
}

// IsValidULID checks if a string is a valid ULID format.
func IsValidULID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
