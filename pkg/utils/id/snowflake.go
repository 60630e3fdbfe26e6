package id

import (
	"strconv"
	"sync"
	"time"
)

// Layout: 1 sign bit, 41 bits of millisecond timestamp, 10 bits of
// node ID, 12 bits of per-millisecond sequence.
const (
	snowflakeNodeBits = 10
	snowflakeSeqBits  = 12

	snowflakeMaxNode = (1 << snowflakeNodeBits) - 1
	snowflakeMaxSeq  = (1 << snowflakeSeqBits) - 1

	snowflakeTimeShift = snowflakeNodeBits + snowflakeSeqBits
	snowflakeNodeShift = snowflakeSeqBits

	// snowflakeEpoch is 2024-01-01 00:00:00 UTC in milliseconds.
	snowflakeEpoch = int64(1704067200000)

	// maxClockDriftMs bounds how far backwards the clock may step
	// before generation gives up instead of blocking.
	maxClockDriftMs = 5000
)

// SnowflakeGenerator produces sortable 64-bit IDs. IDs generated on
// the same node are strictly increasing; across nodes they sort by
// millisecond.
type SnowflakeGenerator struct {
	mu       sync.Mutex
	epoch    int64
	nodeID   int64
	lastTime int64
	sequence int64
	timeFunc func() int64
}

// SnowflakeOption configures a SnowflakeGenerator.
type SnowflakeOption func(*SnowflakeGenerator)

// WithNodeID sets the node ID (0-1023).
func WithNodeID(nodeID int64) SnowflakeOption {
	return func(g *SnowflakeGenerator) {
		g.nodeID = nodeID
	}
}

// WithEpoch overrides the epoch, in milliseconds.
func WithEpoch(epoch int64) SnowflakeOption {
	return func(g *SnowflakeGenerator) {
		g.epoch = epoch
	}
}

// WithTimeFunc injects a clock, used by tests.
func WithTimeFunc(f func() int64) SnowflakeOption {
	return func(g *SnowflakeGenerator) {
		g.timeFunc = f
	}
}

// NewSnowflakeGenerator creates a Snowflake generator.
func NewSnowflakeGenerator(opts ...SnowflakeOption) (*SnowflakeGenerator, error) {
	g := &SnowflakeGenerator{
		epoch:    snowflakeEpoch,
		timeFunc: func() int64 { return time.Now().UnixMilli() },
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.nodeID < 0 || g.nodeID > snowflakeMaxNode {
		return nil, ErrInvalidNodeID
	}
	return g, nil
}

// Generate returns a new ID in decimal string form.
func (g *SnowflakeGenerator) Generate() string {
	return strconv.FormatInt(g.GenerateInt64(), 10)
}

// GenerateN returns n new IDs.
func (g *SnowflakeGenerator) GenerateN(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = g.Generate()
	}
	return ids
}

// GenerateInt64 returns a new ID as int64.
func (g *SnowflakeGenerator) GenerateInt64() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.resolveClock(g.timeFunc())

	if now == g.lastTime {
		g.sequence = (g.sequence + 1) & snowflakeMaxSeq
		if g.sequence == 0 {
			// 4096 IDs burned in one millisecond, spin to the next
			now = g.spinUntilAfter(g.lastTime)
		}
	} else {
		g.sequence = 0
	}
	g.lastTime = now

	return ((now - g.epoch) << snowflakeTimeShift) |
		(g.nodeID << snowflakeNodeShift) |
		g.sequence
}

// resolveClock handles the clock stepping backwards. A small step is
// waited out under the lock so no duplicate IDs can be issued; a step
// beyond maxClockDriftMs means the host clock is broken and we panic.
func (g *SnowflakeGenerator) resolveClock(now int64) int64 {
	if now >= g.lastTime {
		return now
	}
	if g.lastTime-now > maxClockDriftMs {
		panic(ErrClockMovedBackward)
	}
	return g.spinUntilAfter(g.lastTime - 1)
}

// spinUntilAfter blocks until the clock passes t. Callers hold the lock.
func (g *SnowflakeGenerator) spinUntilAfter(t int64) int64 {
	now := g.timeFunc()
	for now <= t {
		time.Sleep(time.Millisecond)
		now = g.timeFunc()
	}
	return now
}

// SnowflakeID is a decomposed Snowflake ID.
type SnowflakeID struct {
	ID        int64
	Timestamp int64 // unix milliseconds
	NodeID    int64
	Sequence  int64
}

// ParseSnowflake splits an ID into its components.
func ParseSnowflake(id int64) SnowflakeID {
	return SnowflakeID{
		ID:        id,
		Timestamp: (id >> snowflakeTimeShift) + snowflakeEpoch,
		NodeID:    (id >> snowflakeNodeShift) & snowflakeMaxNode,
		Sequence:  id & snowflakeMaxSeq,
	}
}

// ParseSnowflakeString parses a decimal ID string.
func ParseSnowflakeString(s string) (SnowflakeID, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return SnowflakeID{}, err
	}
	return ParseSnowflake(id), nil
}

// Time returns the generation time of the ID.
func (s SnowflakeID) Time() time.Time {
	return time.UnixMilli(s.Timestamp)
}

func (s SnowflakeID) String() string {
	return strconv.FormatInt(s.ID, 10)
}
