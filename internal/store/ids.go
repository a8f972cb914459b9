package store

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces record ids. Implementations must be safe for
// concurrent use.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered UUIDv7 record ids.
//
// A UUIDv7 carries a 48-bit millisecond timestamp followed by random bits,
// so ids sort by creation time and are unique within a process for all
// practical purposes. Collisions are not checked.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
//
// Panics if the random source fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// SequenceGenerator returns deterministic ids of the form "<prefix>-0001",
// "<prefix>-0002", ... for tests and scenario runs.
type SequenceGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceGenerator creates a generator whose first id is "<prefix>-0001".
func NewSequenceGenerator(prefix string) *SequenceGenerator {
	return &SequenceGenerator{prefix: prefix}
}

// Generate returns the next id in the sequence.
func (g *SequenceGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
