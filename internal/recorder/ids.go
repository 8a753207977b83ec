package recorder

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces execution ids.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates UUIDv7 ids, which sort by creation time.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns a predetermined sequence of ids.
// Panics when the sequence is exhausted.
type FixedGenerator struct {
	mu    sync.Mutex
	ids   []string
	index int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next id in the sequence.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.index >= len(g.ids) {
		panic(fmt.Sprintf("FixedGenerator exhausted after %d ids", len(g.ids)))
	}
	id := g.ids[g.index]
	g.index++
	return id
}
