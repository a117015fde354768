package testutil

import "sync"

// FixedRunIDs returns predetermined run ids in order.
//
//	ids := NewFixedRunIDs("run-1", "run-2")
//	ids.Generate() // "run-1"
//	ids.Generate() // "run-2"
//	ids.Generate() // panic: all ids exhausted
//
// Thread-safety: safe for concurrent use.
type FixedRunIDs struct {
	mu  sync.Mutex
	ids []string
	idx int
}

func NewFixedRunIDs(ids ...string) *FixedRunIDs {
	return &FixedRunIDs{ids: ids}
}

// Generate returns the next id. It panics once the ids are used up, which
// catches a test creating more runs than it expected.
func (g *FixedRunIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.ids) {
		panic("FixedRunIDs: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
