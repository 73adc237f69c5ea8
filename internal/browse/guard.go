// Package browse tracks which load is allowed to update a session's browse view.
package browse

import (
	"errors"
	"sync"
)

// ErrSuperseded reports that a newer load for the same session started first.
var ErrSuperseded = errors.New("browse: superseded by a newer request")

// Ticket identifies one load. Only the newest ticket per key may commit.
type Ticket struct {
	Key string
	Gen uint64
}

// Guard hands out generations from one counter, so a ticket never matches a key
// that was released and begun again.
type Guard struct {
	mu   sync.Mutex
	next uint64
	gens map[string]uint64
}

func NewGuard() *Guard { return &Guard{gens: map[string]uint64{}} }

// Begin issues a ticket that invalidates every earlier ticket for key.
func (g *Guard) Begin(key string) Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	g.gens[key] = g.next
	return Ticket{Key: key, Gen: g.next}
}

func (g *Guard) Current(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gens[t.Key] == t.Gen
}

// Commit runs apply only while t is still the newest ticket for its key. No Begin can
// interleave with apply.
func (g *Guard) Commit(t Ticket, apply func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gens[t.Key] != t.Gen {
		return false
	}
	apply()
	return true
}

// Release forgets key once its newest load is done. Older tickets stay invalid.
func (g *Guard) Release(t Ticket) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gens[t.Key] == t.Gen {
		delete(g.gens, t.Key)
	}
}

// Pending is the number of keys with a load in flight.
func (g *Guard) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.gens)
}
