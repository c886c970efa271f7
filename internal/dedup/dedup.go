// Package dedup guards against transport re-delivery of message events.
package dedup

import "sync"

// DefaultCapacity matches the transport's observed redelivery window.
const DefaultCapacity = 100

// Guard is a bounded set of recently seen message ids with insertion-order
// FIFO eviction. It runs before any state mutation so duplicates have zero
// side effects. Safe for concurrent use.
type Guard struct {
	mu       sync.Mutex
	capacity int
	ring     []string
	next     int
	seen     map[string]struct{}
}

// NewGuard creates a Guard holding at most capacity ids. Non-positive
// capacities fall back to DefaultCapacity.
func NewGuard(capacity int) *Guard {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Guard{
		capacity: capacity,
		ring:     make([]string, 0, capacity),
		seen:     make(map[string]struct{}, capacity),
	}
}

// Admit reports whether the message id is new. A new id is recorded and
// accepted; a known id is rejected without mutating the set. When the set is
// full the earliest-inserted id is evicted, regardless of how recently it was
// looked up.
func (g *Guard) Admit(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.seen[id]; ok {
		return false
	}

	if len(g.ring) < g.capacity {
		g.ring = append(g.ring, id)
	} else {
		delete(g.seen, g.ring[g.next])
		g.ring[g.next] = id
		g.next = (g.next + 1) % g.capacity
	}
	g.seen[id] = struct{}{}
	return true
}

// Len returns the number of ids currently tracked.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.seen)
}
