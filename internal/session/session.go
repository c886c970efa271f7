// Package session tracks the volatile conversational mode of each identity.
// State lives only in process memory; after a restart every identity is back
// to StateNone even when its durable intro flag says the greeting went out,
// which is what triggers the engine's soft-reset menu.
package session

import (
	"sync"
	"time"
)

// State is the conversational mode of one identity.
type State int

const (
	// StateNone means the identity has not passed the gatekeeper since
	// process start.
	StateNone State = iota
	// StateIntroSent means the greeting/menu went out and the engine is
	// waiting for a menu selection.
	StateIntroSent
	// StateChatWithOwner routes messages to the human owner; the AI never
	// replies in this state.
	StateChatWithOwner
	// StateChatWithAssistant routes messages to the AI assistant.
	StateChatWithAssistant
)

// String returns a log-friendly state name.
func (s State) String() string {
	switch s {
	case StateIntroSent:
		return "intro_sent"
	case StateChatWithOwner:
		return "chat_with_owner"
	case StateChatWithAssistant:
		return "chat_with_assistant"
	default:
		return "none"
	}
}

type entry struct {
	state   State
	touched time.Time
}

// Store holds the per-identity session states. Safe for concurrent use;
// callers that need read-then-transition atomicity serialize per identity
// at the engine level.
type Store struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get returns the current state for an identity, StateNone when untracked.
func (s *Store) Get(identity string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[identity].state
}

// Set records a state transition for an identity and touches its activity
// timestamp.
func (s *Store) Set(identity string, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[identity] = entry{state: state, touched: s.now()}
}

// Len returns the number of identities with a tracked session.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many were
// evicted. Evicted identities fall back to StateNone and will see the menu
// again on their next message.
func (s *Store) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	evicted := 0
	for identity, e := range s.entries {
		if e.touched.Before(cutoff) {
			delete(s.entries, identity)
			evicted++
		}
	}
	return evicted
}
