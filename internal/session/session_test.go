package session_test

import (
	"testing"
	"time"

	"github.com/emmovsixty/whatsapp-bot/internal/session"
)

func TestStoreDefaultsToNone(t *testing.T) {
	t.Parallel()

	s := session.NewStore()
	if got := s.Get("6281234567890"); got != session.StateNone {
		t.Errorf("Get() on untracked identity = %v, want StateNone", got)
	}
}

func TestStoreSetAndGet(t *testing.T) {
	t.Parallel()

	s := session.NewStore()
	const id = "6281234567890"

	transitions := []session.State{
		session.StateIntroSent,
		session.StateChatWithAssistant,
		session.StateChatWithOwner,
	}
	for _, state := range transitions {
		s.Set(id, state)
		if got := s.Get(id); got != state {
			t.Errorf("Get() after Set(%v) = %v", state, got)
		}
	}

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStoreIsolatesIdentities(t *testing.T) {
	t.Parallel()

	s := session.NewStore()
	s.Set("628111", session.StateChatWithOwner)
	s.Set("628222", session.StateChatWithAssistant)

	if got := s.Get("628111"); got != session.StateChatWithOwner {
		t.Errorf("identity 628111 state = %v, want StateChatWithOwner", got)
	}
	if got := s.Get("628222"); got != session.StateChatWithAssistant {
		t.Errorf("identity 628222 state = %v, want StateChatWithAssistant", got)
	}
}

func TestSweepEvictsIdleSessions(t *testing.T) {
	t.Parallel()

	s := session.NewStore()
	s.Set("628111", session.StateChatWithAssistant)
	s.Set("628222", session.StateIntroSent)

	// Nothing is idle yet.
	if evicted := s.Sweep(time.Hour); evicted != 0 {
		t.Errorf("Sweep() evicted %d fresh sessions", evicted)
	}

	// Zero idle tolerance evicts everything touched before now.
	time.Sleep(10 * time.Millisecond)
	if evicted := s.Sweep(0); evicted != 2 {
		t.Errorf("Sweep(0) = %d, want 2", evicted)
	}
	if s.Len() != 0 {
		t.Errorf("Len() after sweep = %d, want 0", s.Len())
	}

	// Evicted identities read as StateNone again.
	if got := s.Get("628111"); got != session.StateNone {
		t.Errorf("Get() after eviction = %v, want StateNone", got)
	}
}

func TestStateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state    session.State
		expected string
	}{
		{session.StateNone, "none"},
		{session.StateIntroSent, "intro_sent"},
		{session.StateChatWithOwner, "chat_with_owner"},
		{session.StateChatWithAssistant, "chat_with_assistant"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.expected {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.expected)
		}
	}
}
