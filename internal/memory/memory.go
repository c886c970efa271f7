// Package memory manages the bounded per-identity conversation log used as
// AI context, plus the heuristic deciding when a message actually needs it.
package memory

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/emmovsixty/whatsapp-bot/internal/database"
)

// MaxEntries is the conversation log cap per identity. Oldest entries beyond
// it are deleted immediately after insert.
const MaxEntries = 7

// systemNoticePrefix marks synthetic assistant turns carrying operational
// notices (e.g. a focus status change) rather than real replies.
const systemNoticePrefix = "[SYSTEM NOTIFICATION] "

// contextKeywords are deictic/anaphoric, continuation, and WH-question words
// (Indonesian) whose presence means the message refers back to earlier turns.
var contextKeywords = []string{
	// references to the previous conversation
	"itu", "tadi", "sebelumnya", "kamu bilang", "kamu tanya",
	"maksudnya", "maksud", "yang", "gimana", "kenapa", "kok",
	"lagi", "masih", "udah", "belum",
	// follow-up questions
	"terus", "lalu", "habis itu", "abis itu",
	// clarification
	"hah", "apa", "siapa", "kapan", "dimana", "di mana",
}

// greetings never need history on their own.
var greetings = []string{"hai", "halo", "hi", "hello", "pam", "hei", "hey"}

// Store provides the conversational memory operations on top of the durable
// database store.
type Store struct {
	db     database.Store
	logger *slog.Logger
}

// NewStore creates a conversational memory store.
func NewStore(db database.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store{
		db:     db,
		logger: logger.With("component", "memory"),
	}
}

// AppendUser records a user turn for an identity.
func (s *Store) AppendUser(ctx context.Context, identity, content string) error {
	return s.append(ctx, identity, database.RoleUser, content)
}

// AppendAssistant records an assistant turn for an identity.
func (s *Store) AppendAssistant(ctx context.Context, identity, content string) error {
	return s.append(ctx, identity, database.RoleAssistant, content)
}

func (s *Store) append(ctx context.Context, identity, role, content string) error {
	entry := &database.ConversationEntry{
		Identity:  identity,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := s.db.AppendConversationEntry(ctx, entry, MaxEntries); err != nil {
		return fmt.Errorf("failed to append %s turn for %s: %w", role, identity, err)
	}
	return nil
}

// History returns the stored log for an identity, oldest first, capped at
// MaxEntries.
func (s *Store) History(ctx context.Context, identity string) ([]database.ConversationEntry, error) {
	return s.db.GetConversation(ctx, identity, MaxEntries)
}

// NeedsContext decides whether a message requires conversation history as AI
// context. Short messages and bare greetings skip history, which keeps simple
// replies fast; anything referring back to the conversation gets it.
func (s *Store) NeedsContext(message string) bool {
	lower := strings.ToLower(strings.TrimSpace(message))

	hasKeyword := false
	for _, kw := range contextKeywords {
		if strings.Contains(lower, kw) {
			hasKeyword = true
			break
		}
	}

	if len(message) < 10 && !hasKeyword {
		return false
	}

	for _, greeting := range greetings {
		if lower == greeting {
			return false
		}
	}

	if hasKeyword {
		return true
	}

	// Longer messages are likely complex questions.
	return len(message) > 15
}

// ContextualHistory returns the stored log only when the current message
// needs it, otherwise an empty slice.
func (s *Store) ContextualHistory(ctx context.Context, identity, message string) ([]database.ConversationEntry, error) {
	if !s.NeedsContext(message) {
		s.logger.DebugContext(ctx, "Skipping history, no context needed", "identity", identity)
		return nil, nil
	}
	return s.History(ctx, identity)
}

// InjectSystemNotice appends a synthetic assistant turn carrying an
// operational notice to every identity with at least one stored entry. Used
// to make a configuration change visible to the AI mid-conversation without
// messaging anyone directly. Returns how many conversations were updated.
func (s *Store) InjectSystemNotice(ctx context.Context, notice string) (int, error) {
	identities, err := s.db.GetConversationIdentities(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list conversations for system notice: %w", err)
	}

	updated := 0
	for _, identity := range identities {
		if err := s.AppendAssistant(ctx, identity, systemNoticePrefix+notice); err != nil {
			s.logger.WarnContext(ctx, "Failed to inject system notice", "identity", identity, "error", err)
			continue
		}
		updated++
	}

	s.logger.InfoContext(ctx, "System notice injected", "conversations", updated)
	return updated, nil
}

// Clear removes the stored log for one identity.
func (s *Store) Clear(ctx context.Context, identity string) error {
	return s.db.ClearConversation(ctx, identity)
}
