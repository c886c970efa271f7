// Package bot implements the message routing engine, its VIP escalation
// rules, and the lifecycle management tying the HTTP server and scheduler
// together.
package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/emmovsixty/whatsapp-bot/internal/ai"
	"github.com/emmovsixty/whatsapp-bot/internal/config"
	"github.com/emmovsixty/whatsapp-bot/internal/database"
	"github.com/emmovsixty/whatsapp-bot/internal/dedup"
	"github.com/emmovsixty/whatsapp-bot/internal/filter"
	"github.com/emmovsixty/whatsapp-bot/internal/identity"
	"github.com/emmovsixty/whatsapp-bot/internal/memory"
	"github.com/emmovsixty/whatsapp-bot/internal/notify"
	"github.com/emmovsixty/whatsapp-bot/internal/persona"
	"github.com/emmovsixty/whatsapp-bot/internal/session"
	"github.com/emmovsixty/whatsapp-bot/internal/transport"
)

// aiReplyPrefix marks AI-generated replies so recipients can tell them from
// the owner's own messages.
const aiReplyPrefix = "🤖 "

// menuChoices accepted while a session waits in the intro state.
const (
	choiceOwner     = "1"
	choiceAssistant = "2"
)

// Engine is the message routing core. One instance handles all identities;
// per-identity ordering is enforced with a keyed mutex so the session FSM
// never sees interleaved transitions for the same sender.
type Engine struct {
	logger   *slog.Logger
	cfg      *config.Config
	store    database.Store
	sessions *session.Store
	memory   *memory.Store
	guard    *dedup.Guard
	aiClient ai.Client
	sender   transport.Sender
	escalate *escalator
	names    persona.Names

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewEngine wires the routing engine from its collaborators.
func NewEngine(
	logger *slog.Logger,
	cfg *config.Config,
	store database.Store,
	sessions *session.Store,
	mem *memory.Store,
	guard *dedup.Guard,
	aiClient ai.Client,
	sender transport.Sender,
	notifier notify.Notifier,
) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		logger:   logger.With("component", "engine"),
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		memory:   mem,
		guard:    guard,
		aiClient: aiClient,
		sender:   sender,
		escalate: newEscalator(cfg.VIP, notifier, logger),
		names: persona.Names{
			Owner:     cfg.Bot.OwnerName,
			Assistant: cfg.Bot.AssistantName,
		},
		locks: make(map[string]*sync.Mutex),
	}
}

// HandleMessage runs one inbound message through the full pipeline: dedup,
// gatekeeping, session routing, and reply generation. It never returns an
// error; failures are logged and the message is dropped or answered with a
// fallback, so a bad message cannot take the webhook down.
func (e *Engine) HandleMessage(ctx context.Context, msg transport.Message) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "Panic while handling message", "panic", r, "message_id", msg.ID)
		}
	}()

	log := e.logger.With("message_id", msg.ID)

	// Dedup runs before everything else so a redelivery has zero effect.
	if !e.guard.Admit(msg.ID) {
		log.DebugContext(ctx, "Dropping duplicate message")
		return
	}

	if msg.IsGroup || msg.IsSelf {
		log.DebugContext(ctx, "Ignoring message", "group", msg.IsGroup, "self", msg.IsSelf)
		return
	}

	raw := msg.SenderResolved
	if raw == "" {
		raw = msg.Sender
	}
	id := identity.Normalize(raw)
	if !identity.Valid(id) {
		log.WarnContext(ctx, "Dropping message with invalid sender identity", "sender", raw)
		return
	}
	log = log.With("identity", id)

	body := filter.Normalize(msg.Body)

	active, err := e.store.IsBotActive(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read bot active flag", "error", err)
		return
	}
	if !active {
		log.DebugContext(ctx, "Bot inactive, ignoring message")
		return
	}

	whitelisted, err := e.store.IsWhitelisted(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "Failed to check whitelist", "error", err)
		return
	}
	if !whitelisted {
		log.DebugContext(ctx, "Sender not whitelisted, ignoring message")
		return
	}

	if filter.IsSpam(body) {
		log.InfoContext(ctx, "Dropping spam message", "length", len(body))
		if e.cfg.Bot.SpamNoticeEnabled {
			e.send(ctx, log, id, e.cfg.Bot.Messages.SpamNotice)
		}
		return
	}

	if err := e.store.TouchLastActive(ctx, id); err != nil {
		log.WarnContext(ctx, "Failed to touch last active", "error", err)
	}

	unlock := e.lockIdentity(id)
	defer unlock()

	state := e.sessions.Get(id)
	log = log.With("state", state.String())

	switch state {
	case session.StateNone:
		e.handleFirstContact(ctx, log, id)
	case session.StateIntroSent:
		e.handleMenuChoice(ctx, log, id, body)
	case session.StateChatWithOwner:
		e.handleOwnerChat(ctx, log, id, body)
	case session.StateChatWithAssistant:
		e.handleAssistantChat(ctx, log, id, body)
	}
}

// lockIdentity serializes handling per identity. The returned func releases
// the lock.
func (e *Engine) lockIdentity(id string) func() {
	e.mu.Lock()
	l, ok := e.locks[id]
	if !ok {
		l = &sync.Mutex{}
		e.locks[id] = l
	}
	e.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// handleFirstContact greets an identity with no session. Identities seen
// before a restart get a shorter re-introduction instead of the full intro.
func (e *Engine) handleFirstContact(ctx context.Context, log *slog.Logger, id string) {
	introSent, err := e.store.HasIntroBeenSent(ctx, id)
	if err != nil {
		log.ErrorContext(ctx, "Failed to read intro flag", "error", err)
		return
	}

	if introSent {
		// Soft reset: skip the full greeting but always show the options.
		e.send(ctx, log, id, e.cfg.Bot.Messages.MenuAgain+"\n\n"+e.cfg.Bot.Messages.MenuPrompt)
		e.sessions.Set(id, session.StateIntroSent)
		log.InfoContext(ctx, "Session resumed after restart, menu re-sent")
		return
	}

	vip, err := e.store.GetVIPContact(ctx, id)
	if err != nil {
		log.WarnContext(ctx, "Failed to look up VIP contact", "error", err)
	}

	focus := e.focusStatus(ctx, log)
	intro := persona.ForContact(e.names, vip).IntroMessage(focus)
	e.send(ctx, log, id, intro+"\n\n"+e.cfg.Bot.Messages.MenuPrompt)

	if err := e.store.MarkIntroSent(ctx, id); err != nil {
		log.ErrorContext(ctx, "Failed to mark intro sent", "error", err)
	}
	e.sessions.Set(id, session.StateIntroSent)
	log.InfoContext(ctx, "Intro sent", "vip", vip != nil)
}

// handleMenuChoice processes the menu selection after the intro.
func (e *Engine) handleMenuChoice(ctx context.Context, log *slog.Logger, id, body string) {
	switch body {
	case choiceOwner:
		e.sessions.Set(id, session.StateChatWithOwner)
		e.send(ctx, log, id, e.cfg.Bot.Messages.OwnerAck)
		log.InfoContext(ctx, "Menu choice made", "choice", "owner")
	case choiceAssistant:
		e.sessions.Set(id, session.StateChatWithAssistant)
		e.send(ctx, log, id, e.cfg.Bot.Messages.AssistantHi)
		log.InfoContext(ctx, "Menu choice made", "choice", "assistant")
	default:
		e.send(ctx, log, id, e.cfg.Bot.Messages.InvalidChoice)
		log.DebugContext(ctx, "Invalid menu choice", "length", len(body))
	}
}

// handleOwnerChat leaves messages for the human owner. The only automated
// behavior here is VIP escalation: an urgent push on every VIP message, and
// an after-hours auto-reply at most once per process lifetime.
func (e *Engine) handleOwnerChat(ctx context.Context, log *slog.Logger, id, body string) {
	vip, err := e.store.GetVIPContact(ctx, id)
	if err != nil {
		log.WarnContext(ctx, "Failed to look up VIP contact", "error", err)
		return
	}
	if vip == nil {
		log.DebugContext(ctx, "Message left for owner")
		return
	}

	now := time.Now()
	e.escalate.pushAlert(ctx, log, vip, body, now)

	if e.escalate.shouldAutoReply(id, now) {
		focus := e.focusStatus(ctx, log)
		reply := persona.AfterHoursMessage(e.names, vip.Name, focus)
		e.send(ctx, log, id, reply)
		log.InfoContext(ctx, "After-hours auto-reply sent to VIP")
	}
}

// handleAssistantChat escalates VIP messages, then generates an AI reply.
func (e *Engine) handleAssistantChat(ctx context.Context, log *slog.Logger, id, body string) {
	vip, err := e.store.GetVIPContact(ctx, id)
	if err != nil {
		log.WarnContext(ctx, "Failed to look up VIP contact", "error", err)
	}
	if vip != nil {
		e.escalate.pushAlert(ctx, log, vip, body, time.Now())
	}

	reply, genErr := e.generateReply(ctx, log, id, body, vip)

	if genErr != nil {
		// The user's turn still counts toward history; the fallback text
		// does not, so the AI never sees its own apology as context.
		if err := e.memory.AppendUser(ctx, id, body); err != nil {
			log.WarnContext(ctx, "Failed to persist user turn", "error", err)
		}
		log.ErrorContext(ctx, "AI reply generation failed, sending fallback", "error", genErr)
		e.send(ctx, log, id, e.cfg.Bot.Messages.AIFallback)
		return
	}

	if err := e.memory.AppendUser(ctx, id, body); err != nil {
		log.WarnContext(ctx, "Failed to persist user turn", "error", err)
	}
	if err := e.memory.AppendAssistant(ctx, id, reply); err != nil {
		log.WarnContext(ctx, "Failed to persist assistant turn", "error", err)
	}
	e.send(ctx, log, id, reply)
}

// generateReply builds the prompt from persona and contextual history and
// calls the AI under the configured timeout.
func (e *Engine) generateReply(ctx context.Context, log *slog.Logger, id, body string, vip *database.VIPContact) (string, error) {
	focus := e.focusStatus(ctx, log)
	p := persona.ForContact(e.names, vip)

	history, err := e.memory.ContextualHistory(ctx, id, body)
	if err != nil {
		log.WarnContext(ctx, "Failed to load conversation history, continuing without", "error", err)
		history = nil
	}

	prompt := make([]ai.Message, 0, len(history)+2)
	prompt = append(prompt, ai.Message{Role: ai.RoleSystem, Content: p.SystemPrompt(focus)})
	for _, entry := range history {
		role := ai.RoleUser
		if entry.Role == database.RoleAssistant {
			role = ai.RoleAssistant
		}
		prompt = append(prompt, ai.Message{Role: role, Content: entry.Content})
	}
	prompt = append(prompt, ai.Message{Role: ai.RoleUser, Content: body})

	aiCtx, cancel := context.WithTimeout(ctx, e.cfg.AI.Timeout)
	defer cancel()

	start := time.Now()
	text, err := e.aiClient.Complete(aiCtx, prompt)
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	log.DebugContext(ctx, "AI reply generated",
		"history_turns", len(history), "duration", time.Since(start))
	return aiReplyPrefix + text, nil
}

func (e *Engine) focusStatus(ctx context.Context, log *slog.Logger) string {
	focus, err := e.store.GetFocusStatus(ctx)
	if err != nil {
		log.WarnContext(ctx, "Failed to read focus status, using default", "error", err)
		return database.DefaultFocusStatus
	}
	return focus
}

func (e *Engine) send(ctx context.Context, log *slog.Logger, recipient, text string) {
	if err := e.sender.Send(ctx, recipient, text); err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err)
	}
}
