// Package admin exposes the owner's control surface as a JSON HTTP API. It
// also mounts the gateway webhook, so one listener serves both.
package admin

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/emmovsixty/whatsapp-bot/internal/config"
	"github.com/emmovsixty/whatsapp-bot/internal/database"
	"github.com/emmovsixty/whatsapp-bot/internal/identity"
	"github.com/emmovsixty/whatsapp-bot/internal/memory"
	"github.com/emmovsixty/whatsapp-bot/internal/notify"
	"github.com/emmovsixty/whatsapp-bot/internal/session"
)

// activeWindow is the lookback used by the active contacts listing.
const activeWindow = 24 * time.Hour

// Server handles the admin API routes.
type Server struct {
	logger   *slog.Logger
	cfg      *config.Config
	store    database.Store
	sessions *session.Store
	memory   *memory.Store
	notifier notify.Notifier
}

// NewServer creates the admin API server.
func NewServer(
	logger *slog.Logger,
	cfg *config.Config,
	store database.Store,
	sessions *session.Store,
	mem *memory.Store,
	notifier notify.Notifier,
) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		logger:   logger.With("component", "admin"),
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		memory:   mem,
		notifier: notifier,
	}
}

// Routes registers all admin endpoints plus the given webhook handler on a
// new mux.
func (s *Server) Routes(webhook http.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("POST /webhook/message", webhook)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /bot/on", s.handleBotOn)
	mux.HandleFunc("POST /bot/off", s.handleBotOff)
	mux.HandleFunc("GET /bot/status", s.handleStatus)

	mux.HandleFunc("GET /bot/focus-status", s.handleGetFocusStatus)
	mux.HandleFunc("POST /bot/focus-status", s.handleSetFocusStatus)

	mux.HandleFunc("GET /bot/whitelist", s.handleGetWhitelist)
	mux.HandleFunc("POST /bot/whitelist", s.handleSetWhitelist)

	mux.HandleFunc("GET /bot/vip-contacts", s.handleGetVIPContacts)
	mux.HandleFunc("POST /bot/vip-contacts", s.handleSaveVIPContact)
	mux.HandleFunc("DELETE /bot/vip-contacts/{identity}", s.handleDeleteVIPContact)

	mux.HandleFunc("GET /bot/ai-config", s.handleAIConfig)
	mux.HandleFunc("GET /bot/active", s.handleActiveContacts)
	mux.HandleFunc("POST /notify/test", s.handleNotifyTest)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, fmt.Errorf("database unreachable: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBotOn activates the engine and resets every intro flag, so each
// contact is greeted fresh for the new absence.
func (s *Server) handleBotOn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.store.SetBotActive(ctx, true); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if err := s.store.ResetAllIntroFlags(ctx); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.InfoContext(ctx, "Bot activated, intro flags reset")
	s.writeJSON(w, http.StatusOK, map[string]bool{"active": true})
}

func (s *Server) handleBotOff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.store.SetBotActive(ctx, false); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.logger.InfoContext(ctx, "Bot deactivated")
	s.writeJSON(w, http.StatusOK, map[string]bool{"active": false})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	active, err := s.store.IsBotActive(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	focus, err := s.store.GetFocusStatus(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	vipCount, err := s.store.CountVIPContacts(ctx)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"active":       active,
		"focus_status": focus,
		"sessions":     s.sessions.Len(),
		"vip_contacts": vipCount,
	})
}

func (s *Server) handleGetFocusStatus(w http.ResponseWriter, r *http.Request) {
	focus, err := s.store.GetFocusStatus(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"focus_status": focus})
}

// handleSetFocusStatus updates the owner's status and injects a system
// notice into every ongoing conversation, so the AI stops quoting the old
// status.
func (s *Server) handleSetFocusStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}
	if req.Status == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("status is required"))
		return
	}

	ctx := r.Context()
	if err := s.store.SetFocusStatus(ctx, req.Status); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	notice := fmt.Sprintf("%s sekarang lagi %s", s.cfg.Bot.OwnerName, req.Status)
	updated, err := s.memory.InjectSystemNotice(ctx, notice)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to inject status notice", "error", err)
	}

	s.logger.InfoContext(ctx, "Focus status updated", "conversations_notified", updated)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"focus_status":           req.Status,
		"conversations_notified": updated,
	})
}

func (s *Server) handleGetWhitelist(w http.ResponseWriter, r *http.Request) {
	identities, err := s.store.GetWhitelist(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if identities == nil {
		identities = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"identities": identities})
}

// handleSetWhitelist replaces the whitelist wholesale. Entries are
// normalized and validated; one bad entry rejects the whole request so a
// typo cannot silently lock a contact out.
func (s *Server) handleSetWhitelist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identities []string `json:"identities"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}

	seen := make(map[string]struct{}, len(req.Identities))
	normalized := make([]string, 0, len(req.Identities))
	for _, raw := range req.Identities {
		id := identity.Normalize(raw)
		if !identity.Valid(id) {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid identity %q", raw))
			return
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		normalized = append(normalized, id)
	}

	if err := s.store.ReplaceWhitelist(r.Context(), normalized); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.logger.InfoContext(r.Context(), "Whitelist replaced", "count", len(normalized))
	s.writeJSON(w, http.StatusOK, map[string]any{"identities": normalized, "count": len(normalized)})
}

func (s *Server) handleGetVIPContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.GetAllVIPContacts(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	type vipView struct {
		Identity     string    `json:"identity"`
		Name         string    `json:"name"`
		Relationship string    `json:"relationship"`
		AddedAt      time.Time `json:"added_at"`
	}
	views := make([]vipView, 0, len(contacts))
	for _, c := range contacts {
		views = append(views, vipView{
			Identity:     c.Identity,
			Name:         c.Name,
			Relationship: c.Relationship,
			AddedAt:      c.AddedAt,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"contacts": views})
}

func (s *Server) handleSaveVIPContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identity     string `json:"identity"`
		Name         string `json:"name"`
		Relationship string `json:"relationship"`
	}
	if !s.readJSON(w, r, &req) {
		return
	}

	id := identity.Normalize(req.Identity)
	if !identity.Valid(id) {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid identity %q", req.Identity))
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("name is required"))
		return
	}

	contact := &database.VIPContact{
		Identity:     id,
		Name:         req.Name,
		Relationship: req.Relationship,
	}
	if err := s.store.SaveVIPContact(r.Context(), contact); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.logger.InfoContext(r.Context(), "VIP contact saved", "identity", id)
	s.writeJSON(w, http.StatusOK, map[string]string{"identity": id, "name": req.Name})
}

func (s *Server) handleDeleteVIPContact(w http.ResponseWriter, r *http.Request) {
	id := identity.Normalize(r.PathValue("identity"))
	if !identity.Valid(id) {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid identity"))
		return
	}

	if err := s.store.DeleteVIPContact(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.logger.InfoContext(r.Context(), "VIP contact deleted", "identity", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleAIConfig exposes the effective AI settings without the token.
func (s *Server) handleAIConfig(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"provider":    s.cfg.AI.Provider,
		"model":       s.cfg.AI.Model,
		"max_tokens":  s.cfg.AI.MaxTokens,
		"temperature": s.cfg.AI.Temperature,
	})
}

func (s *Server) handleActiveContacts(w http.ResponseWriter, r *http.Request) {
	since := time.Now().Add(-activeWindow)
	identities, err := s.store.GetActiveIdentities(r.Context(), since)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if identities == nil {
		identities = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"since":      since,
		"identities": identities,
	})
}

func (s *Server) handleNotifyTest(w http.ResponseWriter, r *http.Request) {
	client, ok := s.notifier.(*notify.NtfyClient)
	if !ok || !client.Configured() {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("notifications not configured"))
		return
	}
	if err := client.SendTest(r.Context()); err != nil {
		s.writeError(w, http.StatusBadGateway, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		s.logger.Error("Request failed", "status", status, "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
