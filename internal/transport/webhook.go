package transport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// HandlerFunc processes one inbound message event to completion.
type HandlerFunc func(ctx context.Context, msg Message)

// WebhookHandler receives inbound message events from the gateway over HTTP
// and hands them to the engine. Handling is synchronous: the gateway's
// sequential delivery is what preserves per-sender ordering.
type WebhookHandler struct {
	handle HandlerFunc
	logger *slog.Logger
}

// NewWebhookHandler wraps the engine's message entry point as an
// http.Handler.
func NewWebhookHandler(handle HandlerFunc, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &WebhookHandler{
		handle: handle,
		logger: logger.With("component", "webhook"),
	}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var msg Message
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.logger.Warn("Rejecting malformed webhook payload", "error", err)
		http.Error(w, "invalid message payload", http.StatusBadRequest)
		return
	}

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}

	h.handle(r.Context(), msg)
	w.WriteHeader(http.StatusAccepted)
}
