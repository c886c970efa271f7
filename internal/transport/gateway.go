package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/emmovsixty/whatsapp-bot/internal/config"
)

// GatewaySender posts outbound messages to the external gateway's send
// endpoint as JSON. When no send URL is configured (local development),
// sends are logged and dropped.
type GatewaySender struct {
	sendURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewGatewaySender creates a sender for the configured gateway.
func NewGatewaySender(cfg config.GatewayConfig, logger *slog.Logger) *GatewaySender {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "gateway_sender")
	if cfg.SendURL == "" {
		log.Warn("gateway send URL not configured, outbound messages will be dropped")
	}
	return &GatewaySender{
		sendURL: cfg.SendURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  log,
	}
}

type sendRequest struct {
	Recipient string `json:"recipient"`
	Text      string `json:"text"`
}

// Send delivers text to recipient through the gateway.
func (s *GatewaySender) Send(ctx context.Context, recipient, text string) error {
	if s.sendURL == "" {
		s.logger.InfoContext(ctx, "Dropping outbound message, gateway not configured",
			"recipient", recipient, "length", len(text))
		return nil
	}

	payload, err := json.Marshal(sendRequest{Recipient: recipient, Text: text})
	if err != nil {
		return fmt.Errorf("failed to encode send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message via gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gateway rejected send: %s", resp.Status)
	}

	s.logger.DebugContext(ctx, "Outbound message sent", "recipient", recipient)
	return nil
}
