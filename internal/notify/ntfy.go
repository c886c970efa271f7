// Package notify delivers out-of-band push notifications to the owner's
// phone via ntfy.sh. Delivery is best-effort: the caller decides whether a
// failure matters, and in the message pipeline it never does.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emmovsixty/whatsapp-bot/internal/config"
)

// Priority levels understood by ntfy.
type Priority string

const (
	PriorityDefault Priority = "default"
	PriorityHigh    Priority = "high"
	PriorityUrgent  Priority = "urgent"
)

// Notification is one push message. Title must stay plain ASCII text; ntfy
// rejects non-latin header values, so emoji belong in the body only.
type Notification struct {
	Title    string
	Body     string
	Priority Priority
	Tags     []string
}

// Notifier sends push notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NtfyClient posts notifications to an ntfy topic. An empty topic disables
// sending; Notify then logs and reports nothing delivered.
type NtfyClient struct {
	baseURL string
	topic   string
	client  *http.Client
	logger  *slog.Logger
}

// NewNtfyClient creates a notifier for the configured ntfy topic.
func NewNtfyClient(cfg config.NotifyConfig, logger *slog.Logger) *NtfyClient {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "notifier")
	if cfg.Topic == "" {
		log.Warn("ntfy topic not configured, push notifications disabled")
	}
	return &NtfyClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		topic:   cfg.Topic,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  log,
	}
}

// Configured reports whether a topic is set.
func (c *NtfyClient) Configured() bool {
	return c.topic != ""
}

// Notify posts the notification to the topic. Returns an error when the
// topic is unset or ntfy does not accept the message.
func (c *NtfyClient) Notify(ctx context.Context, n Notification) error {
	if c.topic == "" {
		return fmt.Errorf("ntfy topic not configured")
	}

	url := c.baseURL + "/" + c.topic
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(n.Body))
	if err != nil {
		return fmt.Errorf("failed to build ntfy request: %w", err)
	}
	req.Header.Set("Title", n.Title)
	if n.Priority != "" {
		req.Header.Set("Priority", string(n.Priority))
	}
	if len(n.Tags) > 0 {
		req.Header.Set("Tags", strings.Join(n.Tags, ","))
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy rejected notification: %s", resp.Status)
	}

	c.logger.DebugContext(ctx, "Notification delivered",
		"priority", n.Priority, "duration", time.Since(start))
	return nil
}

// SendTest delivers a test notification so the owner can verify the topic.
func (c *NtfyClient) SendTest(ctx context.Context) error {
	return c.Notify(ctx, Notification{
		Title:    "Test Notification",
		Body:     "🧪 Test notification dari WhatsApp bot. Jika kamu menerima ini, setup berhasil! ✅",
		Priority: PriorityHigh,
		Tags:     []string{"white_check_mark"},
	})
}
