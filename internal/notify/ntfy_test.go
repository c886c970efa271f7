package notify_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/emmovsixty/whatsapp-bot/internal/config"
	"github.com/emmovsixty/whatsapp-bot/internal/notify"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, topic string) *notify.NtfyClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return notify.NewNtfyClient(config.NotifyConfig{
		BaseURL: srv.URL,
		Topic:   topic,
		Timeout: 5 * time.Second,
	}, nil)
}

func TestNotifySendsHeadersAndBody(t *testing.T) {
	t.Parallel()

	var (
		gotPath     string
		gotTitle    string
		gotPriority string
		gotTags     string
		gotBody     string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotTitle = r.Header.Get("Title")
		gotPriority = r.Header.Get("Priority")
		gotTags = r.Header.Get("Tags")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}, "alerts")

	err := client.Notify(context.Background(), notify.Notification{
		Title:    "URGENT: VIP Alert",
		Body:     "🚨 something happened",
		Priority: notify.PriorityUrgent,
		Tags:     []string{"warning", "skull", "rotating_light"},
	})
	if err != nil {
		t.Fatalf("Notify() error: %v", err)
	}

	if gotPath != "/alerts" {
		t.Errorf("request path = %q, want /alerts", gotPath)
	}
	if gotTitle != "URGENT: VIP Alert" {
		t.Errorf("Title header = %q", gotTitle)
	}
	if gotPriority != "urgent" {
		t.Errorf("Priority header = %q, want urgent", gotPriority)
	}
	if gotTags != "warning,skull,rotating_light" {
		t.Errorf("Tags header = %q", gotTags)
	}
	if gotBody != "🚨 something happened" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestNotifyRejectedByServer(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, "alerts")

	err := client.Notify(context.Background(), notify.Notification{Title: "t", Body: "b"})
	if err == nil {
		t.Error("Notify() = nil, want error on non-2xx response")
	}
}

func TestNotifyWithoutTopic(t *testing.T) {
	t.Parallel()

	client := notify.NewNtfyClient(config.NotifyConfig{
		BaseURL: "https://ntfy.sh",
		Timeout: time.Second,
	}, nil)

	if client.Configured() {
		t.Error("Configured() = true without topic")
	}
	if err := client.Notify(context.Background(), notify.Notification{Title: "t"}); err == nil {
		t.Error("Notify() = nil without topic, want error")
	}
}
