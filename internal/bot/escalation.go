package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/emmovsixty/whatsapp-bot/internal/config"
	"github.com/emmovsixty/whatsapp-bot/internal/database"
	"github.com/emmovsixty/whatsapp-bot/internal/notify"
	"github.com/emmovsixty/whatsapp-bot/internal/timeutil"
)

// escalator handles VIP escalation: urgent push notifications to the owner
// and the after-hours auto-reply bookkeeping. The replied set is volatile on
// purpose; a restart re-arms the auto-reply.
type escalator struct {
	window   timeutil.Window
	notifier notify.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	replied map[string]struct{}
}

func newEscalator(cfg config.VIPConfig, notifier notify.Notifier, logger *slog.Logger) *escalator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &escalator{
		window: timeutil.Window{
			Start: cfg.AfterHoursStart,
			End:   cfg.AfterHoursEnd,
		},
		notifier: notifier,
		logger:   logger.With("component", "escalator"),
		replied:  make(map[string]struct{}),
	}
}

// pushAlert sends an urgent notification about a VIP message. Notification
// failures are logged and swallowed so escalation never blocks the reply
// path.
func (e *escalator) pushAlert(ctx context.Context, log *slog.Logger, vip *database.VIPContact, body string, at time.Time) {
	name := vip.Name
	if name == "" {
		name = vip.Identity
	}

	n := notify.Notification{
		Title:    "URGENT: VIP Alert",
		Priority: notify.PriorityUrgent,
		Tags:     []string{"warning", "skull", "rotating_light"},
		Body: fmt.Sprintf(`🚨 URGENT VIP ALERT 🚨

VIP: %s
Pesan: %s
Waktu: %s

Silakan segera cek WhatsApp! 💖`, name, body, timeutil.FormatWIB(at)),
	}

	if err := e.notifier.Notify(ctx, n); err != nil {
		log.WarnContext(ctx, "Failed to push VIP alert", "error", err)
		return
	}
	log.InfoContext(ctx, "VIP alert pushed", "vip", vip.Identity)
}

// shouldAutoReply reports whether the after-hours auto-reply is due for an
// identity: the time falls inside the window and no auto-reply has gone out
// this process lifetime. A true return marks the identity as replied.
func (e *escalator) shouldAutoReply(id string, at time.Time) bool {
	if !e.window.Contains(at) {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, done := e.replied[id]; done {
		return false
	}
	e.replied[id] = struct{}{}
	return true
}
