// Package tasks implements the background scheduled tasks: database
// maintenance and session sweeping.
package tasks

import (
	"log/slog"

	"github.com/emmovsixty/whatsapp-bot/internal/config"
	"github.com/emmovsixty/whatsapp-bot/internal/database"
	"github.com/emmovsixty/whatsapp-bot/internal/session"
)

// TaskDeps contains the dependencies available to scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Sessions *session.Store
	Config   *config.Config
}
