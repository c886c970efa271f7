// Package main contains the entrypoint for the WhatsApp assistant bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/emmovsixty/whatsapp-bot/internal/admin"
	"github.com/emmovsixty/whatsapp-bot/internal/ai"
	"github.com/emmovsixty/whatsapp-bot/internal/bot"
	"github.com/emmovsixty/whatsapp-bot/internal/bot/tasks"
	"github.com/emmovsixty/whatsapp-bot/internal/config"
	"github.com/emmovsixty/whatsapp-bot/internal/database"
	"github.com/emmovsixty/whatsapp-bot/internal/dedup"
	"github.com/emmovsixty/whatsapp-bot/internal/logger"
	"github.com/emmovsixty/whatsapp-bot/internal/memory"
	"github.com/emmovsixty/whatsapp-bot/internal/notify"
	"github.com/emmovsixty/whatsapp-bot/internal/session"
	"github.com/emmovsixty/whatsapp-bot/internal/transport"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components, starts the bot, and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	if err := seedDefaultVIP(ctx, store, cfg, log); err != nil {
		log.Error("Failed to seed default VIP contact", "error", err)
		return 1
	}

	aiClient, err := ai.NewClient(ctx, cfg.AI, log)
	if err != nil {
		log.Error("Failed to initialize AI client", "error", err)
		return 1
	}

	notifier := notify.NewNtfyClient(cfg.Notify, log)
	sender := transport.NewGatewaySender(cfg.Gateway, log)
	sessions := session.NewStore()
	mem := memory.NewStore(store, log)
	guard := dedup.NewGuard(dedup.DefaultCapacity)

	engine := bot.NewEngine(log, cfg, store, sessions, mem, guard, aiClient, sender, notifier)
	webhook := transport.NewWebhookHandler(engine.HandleMessage, log)

	adminSrv := admin.NewServer(log, cfg, store, sessions, mem, notifier)
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           adminSrv.Routes(webhook),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Store:    store,
		Sessions: sessions,
		Config:   cfg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, server, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}

// seedDefaultVIP inserts the configured default VIP contact on first run,
// when the VIP table is still empty.
func seedDefaultVIP(ctx context.Context, store database.Store, cfg *config.Config, log *slog.Logger) error {
	if cfg.VIP.DefaultIdentity == "" {
		return nil
	}

	count, err := store.CountVIPContacts(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	contact := &database.VIPContact{
		Identity:     cfg.VIP.DefaultIdentity,
		Name:         cfg.VIP.DefaultName,
		Relationship: cfg.VIP.DefaultRelationship,
	}
	if err := store.SaveVIPContact(ctx, contact); err != nil {
		return err
	}

	log.Info("Seeded default VIP contact", "identity", contact.Identity)
	return nil
}
