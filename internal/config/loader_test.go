package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emmovsixty/whatsapp-bot/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, "ai:\n  token: test-token\n")

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.AI.Provider != "openrouter" {
		t.Errorf("AI.Provider = %q, want openrouter", cfg.AI.Provider)
	}
	if cfg.AI.MaxTokens != 500 {
		t.Errorf("AI.MaxTokens = %d, want 500", cfg.AI.MaxTokens)
	}
	if cfg.Server.Addr != ":3000" {
		t.Errorf("Server.Addr = %q, want :3000", cfg.Server.Addr)
	}
	if cfg.VIP.AfterHoursStart != 21*60 || cfg.VIP.AfterHoursEnd != 5*60 {
		t.Errorf("after-hours window = %d..%d, want 1260..300", cfg.VIP.AfterHoursStart, cfg.VIP.AfterHoursEnd)
	}
	if cfg.Bot.Messages.SpamNotice == "" {
		t.Error("Bot.Messages.SpamNotice default is empty")
	}
	if cfg.AI.Timeout != 2*time.Minute {
		t.Errorf("AI.Timeout = %v, want 2m", cfg.AI.Timeout)
	}
	if len(cfg.Scheduler.Tasks) != 2 {
		t.Errorf("Scheduler.Tasks = %v, want db_maintenance and session_sweep", cfg.Scheduler.Tasks)
	}
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
ai:
  token: test-token
  provider: gemini
  model: gemini-2.0-flash
bot:
  owner_name: Budi
vip:
  after_hours_start: 1320
`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.AI.Provider != "gemini" {
		t.Errorf("AI.Provider = %q, want gemini", cfg.AI.Provider)
	}
	if cfg.AI.Model != "gemini-2.0-flash" {
		t.Errorf("AI.Model = %q", cfg.AI.Model)
	}
	if cfg.Bot.OwnerName != "Budi" {
		t.Errorf("Bot.OwnerName = %q, want Budi", cfg.Bot.OwnerName)
	}
	if cfg.VIP.AfterHoursStart != 1320 {
		t.Errorf("VIP.AfterHoursStart = %d, want 1320", cfg.VIP.AfterHoursStart)
	}
	// Untouched keys keep their defaults.
	if cfg.Bot.AssistantName != "Pampam" {
		t.Errorf("Bot.AssistantName = %q, want default", cfg.Bot.AssistantName)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("BOT_AI_TOKEN", "env-token")
	t.Setenv("BOT_LOGGER_LEVEL", "debug")

	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.AI.Token != "env-token" {
		t.Errorf("AI.Token = %q, want env-token", cfg.AI.Token)
	}
	if cfg.Logger.Level != "debug" {
		t.Errorf("Logger.Level = %q, want debug", cfg.Logger.Level)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing token", yaml: "ai:\n  provider: openai\n"},
		{name: "bad provider", yaml: "ai:\n  token: x\n  provider: mistral\n"},
		{name: "bad log level", yaml: "ai:\n  token: x\nlogger:\n  level: verbose\n"},
		{name: "after hours out of range", yaml: "ai:\n  token: x\nvip:\n  after_hours_start: 2000\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfigFile(t, tt.yaml)
			if _, err := config.LoadConfig(path); err == nil {
				t.Error("LoadConfig() = nil, want validation error")
			}
		})
	}
}
