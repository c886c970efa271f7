package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/emmovsixty/whatsapp-bot/internal/config"
)

// NewClient builds the AI client for the configured provider.
func NewClient(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (Client, error) {
	switch cfg.Provider {
	case "openai", "openrouter":
		return newOpenAIClient(cfg, logger)
	case "gemini":
		return newGeminiClient(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
