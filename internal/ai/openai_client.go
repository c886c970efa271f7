package ai

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/emmovsixty/whatsapp-bot/internal/config"
)

// attributionTransport adds the identification headers OpenRouter uses for
// app rankings.
type attributionTransport struct {
	base http.RoundTripper
}

func (t attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", "https://github.com/emmovsixty/whatsapp-bot")
	req.Header.Set("X-Title", "whatsapp-bot")
	return t.base.RoundTrip(req)
}

// openAIClient talks to any OpenAI-compatible chat completions endpoint,
// which covers both OpenAI proper and OpenRouter.
type openAIClient struct {
	client      *openai.Client
	logger      *slog.Logger
	model       string
	maxTokens   int
	temperature float32
}

func newOpenAIClient(cfg config.AIConfig, logger *slog.Logger) (Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("AI token is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	clientCfg := openai.DefaultConfig(cfg.Token)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.Provider == "openrouter" {
		// OpenRouter asks callers to identify themselves.
		clientCfg.HTTPClient = &http.Client{
			Transport: attributionTransport{base: http.DefaultTransport},
		}
	}

	log := logger.With("component", "ai_client", "provider", cfg.Provider)
	log.Info("AI client initialized", "model", cfg.Model, "base_url", clientCfg.BaseURL)

	return &openAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		logger:      log,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

func (c *openAIClient) Complete(ctx context.Context, messages []Message) (string, error) {
	chat := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chat = append(chat, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chat,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	c.logger.DebugContext(ctx, "Completion generated",
		"prompt_messages", len(messages), "total_tokens", resp.Usage.TotalTokens)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
