package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/emmovsixty/whatsapp-bot/internal/config"
)

type geminiClient struct {
	genaiClient   *genai.Client
	logger        *slog.Logger
	contentConfig *genai.GenerateContentConfig
	model         string
	maxRetries    int
	retryDelay    time.Duration
}

func newGeminiClient(ctx context.Context, cfg config.AIConfig, logger *slog.Logger) (Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("AI token is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Token,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	maxTokens := int32(cfg.MaxTokens)
	contentCfg := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: maxTokens,
	}

	log := logger.With("component", "ai_client", "provider", "gemini")
	log.Info("AI client initialized", "model", cfg.Model)

	return &geminiClient{
		genaiClient:   gi,
		logger:        log,
		contentConfig: contentCfg,
		model:         cfg.Model,
		maxRetries:    cfg.MaxRetries,
		retryDelay:    cfg.RetryDelay,
	}, nil
}

func (c *geminiClient) Complete(ctx context.Context, messages []Message) (string, error) {
	cfg := *c.contentConfig
	var contents []*genai.Content

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			// Gemini carries the system prompt out of band.
			var existing string
			if cfg.SystemInstruction != nil && len(cfg.SystemInstruction.Parts) > 0 {
				existing = cfg.SystemInstruction.Parts[0].Text + "\n\n"
			}
			cfg.SystemInstruction = &genai.Content{
				Parts: []*genai.Part{{Text: existing + m.Content}},
			}
		case RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	resp, err := c.generateContentWithRetries(ctx, contents, &cfg)
	if err != nil {
		return "", err
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		return "", fmt.Errorf("completion blocked by safety filter: %s", reason)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("completion returned no content")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("completion returned empty text")
	}
	return text, nil
}

func (c *geminiClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, c.model, contents, cfg)
		if err == nil {
			return resp, nil
		}

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < c.maxRetries {
				c.logger.WarnContext(ctx, "Gemini API call failed, retrying",
					"attempt", i+1, "code", apiErr.Code, "delay", c.retryDelay)
				select {
				case <-time.After(c.retryDelay):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				continue
			}
			return nil, fmt.Errorf("gemini API call failed after %d retries: %w", c.maxRetries, err)
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}
	return nil, err
}
