// Package ai integrates external text-generation providers behind a single
// Client interface. Two backends exist: an OpenAI-compatible client (OpenAI
// proper or OpenRouter) and a Gemini client.
package ai

import "context"

// Prompt roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of the prompt sequence sent to a provider.
type Message struct {
	Role    string
	Content string
}

// Client generates a completion for an ordered prompt sequence. The
// configured model, token limit, and temperature are fixed at construction.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}
