// Package transport defines the contract with the external message gateway:
// the inbound event shape, the outbound Sender, and the HTTP glue binding
// both to the engine.
package transport

import "context"

// Message is one inbound chat event as reported by the gateway.
type Message struct {
	// ID uniquely identifies the delivery. The webhook fills one in when
	// the gateway omits it.
	ID string `json:"id"`

	// Sender is the raw sender identifier, possibly carrying a transport
	// suffix like "@c.us" or "@lid".
	Sender string `json:"sender"`

	// SenderResolved is the gateway's contact-resolved canonical number,
	// empty when resolution failed. Preferred over Sender when present.
	SenderResolved string `json:"sender_resolved,omitempty"`

	// Body is the message text.
	Body string `json:"body"`

	// IsGroup marks events originating from a group/broadcast context.
	IsGroup bool `json:"is_group"`

	// IsSelf marks events originating from the bot's own account.
	IsSelf bool `json:"is_self"`
}

// Sender delivers an outbound text to a recipient through the gateway.
type Sender interface {
	Send(ctx context.Context, recipient, text string) error
}
