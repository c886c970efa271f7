package database

import (
	"database/sql"
	"time"
)

// Conversation roles stored in the conversations table.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationEntry is one turn of dialogue with a correspondent. Per identity
// only the most recent entries are retained; older ones are trimmed on insert.
type ConversationEntry struct {
	ID        int64     `db:"id"`
	Identity  string    `db:"identity"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`
	CreatedAt time.Time `db:"created_at"`
}

// ContactState is the durable per-identity record tracking whether the
// greeting/menu has ever been sent and when the contact was last active.
// The volatile session state deliberately lives elsewhere; this record is
// what survives a restart.
type ContactState struct {
	Identity   string       `db:"identity"`
	IntroSent  bool         `db:"intro_sent"`
	LastActive sql.NullTime `db:"last_active"`
	UpdatedAt  time.Time    `db:"updated_at"`
}

// VIPContact is an identity with elevated treatment: urgent notifications,
// a warmer persona, and the after-hours auto-reply.
type VIPContact struct {
	Identity     string    `db:"identity"`
	Name         string    `db:"name"`
	Relationship string    `db:"relationship"`
	AddedAt      time.Time `db:"added_at"`
}
