package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// DefaultFocusStatus is the owner status text used before one has been set.
const DefaultFocusStatus = "lagi santai aja"

// Config table keys.
const (
	keyBotActive   = "bot_active"
	keyFocusStatus = "focus_status"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// AppendConversationEntry inserts a conversation turn and trims the
	// identity's log to the newest 'keep' entries in the same transaction.
	AppendConversationEntry(ctx context.Context, entry *ConversationEntry, keep int) error

	// GetConversation returns up to 'limit' entries for an identity, ordered
	// by timestamp ascending for replay into prompts.
	GetConversation(ctx context.Context, identity string, limit int) ([]ConversationEntry, error)

	// GetConversationIdentities returns every identity with at least one
	// stored conversation entry.
	GetConversationIdentities(ctx context.Context) ([]string, error)

	// ClearConversation deletes all entries for one identity.
	ClearConversation(ctx context.Context, identity string) error

	// HasIntroBeenSent reports whether the greeting/menu was ever sent to
	// the identity. Missing records read as false.
	HasIntroBeenSent(ctx context.Context, identity string) (bool, error)

	// MarkIntroSent upserts the contact state with intro_sent=1 and touches
	// last_active.
	MarkIntroSent(ctx context.Context, identity string) error

	// TouchLastActive upserts the contact state's last_active timestamp.
	TouchLastActive(ctx context.Context, identity string) error

	// ResetAllIntroFlags clears intro_sent for every contact, forcing each
	// identity back through the greeting.
	ResetAllIntroFlags(ctx context.Context) error

	// GetActiveIdentities returns identities active since the given time,
	// most recent first.
	GetActiveIdentities(ctx context.Context, since time.Time) ([]string, error)

	// IsWhitelisted reports whitelist membership for a normalized identity.
	IsWhitelisted(ctx context.Context, identity string) (bool, error)

	// GetWhitelist returns all whitelisted identities, newest first.
	GetWhitelist(ctx context.Context) ([]string, error)

	// ReplaceWhitelist atomically replaces the whitelist contents.
	ReplaceWhitelist(ctx context.Context, identities []string) error

	// AddToWhitelist inserts an identity, ignoring duplicates.
	AddToWhitelist(ctx context.Context, identity string) error

	// RemoveFromWhitelist deletes an identity from the whitelist.
	RemoveFromWhitelist(ctx context.Context, identity string) error

	// GetVIPContact returns the VIP record for an identity, or nil when the
	// identity is not a VIP.
	GetVIPContact(ctx context.Context, identity string) (*VIPContact, error)

	// GetAllVIPContacts returns all VIP contacts ordered by name.
	GetAllVIPContacts(ctx context.Context) ([]VIPContact, error)

	// SaveVIPContact inserts or replaces a VIP contact.
	SaveVIPContact(ctx context.Context, contact *VIPContact) error

	// DeleteVIPContact removes a VIP contact.
	DeleteVIPContact(ctx context.Context, identity string) error

	// CountVIPContacts returns the number of VIP contacts.
	CountVIPContacts(ctx context.Context) (int, error)

	// IsBotActive reads the durable engine on/off flag. Missing reads as off.
	IsBotActive(ctx context.Context) (bool, error)

	// SetBotActive writes the durable engine on/off flag.
	SetBotActive(ctx context.Context, active bool) error

	// GetFocusStatus returns the owner's current status text, falling back
	// to DefaultFocusStatus when none has been set.
	GetFocusStatus(ctx context.Context) (string, error)

	// SetFocusStatus writes the owner's status text.
	SetFocusStatus(ctx context.Context, status string) error

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) AppendConversationEntry(ctx context.Context, entry *ConversationEntry, keep int) error {
	if entry == nil {
		return fmt.Errorf("cannot save nil conversation entry")
	}
	if entry.Identity == "" {
		return fmt.Errorf("conversation entry must have an identity")
	}
	if entry.Role != RoleUser && entry.Role != RoleAssistant {
		return fmt.Errorf("invalid conversation role %q", entry.Role)
	}
	if keep <= 0 {
		return fmt.Errorf("keep must be positive, got %d", keep)
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	insert := `
        INSERT INTO conversations (identity, role, content, timestamp, created_at)
        VALUES (:identity, :role, :content, :timestamp, :created_at);
    `
	result, err := tx.NamedExecContext(ctx, insert, entry)
	if err != nil {
		return fmt.Errorf("failed to save conversation entry for %s: %w", entry.Identity, err)
	}
	if id, idErr := result.LastInsertId(); idErr == nil {
		entry.ID = id
	}

	// FIFO retention: keep only the newest entries for this identity.
	trim := `
        DELETE FROM conversations
        WHERE identity = ?
        AND id NOT IN (
            SELECT id FROM conversations
            WHERE identity = ?
            ORDER BY timestamp DESC, id DESC
            LIMIT ?
        );
    `
	if _, err := tx.ExecContext(ctx, trim, entry.Identity, entry.Identity, keep); err != nil {
		return fmt.Errorf("failed to trim conversation for %s: %w", entry.Identity, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Conversation entry saved",
		"identity", entry.Identity, "role", entry.Role, "entry_id", entry.ID)
	return nil
}

func (s *sqlxStore) GetConversation(ctx context.Context, identity string, limit int) ([]ConversationEntry, error) {
	if identity == "" {
		return nil, fmt.Errorf("identity cannot be empty")
	}
	if limit <= 0 {
		limit = 7
	}

	var entries []ConversationEntry
	query := `
        SELECT id, identity, role, content, timestamp, created_at
        FROM conversations
        WHERE identity = ?
        ORDER BY timestamp ASC, id ASC
        LIMIT ?;
    `
	if err := s.db.SelectContext(ctx, &entries, query, identity, limit); err != nil {
		return nil, fmt.Errorf("failed to get conversation for %s: %w", identity, err)
	}
	return entries, nil
}

func (s *sqlxStore) GetConversationIdentities(ctx context.Context) ([]string, error) {
	var identities []string
	query := `SELECT DISTINCT identity FROM conversations;`
	if err := s.db.SelectContext(ctx, &identities, query); err != nil {
		return nil, fmt.Errorf("failed to get conversation identities: %w", err)
	}
	return identities, nil
}

func (s *sqlxStore) ClearConversation(ctx context.Context, identity string) error {
	if identity == "" {
		return fmt.Errorf("identity cannot be empty")
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE identity = ?;`, identity); err != nil {
		return fmt.Errorf("failed to clear conversation for %s: %w", identity, err)
	}
	return nil
}

func (s *sqlxStore) HasIntroBeenSent(ctx context.Context, identity string) (bool, error) {
	var sent bool
	query := `SELECT intro_sent FROM contact_states WHERE identity = ?;`
	err := s.db.GetContext(ctx, &sent, query, identity)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read intro state for %s: %w", identity, err)
	}
	return sent, nil
}

func (s *sqlxStore) MarkIntroSent(ctx context.Context, identity string) error {
	query := `
        INSERT INTO contact_states (identity, intro_sent, last_active, updated_at)
        VALUES (?, 1, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(identity) DO UPDATE SET
            intro_sent = 1,
            last_active = excluded.last_active,
            updated_at = CURRENT_TIMESTAMP;
    `
	if _, err := s.db.ExecContext(ctx, query, identity, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark intro sent for %s: %w", identity, err)
	}
	return nil
}

func (s *sqlxStore) TouchLastActive(ctx context.Context, identity string) error {
	query := `
        INSERT INTO contact_states (identity, last_active, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(identity) DO UPDATE SET
            last_active = excluded.last_active,
            updated_at = CURRENT_TIMESTAMP;
    `
	if _, err := s.db.ExecContext(ctx, query, identity, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to touch last_active for %s: %w", identity, err)
	}
	return nil
}

func (s *sqlxStore) ResetAllIntroFlags(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE contact_states SET intro_sent = 0, updated_at = CURRENT_TIMESTAMP;`); err != nil {
		return fmt.Errorf("failed to reset intro flags: %w", err)
	}
	s.logger.InfoContext(ctx, "All intro flags reset")
	return nil
}

func (s *sqlxStore) GetActiveIdentities(ctx context.Context, since time.Time) ([]string, error) {
	var identities []string
	query := `
        SELECT identity FROM contact_states
        WHERE last_active > ?
        ORDER BY last_active DESC;
    `
	if err := s.db.SelectContext(ctx, &identities, query, since.UTC()); err != nil {
		return nil, fmt.Errorf("failed to get active identities: %w", err)
	}
	return identities, nil
}

func (s *sqlxStore) IsWhitelisted(ctx context.Context, identity string) (bool, error) {
	var found string
	query := `SELECT identity FROM whitelist WHERE identity = ?;`
	err := s.db.GetContext(ctx, &found, query, identity)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check whitelist for %s: %w", identity, err)
	}
	return true, nil
}

func (s *sqlxStore) GetWhitelist(ctx context.Context) ([]string, error) {
	var identities []string
	query := `SELECT identity FROM whitelist ORDER BY added_at DESC;`
	if err := s.db.SelectContext(ctx, &identities, query); err != nil {
		return nil, fmt.Errorf("failed to get whitelist: %w", err)
	}
	return identities, nil
}

func (s *sqlxStore) ReplaceWhitelist(ctx context.Context, identities []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM whitelist;`); err != nil {
		return fmt.Errorf("failed to clear whitelist: %w", err)
	}
	for _, identity := range identities {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO whitelist (identity) VALUES (?);`, identity); err != nil {
			return fmt.Errorf("failed to insert whitelist entry %s: %w", identity, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.InfoContext(ctx, "Whitelist replaced", "count", len(identities))
	return nil
}

func (s *sqlxStore) AddToWhitelist(ctx context.Context, identity string) error {
	if identity == "" {
		return fmt.Errorf("identity cannot be empty")
	}
	if _, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO whitelist (identity) VALUES (?);`, identity); err != nil {
		return fmt.Errorf("failed to add %s to whitelist: %w", identity, err)
	}
	return nil
}

func (s *sqlxStore) RemoveFromWhitelist(ctx context.Context, identity string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM whitelist WHERE identity = ?;`, identity); err != nil {
		return fmt.Errorf("failed to remove %s from whitelist: %w", identity, err)
	}
	return nil
}

func (s *sqlxStore) GetVIPContact(ctx context.Context, identity string) (*VIPContact, error) {
	var contact VIPContact
	query := `SELECT identity, name, relationship, added_at FROM vip_contacts WHERE identity = ?;`
	err := s.db.GetContext(ctx, &contact, query, identity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get VIP contact %s: %w", identity, err)
	}
	return &contact, nil
}

func (s *sqlxStore) GetAllVIPContacts(ctx context.Context) ([]VIPContact, error) {
	var contacts []VIPContact
	query := `SELECT identity, name, relationship, added_at FROM vip_contacts ORDER BY name;`
	if err := s.db.SelectContext(ctx, &contacts, query); err != nil {
		return nil, fmt.Errorf("failed to get VIP contacts: %w", err)
	}
	return contacts, nil
}

func (s *sqlxStore) SaveVIPContact(ctx context.Context, contact *VIPContact) error {
	if contact == nil || contact.Identity == "" || contact.Name == "" {
		return fmt.Errorf("VIP contact must have an identity and a name")
	}
	query := `
        INSERT OR REPLACE INTO vip_contacts (identity, name, relationship)
        VALUES (:identity, :name, :relationship);
    `
	if _, err := s.db.NamedExecContext(ctx, query, contact); err != nil {
		return fmt.Errorf("failed to save VIP contact %s: %w", contact.Identity, err)
	}
	s.logger.InfoContext(ctx, "VIP contact saved", "identity", contact.Identity, "name", contact.Name)
	return nil
}

func (s *sqlxStore) DeleteVIPContact(ctx context.Context, identity string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM vip_contacts WHERE identity = ?;`, identity); err != nil {
		return fmt.Errorf("failed to delete VIP contact %s: %w", identity, err)
	}
	return nil
}

func (s *sqlxStore) CountVIPContacts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM vip_contacts;`); err != nil {
		return 0, fmt.Errorf("failed to count VIP contacts: %w", err)
	}
	return count, nil
}

func (s *sqlxStore) IsBotActive(ctx context.Context) (bool, error) {
	value, err := s.getConfigValue(ctx, keyBotActive)
	if err != nil {
		return false, err
	}
	return value == "1", nil
}

func (s *sqlxStore) SetBotActive(ctx context.Context, active bool) error {
	value := "0"
	if active {
		value = "1"
	}
	return s.setConfigValue(ctx, keyBotActive, value)
}

func (s *sqlxStore) GetFocusStatus(ctx context.Context) (string, error) {
	value, err := s.getConfigValue(ctx, keyFocusStatus)
	if err != nil {
		return "", err
	}
	if value == "" {
		return DefaultFocusStatus, nil
	}
	return value, nil
}

func (s *sqlxStore) SetFocusStatus(ctx context.Context, status string) error {
	return s.setConfigValue(ctx, keyFocusStatus, status)
}

func (s *sqlxStore) getConfigValue(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM config WHERE key = ?;`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read config key %s: %w", key, err)
	}
	return value, nil
}

func (s *sqlxStore) setConfigValue(ctx context.Context, key, value string) error {
	query := `
        INSERT INTO config (key, value, updated_at)
        VALUES (?, ?, CURRENT_TIMESTAMP)
        ON CONFLICT(key) DO UPDATE SET
            value = excluded.value,
            updated_at = CURRENT_TIMESTAMP;
    `
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write config key %s: %w", key, err)
	}
	return nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)")
	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		return fmt.Errorf("VACUUM failed: %w", err)
	}
	s.logger.InfoContext(ctx, "Database maintenance finished")
	return nil
}
