package database_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/emmovsixty/whatsapp-bot/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return database.NewStore(db, nil)
}

func TestAppendConversationEntryTrimsOldest(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	const id = "6281234567890"
	const keep = 7

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < keep+3; i++ {
		entry := &database.ConversationEntry{
			Identity:  id,
			Role:      database.RoleUser,
			Content:   fmt.Sprintf("message %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.AppendConversationEntry(ctx, entry, keep); err != nil {
			t.Fatalf("AppendConversationEntry() error: %v", err)
		}
	}

	entries, err := store.GetConversation(ctx, id, keep)
	if err != nil {
		t.Fatalf("GetConversation() error: %v", err)
	}
	if len(entries) != keep {
		t.Fatalf("GetConversation() returned %d entries, want %d", len(entries), keep)
	}

	// The three oldest were trimmed; order is oldest first.
	if entries[0].Content != "message 3" {
		t.Errorf("oldest kept entry = %q, want %q", entries[0].Content, "message 3")
	}
	if entries[keep-1].Content != fmt.Sprintf("message %d", keep+2) {
		t.Errorf("newest entry = %q, want %q", entries[keep-1].Content, fmt.Sprintf("message %d", keep+2))
	}
}

func TestAppendConversationEntryValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		entry *database.ConversationEntry
		keep  int
	}{
		{name: "nil entry", entry: nil, keep: 7},
		{name: "missing identity", entry: &database.ConversationEntry{Role: database.RoleUser, Content: "x"}, keep: 7},
		{name: "bad role", entry: &database.ConversationEntry{Identity: "628111", Role: "system", Content: "x"}, keep: 7},
		{name: "zero keep", entry: &database.ConversationEntry{Identity: "628111", Role: database.RoleUser, Content: "x"}, keep: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.AppendConversationEntry(ctx, tt.entry, tt.keep); err == nil {
				t.Error("AppendConversationEntry() = nil, want error")
			}
		})
	}
}

func TestConversationIdentitiesAndClear(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"628111", "628222"} {
		entry := &database.ConversationEntry{Identity: id, Role: database.RoleUser, Content: "halo"}
		if err := store.AppendConversationEntry(ctx, entry, 7); err != nil {
			t.Fatalf("AppendConversationEntry() error: %v", err)
		}
	}

	identities, err := store.GetConversationIdentities(ctx)
	if err != nil {
		t.Fatalf("GetConversationIdentities() error: %v", err)
	}
	if len(identities) != 2 {
		t.Fatalf("GetConversationIdentities() = %v, want 2 identities", identities)
	}

	if err := store.ClearConversation(ctx, "628111"); err != nil {
		t.Fatalf("ClearConversation() error: %v", err)
	}
	entries, err := store.GetConversation(ctx, "628111", 7)
	if err != nil {
		t.Fatalf("GetConversation() error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("GetConversation() after clear returned %d entries", len(entries))
	}
}

func TestIntroFlags(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()
	const id = "6281234567890"

	sent, err := store.HasIntroBeenSent(ctx, id)
	if err != nil {
		t.Fatalf("HasIntroBeenSent() error: %v", err)
	}
	if sent {
		t.Error("HasIntroBeenSent() = true for unknown identity")
	}

	if err := store.MarkIntroSent(ctx, id); err != nil {
		t.Fatalf("MarkIntroSent() error: %v", err)
	}
	sent, err = store.HasIntroBeenSent(ctx, id)
	if err != nil {
		t.Fatalf("HasIntroBeenSent() error: %v", err)
	}
	if !sent {
		t.Error("HasIntroBeenSent() = false after MarkIntroSent")
	}

	if err := store.ResetAllIntroFlags(ctx); err != nil {
		t.Fatalf("ResetAllIntroFlags() error: %v", err)
	}
	sent, err = store.HasIntroBeenSent(ctx, id)
	if err != nil {
		t.Fatalf("HasIntroBeenSent() error: %v", err)
	}
	if sent {
		t.Error("HasIntroBeenSent() = true after ResetAllIntroFlags")
	}
}

func TestActiveIdentities(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.TouchLastActive(ctx, "628111"); err != nil {
		t.Fatalf("TouchLastActive() error: %v", err)
	}

	active, err := store.GetActiveIdentities(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("GetActiveIdentities() error: %v", err)
	}
	if len(active) != 1 || active[0] != "628111" {
		t.Errorf("GetActiveIdentities() = %v, want [628111]", active)
	}

	active, err = store.GetActiveIdentities(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("GetActiveIdentities() error: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("GetActiveIdentities() with future cutoff = %v, want empty", active)
	}
}

func TestWhitelist(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	ok, err := store.IsWhitelisted(ctx, "628111")
	if err != nil {
		t.Fatalf("IsWhitelisted() error: %v", err)
	}
	if ok {
		t.Error("IsWhitelisted() = true on empty whitelist")
	}

	if err := store.ReplaceWhitelist(ctx, []string{"628111", "628222"}); err != nil {
		t.Fatalf("ReplaceWhitelist() error: %v", err)
	}
	ok, err = store.IsWhitelisted(ctx, "628111")
	if err != nil {
		t.Fatalf("IsWhitelisted() error: %v", err)
	}
	if !ok {
		t.Error("IsWhitelisted() = false after ReplaceWhitelist")
	}

	// Replacing drops entries not in the new list.
	if err := store.ReplaceWhitelist(ctx, []string{"628333"}); err != nil {
		t.Fatalf("ReplaceWhitelist() error: %v", err)
	}
	ok, err = store.IsWhitelisted(ctx, "628111")
	if err != nil {
		t.Fatalf("IsWhitelisted() error: %v", err)
	}
	if ok {
		t.Error("IsWhitelisted() = true for identity dropped by replace")
	}

	if err := store.AddToWhitelist(ctx, "628444"); err != nil {
		t.Fatalf("AddToWhitelist() error: %v", err)
	}
	if err := store.AddToWhitelist(ctx, "628444"); err != nil {
		t.Fatalf("AddToWhitelist() duplicate error: %v", err)
	}
	if err := store.RemoveFromWhitelist(ctx, "628333"); err != nil {
		t.Fatalf("RemoveFromWhitelist() error: %v", err)
	}

	list, err := store.GetWhitelist(ctx)
	if err != nil {
		t.Fatalf("GetWhitelist() error: %v", err)
	}
	if len(list) != 1 || list[0] != "628444" {
		t.Errorf("GetWhitelist() = %v, want [628444]", list)
	}
}

func TestVIPContacts(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	vip, err := store.GetVIPContact(ctx, "628111")
	if err != nil {
		t.Fatalf("GetVIPContact() error: %v", err)
	}
	if vip != nil {
		t.Error("GetVIPContact() on empty table returned a contact")
	}

	contact := &database.VIPContact{Identity: "628111", Name: "Viia", Relationship: "temen cewe baru"}
	if err := store.SaveVIPContact(ctx, contact); err != nil {
		t.Fatalf("SaveVIPContact() error: %v", err)
	}

	vip, err = store.GetVIPContact(ctx, "628111")
	if err != nil {
		t.Fatalf("GetVIPContact() error: %v", err)
	}
	if vip == nil || vip.Name != "Viia" || vip.Relationship != "temen cewe baru" {
		t.Errorf("GetVIPContact() = %+v, want saved contact", vip)
	}

	// Save is an upsert.
	contact.Name = "Via"
	if err := store.SaveVIPContact(ctx, contact); err != nil {
		t.Fatalf("SaveVIPContact() upsert error: %v", err)
	}
	count, err := store.CountVIPContacts(ctx)
	if err != nil {
		t.Fatalf("CountVIPContacts() error: %v", err)
	}
	if count != 1 {
		t.Errorf("CountVIPContacts() = %d, want 1", count)
	}

	all, err := store.GetAllVIPContacts(ctx)
	if err != nil {
		t.Fatalf("GetAllVIPContacts() error: %v", err)
	}
	if len(all) != 1 || all[0].Name != "Via" {
		t.Errorf("GetAllVIPContacts() = %+v, want updated contact", all)
	}

	if err := store.DeleteVIPContact(ctx, "628111"); err != nil {
		t.Fatalf("DeleteVIPContact() error: %v", err)
	}
	count, err = store.CountVIPContacts(ctx)
	if err != nil {
		t.Fatalf("CountVIPContacts() error: %v", err)
	}
	if count != 0 {
		t.Errorf("CountVIPContacts() after delete = %d, want 0", count)
	}
}

func TestBotActiveFlag(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	active, err := store.IsBotActive(ctx)
	if err != nil {
		t.Fatalf("IsBotActive() error: %v", err)
	}
	if active {
		t.Error("IsBotActive() = true before any write, want false")
	}

	if err := store.SetBotActive(ctx, true); err != nil {
		t.Fatalf("SetBotActive() error: %v", err)
	}
	active, err = store.IsBotActive(ctx)
	if err != nil {
		t.Fatalf("IsBotActive() error: %v", err)
	}
	if !active {
		t.Error("IsBotActive() = false after SetBotActive(true)")
	}

	if err := store.SetBotActive(ctx, false); err != nil {
		t.Fatalf("SetBotActive() error: %v", err)
	}
	active, err = store.IsBotActive(ctx)
	if err != nil {
		t.Fatalf("IsBotActive() error: %v", err)
	}
	if active {
		t.Error("IsBotActive() = true after SetBotActive(false)")
	}
}

func TestFocusStatus(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	status, err := store.GetFocusStatus(ctx)
	if err != nil {
		t.Fatalf("GetFocusStatus() error: %v", err)
	}
	if status != database.DefaultFocusStatus {
		t.Errorf("GetFocusStatus() default = %q, want %q", status, database.DefaultFocusStatus)
	}

	if err := store.SetFocusStatus(ctx, "lagi coding"); err != nil {
		t.Fatalf("SetFocusStatus() error: %v", err)
	}
	status, err = store.GetFocusStatus(ctx)
	if err != nil {
		t.Fatalf("GetFocusStatus() error: %v", err)
	}
	if status != "lagi coding" {
		t.Errorf("GetFocusStatus() = %q, want %q", status, "lagi coding")
	}
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if err := store.RunSQLMaintenance(context.Background()); err != nil {
		t.Errorf("RunSQLMaintenance() error: %v", err)
	}
}
