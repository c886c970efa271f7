package dedup_test

import (
	"fmt"
	"testing"

	"github.com/emmovsixty/whatsapp-bot/internal/dedup"
)

func TestGuardAdmitsNewIDs(t *testing.T) {
	t.Parallel()

	g := dedup.NewGuard(3)

	for _, id := range []string{"a", "b", "c"} {
		if !g.Admit(id) {
			t.Errorf("Admit(%q) = false, want true for first sighting", id)
		}
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
}

func TestGuardRejectsDuplicates(t *testing.T) {
	t.Parallel()

	g := dedup.NewGuard(3)

	if !g.Admit("msg-1") {
		t.Fatal("first Admit returned false")
	}
	if g.Admit("msg-1") {
		t.Error("duplicate Admit returned true, want false")
	}
	if g.Len() != 1 {
		t.Errorf("Len() after duplicate = %d, want 1", g.Len())
	}
}

func TestGuardEvictsOldestWhenFull(t *testing.T) {
	t.Parallel()

	g := dedup.NewGuard(3)
	g.Admit("a")
	g.Admit("b")
	g.Admit("c")

	// Capacity reached; admitting a fourth ID evicts the oldest.
	if !g.Admit("d") {
		t.Fatal("Admit at capacity returned false")
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}

	// "a" was evicted, so it is admitted again; "b" is still remembered.
	if !g.Admit("a") {
		t.Error("evicted ID was not re-admitted")
	}
	if g.Admit("c") {
		t.Error("retained ID was re-admitted")
	}
}

func TestGuardDefaultCapacityFIFO(t *testing.T) {
	t.Parallel()

	g := dedup.NewGuard(dedup.DefaultCapacity)

	for i := 0; i < dedup.DefaultCapacity; i++ {
		if !g.Admit(fmt.Sprintf("msg-%d", i)) {
			t.Fatalf("Admit(msg-%d) = false", i)
		}
	}

	// One past capacity evicts msg-0 only.
	if !g.Admit("overflow") {
		t.Fatal("Admit(overflow) = false")
	}
	if !g.Admit("msg-0") {
		t.Error("oldest ID not evicted after overflow")
	}
	if g.Admit("msg-1") {
		t.Error("second-oldest ID evicted prematurely")
	}
}
