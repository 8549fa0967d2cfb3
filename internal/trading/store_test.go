package trading

import (
	"path/filepath"
	"testing"
	"time"
)

func TestOpenDateStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	store, err := NewOpenDateStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opened := time.Date(2026, 8, 25, 14, 30, 0, 0, time.UTC)
	store.Register("TSLA260116C00300000", opened)

	// A fresh store must see the persisted state.
	reloaded, err := NewOpenDateStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := reloaded.OpenDate("TSLA260116C00300000")
	if !ok {
		t.Fatal("expected symbol to survive reload")
	}
	if !got.Equal(opened) {
		t.Errorf("open date = %v, want %v", got, opened)
	}
}

func TestOpenDateStore_PartialRemoveSurvivesReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	store, err := NewOpenDateStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	openedTSLA := time.Date(2026, 8, 24, 14, 30, 0, 0, time.UTC)
	openedNVDA := time.Date(2026, 8, 26, 15, 0, 0, 0, time.UTC)
	store.Register("TSLA260116C00300000", openedTSLA)
	store.Register("NVDA260220P00150000", openedNVDA)

	reloaded, err := NewOpenDateStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("expected both symbols after reload, got %d entries", reloaded.Len())
	}
	reloaded.Remove("TSLA260116C00300000")

	final, err := NewOpenDateStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.Len() != 1 {
		t.Fatalf("expected one entry after removal, got %d", final.Len())
	}
	if _, ok := final.OpenDate("TSLA260116C00300000"); ok {
		t.Error("expected removed symbol to stay gone after reload")
	}
	got, ok := final.OpenDate("NVDA260220P00150000")
	if !ok {
		t.Fatal("expected remaining symbol to survive the removal")
	}
	if !got.Equal(openedNVDA) {
		t.Errorf("open date = %v, want %v", got, openedNVDA)
	}
}

func TestOpenDateStore_Remove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.json")
	store, err := NewOpenDateStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.Register("SPY260116C00600000", time.Now())
	store.Remove("SPY260116C00600000")
	if _, ok := store.OpenDate("SPY260116C00600000"); ok {
		t.Error("expected symbol removed")
	}

	reloaded, err := NewOpenDateStore(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reloaded.Len() != 0 {
		t.Errorf("expected empty store after reload, got %d entries", reloaded.Len())
	}
}

func TestOpenDateStore_MissingFileStartsEmpty(t *testing.T) {
	store, err := NewOpenDateStore(filepath.Join(t.TempDir(), "nope", "positions.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store, got %d entries", store.Len())
	}
}
