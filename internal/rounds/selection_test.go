package rounds_test

import (
	"testing"

	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/rounds"
)

// TestSelection_ToggleAll tests that toggle-all selects the page and then clears it
func TestSelection_ToggleAll(t *testing.T) {
	s := rounds.NewSelection()
	page := []models.EntryID{"solo:P1", "solo:P2", "team:Alpha"}

	s.ToggleAll(page)
	if s.Len() != 3 {
		t.Errorf("expected 3 selected, got %d", s.Len())
	}
	if !s.AllSelected(page) {
		t.Error("expected AllSelected after toggle-all")
	}

	s.ToggleAll(page)
	if s.Len() != 0 {
		t.Errorf("expected empty selection, got %d", s.Len())
	}
}

// TestSelection_ToggleAllKeepsOtherPages tests that activating toggle-all is a superset operation
func TestSelection_ToggleAllKeepsOtherPages(t *testing.T) {
	s := rounds.NewSelection()
	s.Toggle("solo:P9")
	s.Toggle("solo:P1")

	s.ToggleAll([]models.EntryID{"solo:P1", "solo:P2"})
	if s.Len() != 3 {
		t.Errorf("expected 3 selected, got %d", s.Len())
	}
	if !s.Has("solo:P9") {
		t.Error("expected cross-page selection to survive")
	}
	want := []models.EntryID{"solo:P9", "solo:P1", "solo:P2"}
	for i, id := range s.IDs() {
		if id != want[i] {
			t.Errorf("expected %v, got %v", want, s.IDs())
			break
		}
	}
}

// TestSelection_Flags tests the derived all/some flags
func TestSelection_Flags(t *testing.T) {
	s := rounds.NewSelection()
	page := []models.EntryID{"solo:P1", "solo:P2"}

	if s.AllSelected(nil) {
		t.Error("expected AllSelected false on an empty page")
	}
	if s.SomeSelected(page) {
		t.Error("expected SomeSelected false with nothing selected")
	}
	s.Toggle("solo:P1")
	if !s.SomeSelected(page) || s.AllSelected(page) {
		t.Error("expected partial page selection")
	}
	s.Toggle("solo:P2")
	if s.SomeSelected(page) || !s.AllSelected(page) {
		t.Error("expected full page selection")
	}
	s.Toggle("solo:P1")
	if s.Has("solo:P1") {
		t.Error("expected toggle to remove P1")
	}
	s.Clear()
	if s.Len() != 0 {
		t.Errorf("expected empty selection after clear, got %d", s.Len())
	}
}
