package rounds

import "github.com/abrezinsky/roundops/internal/models"

// Selection is the set of selected EntryIDs. It remembers insertion order so
// batch payloads follow the order the operator picked rows in.
type Selection struct {
	order []models.EntryID
	set   map[models.EntryID]struct{}
}

// NewSelection returns an empty selection
func NewSelection() *Selection {
	return &Selection{set: make(map[models.EntryID]struct{})}
}

func (s *Selection) Has(id models.EntryID) bool {
	_, ok := s.set[id]
	return ok
}

func (s *Selection) Len() int {
	return len(s.order)
}

// IDs returns a snapshot of the selection in insertion order
func (s *Selection) IDs() []models.EntryID {
	return append([]models.EntryID(nil), s.order...)
}

func (s *Selection) add(id models.EntryID) {
	if s.Has(id) {
		return
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *Selection) remove(id models.EntryID) {
	if !s.Has(id) {
		return
	}
	delete(s.set, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Toggle adds id when absent and removes it when present
func (s *Selection) Toggle(id models.EntryID) {
	if s.Has(id) {
		s.remove(id)
		return
	}
	s.add(id)
}

// Clear empties the selection
func (s *Selection) Clear() {
	s.order = nil
	s.set = make(map[models.EntryID]struct{})
}

// ToggleAll clears everything when the whole page is already selected,
// otherwise it adds the page to the selection and keeps other pages' picks.
func (s *Selection) ToggleAll(page []models.EntryID) {
	if s.AllSelected(page) {
		s.Clear()
		return
	}
	for _, id := range page {
		s.add(id)
	}
}

// AllSelected reports whether every page id is selected. False for an empty page.
func (s *Selection) AllSelected(page []models.EntryID) bool {
	if len(page) == 0 {
		return false
	}
	for _, id := range page {
		if !s.Has(id) {
			return false
		}
	}
	return true
}

// SomeSelected reports whether part, but not all, of the page is selected
func (s *Selection) SomeSelected(page []models.EntryID) bool {
	n := 0
	for _, id := range page {
		if s.Has(id) {
			n++
		}
	}
	return n > 0 && n < len(page)
}

// Single returns the only selected id when exactly one row is selected
func (s *Selection) Single() (models.EntryID, bool) {
	if len(s.order) != 1 {
		return "", false
	}
	return s.order[0], true
}
