package rounds

import (
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

// EntryID resolves the stable key of a roster row. Teams are keyed by name,
// not by team id, so two teams sharing a display name in one round collide.
func EntryID(e models.Entry) models.EntryID {
	switch v := e.(type) {
	case models.Solo:
		return models.EntryID("solo:" + v.ParticipantID)
	case models.Team:
		return models.EntryID("team:" + v.Name)
	default:
		panic("rounds: unknown entry type")
	}
}

// Label is the display name used for podium slots
func Label(e models.Entry) string {
	switch v := e.(type) {
	case models.Solo:
		return v.FullName()
	case models.Team:
		return v.Name
	default:
		panic("rounds: unknown entry type")
	}
}

// teamKey is the identifier sent to the backend for a team: its id when it
// has one, its name otherwise.
func teamKey(t models.Team) string {
	if t.TeamID != "" {
		return t.TeamID
	}
	return t.Name
}

// resultItem builds the batch payload of one entry
func resultItem(e models.Entry, status models.ParticipantStatus) eventsapi.ResultItem {
	switch v := e.(type) {
	case models.Solo:
		return eventsapi.ResultItem{UserID: v.ParticipantID, Status: status}
	case models.Team:
		return eventsapi.ResultItem{TeamID: teamKey(v), Status: status}
	default:
		panic("rounds: unknown entry type")
	}
}

// winnerSlot builds the podium record of one entry
func winnerSlot(e models.Entry) models.WinnerSlot {
	ws := models.WinnerSlot{EntryID: EntryID(e), Label: Label(e)}
	switch v := e.(type) {
	case models.Solo:
		ws.UserID = v.ParticipantID
	case models.Team:
		ws.TeamID = teamKey(v)
	}
	return ws
}

// representativeID is the participant id used to remove an entry's
// check-in. Teams use their first member.
func representativeID(e models.Entry) (string, bool) {
	switch v := e.(type) {
	case models.Solo:
		return v.ParticipantID, v.ParticipantID != ""
	case models.Team:
		if len(v.Members) == 0 || v.Members[0].ParticipantID == "" {
			return "", false
		}
		return v.Members[0].ParticipantID, true
	default:
		panic("rounds: unknown entry type")
	}
}

// Index is the EntryID lookup over one dataset version. It is rebuilt, never
// patched, when the dataset changes.
type Index struct {
	version uint64
	order   []models.EntryID
	byID    map[models.EntryID]models.Entry
}

// NewIndex builds the lookup for entries. When two entries resolve to the
// same EntryID the first one wins and the later one is unreachable.
func NewIndex(version uint64, entries []models.Entry) *Index {
	idx := &Index{
		version: version,
		order:   make([]models.EntryID, 0, len(entries)),
		byID:    make(map[models.EntryID]models.Entry, len(entries)),
	}
	for _, e := range entries {
		id := EntryID(e)
		if _, dup := idx.byID[id]; dup {
			continue
		}
		idx.byID[id] = e
		idx.order = append(idx.order, id)
	}
	return idx
}

// Version is the dataset version the index was built from
func (i *Index) Version() uint64 { return i.version }

// Len is the number of distinct entries
func (i *Index) Len() int { return len(i.order) }

// IDs returns the EntryIDs in dataset order
func (i *Index) IDs() []models.EntryID {
	return append([]models.EntryID(nil), i.order...)
}

// Get looks up an entry
func (i *Index) Get(id models.EntryID) (models.Entry, bool) {
	e, ok := i.byID[id]
	return e, ok
}
