package models

import (
	"strings"
	"time"
)

// Participant holds the personal fields of a checked-in person
type Participant struct {
	ParticipantID string `json:"participant_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	College       string `json:"college,omitempty"`
}

// FullName joins first and last name, falling back to the participant id
func (p Participant) FullName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.ParticipantID
	}
	return name
}

// Entry is one roster row of a round. It is either a Solo or a Team.
type Entry interface {
	CheckedInAt() time.Time
	entry()
}

// Solo is an individual participant checked into a round
type Solo struct {
	Participant
	CheckedIn time.Time `json:"checked_in_at"`
}

func (s Solo) CheckedInAt() time.Time { return s.CheckedIn }
func (Solo) entry()                   {}

// Team is a team checked into a round. TeamID is empty when the backend
// has not assigned one.
type Team struct {
	Name      string        `json:"team_name"`
	TeamID    string        `json:"team_id,omitempty"`
	Members   []Participant `json:"members"`
	CheckedIn time.Time     `json:"checked_in_at"`
}

func (t Team) CheckedInAt() time.Time { return t.CheckedIn }
func (Team) entry()                   {}

// EntryID is the stable key of a roster row: "solo:<participant>" or "team:<name>"
type EntryID string

// ParticipantStatus is the per-round outcome recorded for an entry
type ParticipantStatus string

const (
	StatusQualified    ParticipantStatus = "QUALIFIED"
	StatusEliminated   ParticipantStatus = "ELIMINATED"
	StatusDisqualified ParticipantStatus = "DISQUALIFIED"
)

// Valid reports whether s is one of the known statuses
func (s ParticipantStatus) Valid() bool {
	switch s {
	case StatusQualified, StatusEliminated, StatusDisqualified:
		return true
	}
	return false
}

// Complement returns the opposite status for QUALIFIED and ELIMINATED.
// DISQUALIFIED has no complement.
func (s ParticipantStatus) Complement() (ParticipantStatus, bool) {
	switch s {
	case StatusQualified:
		return StatusEliminated, true
	case StatusEliminated:
		return StatusQualified, true
	}
	return "", false
}

// PrizeSlot is a podium position
type PrizeSlot int

const (
	FirstPlace  PrizeSlot = 1
	SecondPlace PrizeSlot = 2
	ThirdPlace  PrizeSlot = 3
)

// PrizeSlots lists the podium positions in order
var PrizeSlots = []PrizeSlot{FirstPlace, SecondPlace, ThirdPlace}

func (p PrizeSlot) Valid() bool {
	return p >= FirstPlace && p <= ThirdPlace
}

// WinnerSlot is the entry assigned to a podium position. Exactly one of
// UserID and TeamID is set.
type WinnerSlot struct {
	EntryID EntryID `json:"entry_id"`
	Label   string  `json:"label"`
	UserID  string  `json:"user_id,omitempty"`
	TeamID  string  `json:"team_id,omitempty"`
}

// AssignmentMode controls whether a status change also flips everyone else
type AssignmentMode string

const (
	ModeAuto   AssignmentMode = "auto"
	ModeManual AssignmentMode = "manual"
)

// ModeSettingKey is the durable key holding the assignment mode
const ModeSettingKey = "checkin-assignment-mode"

// ParseAssignmentMode accepts "auto" or "manual"
func ParseAssignmentMode(s string) (AssignmentMode, bool) {
	switch AssignmentMode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAuto:
		return ModeAuto, true
	case ModeManual:
		return ModeManual, true
	}
	return "", false
}

// QueryKey identifies cached server data, e.g. ["round-results", "ev-1", "2"].
// Keys match by prefix: ["round-checkins"] covers every round's check-ins.
type QueryKey []string

// Matches reports whether k is a prefix of other
func (k QueryKey) Matches(other QueryKey) bool {
	if len(k) > len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

func (k QueryKey) String() string {
	return strings.Join(k, "/")
}

// Cache key roots shared with the dashboard
const (
	KeyRoundCheckIns = "round-checkins"
	KeyRoundResults  = "round-results"
	KeyEventWinners  = "event-winners"
)

// OperationRecord is one row of the operation history
type OperationRecord struct {
	ID         int64     `json:"id"`
	Kind       string    `json:"kind"`
	EventID    string    `json:"event_id"`
	RoundNo    int       `json:"round_no"`
	Outcome    string    `json:"outcome"`
	Recorded   int       `json:"recorded"`
	Total      int       `json:"total"`
	ErrorCount int       `json:"error_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Ordinal returns "1st", "2nd" or "3rd"
func (p PrizeSlot) Ordinal() string {
	switch p {
	case FirstPlace:
		return "1st"
	case SecondPlace:
		return "2nd"
	case ThirdPlace:
		return "3rd"
	}
	return "?"
}
