package handlers

import (
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/rounds"
	"github.com/abrezinsky/roundops/internal/services"
)

// LoginResponse returns the session token for non-browser clients
type LoginResponse struct {
	Token string `json:"token"`
}

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database,omitempty"`
	Sessions  int    `json:"sessions"`
	WSClients int    `json:"ws_clients"`
}

// SessionResponse pairs a session with its current view
type SessionResponse struct {
	Session *services.SessionInfo `json:"session,omitempty"`
	State   rounds.State          `json:"state"`
}

// OperationResponse is returned by operations that may produce a banner.
// Feedback is omitted when the operation had nothing to do.
type OperationResponse struct {
	Feedback *rounds.Banner `json:"feedback,omitempty"`
	State    rounds.State   `json:"state"`
}

// ModeResponse reports the assignment mode
type ModeResponse struct {
	Mode models.AssignmentMode `json:"mode"`
	Auto bool                  `json:"auto"`
}

// CheckInURLResponse is the link encoded in a round's check-in QR code
type CheckInURLResponse struct {
	EventID string `json:"event_id"`
	RoundNo int    `json:"round_no"`
	URL     string `json:"url"`
}

// HistoryResponse lists recorded operations
type HistoryResponse struct {
	Operations []models.OperationRecord `json:"operations"`
}

func newModeResponse(m models.AssignmentMode) ModeResponse {
	return ModeResponse{Mode: m, Auto: m == models.ModeAuto}
}
