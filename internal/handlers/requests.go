package handlers

import "github.com/abrezinsky/roundops/internal/models"

// LoginRequest carries the operator password
type LoginRequest struct {
	Password string `json:"password"`
}

// OpenSessionRequest opens a round session
type OpenSessionRequest struct {
	EventID  string `json:"event_id"`
	RoundNo  int    `json:"round_no"`
	PageSize int    `json:"page_size"`
}

// EntryRequest names one roster entry
type EntryRequest struct {
	EntryID models.EntryID `json:"entry_id"`
}

// StatusRequest applies a participant status to the selection
type StatusRequest struct {
	Status string `json:"status"`
}

// ModeRequest switches between auto and manual assignment
type ModeRequest struct {
	Auto *bool `json:"auto"`
}

// DatabaseResetRequest represents a request to reset database tables
type DatabaseResetRequest struct {
	Tables []string `json:"tables"`
}
