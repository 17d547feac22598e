package services

import (
	"context"
	"time"

	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/rounds"
)

// RoundServicer defines the interface for round session operations
type RoundServicer interface {
	Open(ctx context.Context, eventID string, roundNo, pageSize int) (*SessionInfo, error)
	Controller(id string) (*rounds.Controller, error)
	Close(id string) error
	List() []SessionInfo
	Refresh(ctx context.Context, id string) error
	SweepIdle(maxIdle time.Duration) int
	SetBroadcaster(b Broadcaster)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	LoadMode(ctx context.Context) (models.AssignmentMode, bool)
	SaveMode(ctx context.Context, mode models.AssignmentMode) error
	Mode(ctx context.Context) models.AssignmentMode
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error)
	SetBroadcaster(b Broadcaster)
}

// ResultsServicer defines the interface for event results operations
type ResultsServicer interface {
	FlushWinners(ctx context.Context, eventID string) error
}

// CheckInServicer defines the interface for check-in QR operations
type CheckInServicer interface {
	CheckInURL(eventID string, roundNo int) (string, error)
	QRCode(ctx context.Context, eventID string, roundNo, size int) ([]byte, error)
}

// HistoryServicer defines the interface for operation log queries
type HistoryServicer interface {
	Record(ctx context.Context, rec models.OperationRecord)
	List(ctx context.Context, eventID string, limit int) ([]models.OperationRecord, error)
	Stats(ctx context.Context, eventID string) (*HistoryStats, error)
}

// Ensure concrete types implement interfaces
var (
	_ RoundServicer      = (*RoundService)(nil)
	_ SettingsServicer   = (*SettingsService)(nil)
	_ ResultsServicer    = (*ResultsService)(nil)
	_ CheckInServicer    = (*CheckInService)(nil)
	_ HistoryServicer    = (*HistoryService)(nil)
	_ rounds.ModeStore   = (*SettingsService)(nil)
	_ rounds.Invalidator = (*RoundService)(nil)
	_ rounds.Reporter    = (*RoundService)(nil)
)
