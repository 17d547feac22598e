package repository

import (
	"context"

	"github.com/abrezinsky/roundops/internal/models"
)

// SettingsRepository defines settings data operations
type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	ClearTable(ctx context.Context, table string) error
}

// HistoryRepository defines operation log data operations
type HistoryRepository interface {
	RecordOperation(ctx context.Context, rec models.OperationRecord) (int64, error)
	ListOperations(ctx context.Context, eventID string, limit int) ([]models.OperationRecord, error)
	OperationStats(ctx context.Context, eventID string) (map[string]int, error)
}

// FullRepository combines all repository interfaces
type FullRepository interface {
	SettingsRepository
	HistoryRepository
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
