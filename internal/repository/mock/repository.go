package mock

import (
	"context"

	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.SetSettingError = errors.New("database error")
//	svc := services.NewSettingsService(log, mockRepo)
type Repository struct {
	repository.FullRepository

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error
	ClearTableError error

	// ===== History Errors =====
	RecordOperationError error
	ListOperationsError  error
	OperationStatsError  error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

func (m *Repository) ClearTable(ctx context.Context, table string) error {
	if m.ClearTableError != nil {
		return m.ClearTableError
	}
	return m.FullRepository.ClearTable(ctx, table)
}

// ===== History Methods =====

func (m *Repository) RecordOperation(ctx context.Context, rec models.OperationRecord) (int64, error) {
	if m.RecordOperationError != nil {
		return 0, m.RecordOperationError
	}
	return m.FullRepository.RecordOperation(ctx, rec)
}

func (m *Repository) ListOperations(ctx context.Context, eventID string, limit int) ([]models.OperationRecord, error) {
	if m.ListOperationsError != nil {
		return nil, m.ListOperationsError
	}
	return m.FullRepository.ListOperations(ctx, eventID, limit)
}

func (m *Repository) OperationStats(ctx context.Context, eventID string) (map[string]int, error) {
	if m.OperationStatsError != nil {
		return nil, m.OperationStatsError
	}
	return m.FullRepository.OperationStats(ctx, eventID)
}
