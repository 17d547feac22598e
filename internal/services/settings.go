package services

import (
	"context"

	"github.com/abrezinsky/roundops/internal/logger"
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/repository"
)

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastMode(mode models.AssignmentMode)
	BroadcastInvalidate(keys []models.QueryKey)
	BroadcastFeedback(event FeedbackEvent)
}

// SettingsService handles settings-related business logic
type SettingsService struct {
	log         logger.Logger
	repo        repository.SettingsRepository
	broadcaster Broadcaster
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *SettingsService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// LoadMode reads the stored assignment mode. It reports false when the
// setting is missing, unreadable or holds an unknown value.
func (s *SettingsService) LoadMode(ctx context.Context) (models.AssignmentMode, bool) {
	value, err := s.repo.GetSetting(ctx, models.ModeSettingKey)
	if err != nil {
		if err != repository.ErrNotFound {
			s.log.Warn("Failed to read assignment mode", "error", err)
		}
		return "", false
	}
	mode, ok := models.ParseAssignmentMode(value)
	if !ok {
		s.log.Warn("Ignoring unknown assignment mode", "value", value)
	}
	return mode, ok
}

// SaveMode stores the assignment mode and tells connected clients
func (s *SettingsService) SaveMode(ctx context.Context, mode models.AssignmentMode) error {
	if err := s.repo.SetSetting(ctx, models.ModeSettingKey, string(mode)); err != nil {
		return err
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMode(mode)
	}
	return nil
}

// Mode returns the stored mode, auto when none is stored
func (s *SettingsService) Mode(ctx context.Context) models.AssignmentMode {
	if mode, ok := s.LoadMode(ctx); ok {
		return mode
	}
	return models.ModeAuto
}

// GetSetting retrieves an arbitrary setting
func (s *SettingsService) GetSetting(ctx context.Context, key string) (string, error) {
	return s.repo.GetSetting(ctx, key)
}

// SetSetting saves an arbitrary setting
func (s *SettingsService) SetSetting(ctx context.Context, key, value string) error {
	return s.repo.SetSetting(ctx, key, value)
}

// ValidTables lists the tables ResetTables may clear
var ValidTables = map[string]bool{
	"settings":      true,
	"operation_log": true,
}

// ResetTablesResult reports which tables were cleared
type ResetTablesResult struct {
	Tables  []string `json:"tables"`
	Message string   `json:"message"`
}

// ResetTables clears the given tables. Clearing settings restores auto mode.
func (s *SettingsService) ResetTables(ctx context.Context, tables []string) (*ResetTablesResult, error) {
	if len(tables) == 0 {
		return nil, ErrNoTablesSpecified
	}
	for _, table := range tables {
		if !ValidTables[table] {
			return nil, &InvalidTableError{Table: table}
		}
	}
	for _, table := range tables {
		if err := s.repo.ClearTable(ctx, table); err != nil {
			return nil, err
		}
	}
	if containsTable(tables, "settings") && s.broadcaster != nil {
		s.broadcaster.BroadcastMode(models.ModeAuto)
	}
	s.log.Info("Tables reset", "tables", tables)
	return &ResetTablesResult{
		Tables:  tables,
		Message: "Tables cleared",
	}, nil
}

func containsTable(tables []string, table string) bool {
	for _, t := range tables {
		if t == table {
			return true
		}
	}
	return false
}
