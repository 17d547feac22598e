package services

import (
	"context"
	"time"

	"github.com/itbasis/go-clock"

	"github.com/abrezinsky/roundops/internal/logger"
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/repository"
)

// DefaultHistoryLimit is used when a caller does not ask for a limit
const DefaultHistoryLimit = 50

// HistoryService keeps the operation log
type HistoryService struct {
	log   logger.Logger
	repo  repository.HistoryRepository
	clock clock.Clock
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(log logger.Logger, repo repository.HistoryRepository, clk clock.Clock) *HistoryService {
	if clk == nil {
		clk = clock.New()
	}
	return &HistoryService{log: log, repo: repo, clock: clk}
}

// Record appends an operation. Failures are logged, never returned: the log
// must not turn a finished backend operation into an error.
func (s *HistoryService) Record(ctx context.Context, rec models.OperationRecord) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock.Now().UTC()
	}
	if _, err := s.repo.RecordOperation(ctx, rec); err != nil {
		s.log.Warn("Failed to record operation", "kind", rec.Kind, "event_id", rec.EventID, "error", err)
	}
}

// List returns the newest operations, optionally for one event
func (s *HistoryService) List(ctx context.Context, eventID string, limit int) ([]models.OperationRecord, error) {
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit < 1 || limit > 500 {
		return nil, ErrInvalidLimit
	}
	ops, err := s.repo.ListOperations(ctx, eventID, limit)
	if err != nil {
		return nil, err
	}
	if ops == nil {
		ops = []models.OperationRecord{}
	}
	return ops, nil
}

// HistoryStats summarizes the operation log
type HistoryStats struct {
	EventID    string         `json:"event_id,omitempty"`
	ByOutcome  map[string]int `json:"by_outcome"`
	Total      int            `json:"total"`
	ComputedAt time.Time      `json:"computed_at"`
}

// Stats counts logged operations per outcome
func (s *HistoryService) Stats(ctx context.Context, eventID string) (*HistoryStats, error) {
	byOutcome, err := s.repo.OperationStats(ctx, eventID)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range byOutcome {
		total += n
	}
	return &HistoryStats{
		EventID:    eventID,
		ByOutcome:  byOutcome,
		Total:      total,
		ComputedAt: s.clock.Now().UTC(),
	}, nil
}
