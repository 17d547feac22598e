package services

import (
	"context"

	"github.com/abrezinsky/roundops/internal/errors"
	"github.com/abrezinsky/roundops/internal/logger"
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/rounds"
	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

// OpFlushWinners is the operation log kind of a winners flush
const OpFlushWinners = "flush_winners"

// ResultsService handles event-level results outside a round session
type ResultsService struct {
	log         logger.Logger
	client      eventsapi.Client
	invalidator rounds.Invalidator
	recorder    OperationRecorder
}

// NewResultsService creates a new ResultsService
func NewResultsService(log logger.Logger, client eventsapi.Client, invalidator rounds.Invalidator, recorder OperationRecorder) *ResultsService {
	return &ResultsService{log: log, client: client, invalidator: invalidator, recorder: recorder}
}

// FlushWinners removes every recorded winner of an event
func (s *ResultsService) FlushWinners(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.InvalidInput("event_id is required")
	}

	err := s.client.DeleteEventPrizes(ctx, eventID)
	rec := models.OperationRecord{Kind: OpFlushWinners, EventID: eventID, Outcome: "success"}
	if err != nil {
		rec.Outcome, rec.ErrorCount = "failure", 1
	}
	if s.recorder != nil {
		s.recorder.Record(ctx, rec)
	}
	if err != nil {
		s.log.Warn("Failed to flush event winners", "event_id", eventID, "error", err)
		return errors.Upstream("failed to flush event winners", err)
	}

	s.log.Info("Event winners flushed", "event_id", eventID)
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx,
			models.QueryKey{models.KeyEventWinners, eventID},
			models.QueryKey{models.KeyRoundResults, eventID},
		)
	}
	return nil
}
