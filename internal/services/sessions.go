package services

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/itbasis/go-clock"
	"golang.org/x/sync/errgroup"

	"github.com/abrezinsky/roundops/internal/errors"
	"github.com/abrezinsky/roundops/internal/logger"
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/rounds"
	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

// OperationRecorder stores finished operations
type OperationRecorder interface {
	Record(ctx context.Context, rec models.OperationRecord)
}

// FeedbackEvent is broadcast when an operation on a round finishes
type FeedbackEvent struct {
	EventID   string         `json:"event_id"`
	RoundNo   int            `json:"round_no"`
	Operation string         `json:"operation"`
	Banner    *rounds.Banner `json:"banner"`
}

// SessionInfo describes an open round session
type SessionInfo struct {
	ID       string    `json:"id"`
	EventID  string    `json:"event_id"`
	RoundNo  int       `json:"round_no"`
	PageSize int       `json:"page_size"`
	OpenedAt time.Time `json:"opened_at"`
	LastSeen time.Time `json:"last_seen"`
}

type session struct {
	info SessionInfo
	ctrl *rounds.Controller
}

type roundRef struct {
	eventID string
	roundNo int
}

func (r roundRef) checkInsKey() models.QueryKey {
	return models.QueryKey{models.KeyRoundCheckIns, r.eventID, strconv.Itoa(r.roundNo)}
}

// RoundService owns the open round sessions. It fetches rosters from the
// events backend and refreshes every session of a round when that round's
// check-ins are invalidated.
type RoundService struct {
	log         logger.Logger
	client      eventsapi.Client
	modes       rounds.ModeStore
	recorder    OperationRecorder
	broadcaster Broadcaster
	clock       clock.Clock
	pageSize    int

	mu       sync.RWMutex
	sessions map[string]*session
}

// NewRoundService creates a new RoundService
func NewRoundService(log logger.Logger, client eventsapi.Client, modes rounds.ModeStore, recorder OperationRecorder, clk clock.Clock, pageSize int) *RoundService {
	if clk == nil {
		clk = clock.New()
	}
	return &RoundService{
		log:      log,
		client:   client,
		modes:    modes,
		recorder: recorder,
		clock:    clk,
		pageSize: pageSize,
		sessions: make(map[string]*session),
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *RoundService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// MaxPageSize bounds the page size a session may ask for
const MaxPageSize = 200

// Open fetches a round's roster and starts a session on it. A pageSize of
// zero uses the service default.
func (s *RoundService) Open(ctx context.Context, eventID string, roundNo, pageSize int) (*SessionInfo, error) {
	if eventID == "" {
		return nil, errors.InvalidInput("event_id is required")
	}
	if roundNo < 1 {
		return nil, errors.InvalidInputf("invalid round number %d", roundNo)
	}
	if pageSize < 0 || pageSize > MaxPageSize {
		return nil, errors.InvalidInputf("page size must be between 1 and %d", MaxPageSize)
	}
	if pageSize == 0 {
		pageSize = s.pageSize
	}

	entries, err := s.client.ListRoundCheckIns(ctx, eventID, roundNo)
	if err != nil {
		return nil, errors.Upstream("failed to load round check-ins", err)
	}

	ctrl := rounds.NewController(ctx, rounds.Config{
		EventID:     eventID,
		RoundNo:     roundNo,
		PageSize:    pageSize,
		API:         s.client,
		Invalidator: s,
		Modes:       s.modes,
		Reporter:    s,
		Clock:       s.clock,
		Log:         s.log,
	})
	ctrl.SetRoster(entries)

	now := s.clock.Now().UTC()
	sess := &session{
		info: SessionInfo{
			ID:       uuid.NewString(),
			EventID:  eventID,
			RoundNo:  roundNo,
			PageSize: pageSize,
			OpenedAt: now,
			LastSeen: now,
		},
		ctrl: ctrl,
	}

	s.mu.Lock()
	s.sessions[sess.info.ID] = sess
	s.mu.Unlock()

	s.log.Info("Round session opened", "session_id", sess.info.ID, "event_id", eventID, "round", roundNo, "entries", len(entries))
	info := sess.info
	return &info, nil
}

// Controller returns the controller of an open session
func (s *RoundService) Controller(id string) (*rounds.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.NotFoundf("session %s not found", id)
	}
	sess.info.LastSeen = s.clock.Now().UTC()
	return sess.ctrl, nil
}

// Close ends a session
func (s *RoundService) Close(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return errors.NotFoundf("session %s not found", id)
	}
	delete(s.sessions, id)
	s.log.Info("Round session closed", "session_id", id)
	return nil
}

// List returns the open sessions, oldest first
func (s *RoundService) List() []SessionInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]SessionInfo, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.info)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OpenedAt.Equal(out[j].OpenedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

// SweepIdle closes sessions not used for maxIdle and returns how many it closed
func (s *RoundService) SweepIdle(maxIdle time.Duration) int {
	cutoff := s.clock.Now().UTC().Add(-maxIdle)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		if sess.info.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	if n > 0 {
		s.log.Info("Closed idle round sessions", "count", n)
	}
	return n
}

// Refresh fetches the roster of a session's round again
func (s *RoundService) Refresh(ctx context.Context, id string) error {
	ctrl, err := s.Controller(id)
	if err != nil {
		return err
	}
	ref := roundRef{eventID: ctrl.EventID(), roundNo: ctrl.RoundNo()}
	if err := s.reload(ctx, ref); err != nil {
		return errors.Upstream("failed to reload round check-ins", err)
	}
	return nil
}

// reload fetches one round's roster and hands it to every session on that round
func (s *RoundService) reload(ctx context.Context, ref roundRef) error {
	entries, err := s.client.ListRoundCheckIns(ctx, ref.eventID, ref.roundNo)
	if err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.info.EventID == ref.eventID && sess.info.RoundNo == ref.roundNo {
			sess.ctrl.SetRoster(entries)
		}
	}
	return nil
}

// Invalidate implements rounds.Invalidator. Rounds whose check-ins match one
// of keys are fetched again concurrently; every key is then broadcast so
// dashboards can refetch their own views.
func (s *RoundService) Invalidate(ctx context.Context, keys ...models.QueryKey) {
	stale := map[roundRef]struct{}{}
	s.mu.RLock()
	for _, sess := range s.sessions {
		ref := roundRef{eventID: sess.info.EventID, roundNo: sess.info.RoundNo}
		for _, k := range keys {
			if k.Matches(ref.checkInsKey()) {
				stale[ref] = struct{}{}
			}
		}
	}
	s.mu.RUnlock()

	var g errgroup.Group
	for ref := range stale {
		ref := ref
		g.Go(func() error {
			if err := s.reload(ctx, ref); err != nil {
				s.log.Warn("Failed to reload round check-ins", "event_id", ref.eventID, "round", ref.roundNo, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.log.Debug("Queries invalidated", "keys", len(keys), "reloaded_rounds", len(stale))
	if s.broadcaster != nil {
		s.broadcaster.BroadcastInvalidate(keys)
	}
}

// Report implements rounds.Reporter
func (s *RoundService) Report(ctx context.Context, r rounds.Report) {
	if s.recorder != nil {
		s.recorder.Record(ctx, models.OperationRecord{
			Kind:       r.Operation,
			EventID:    r.EventID,
			RoundNo:    r.RoundNo,
			Outcome:    string(r.Feedback.Kind()),
			Recorded:   r.Recorded,
			Total:      r.Total,
			ErrorCount: r.Errors,
		})
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastFeedback(FeedbackEvent{
			EventID:   r.EventID,
			RoundNo:   r.RoundNo,
			Operation: r.Operation,
			Banner:    rounds.NewBanner(r.Feedback, time.Time{}),
		})
	}
}
