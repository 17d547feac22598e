package eventsapi

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/abrezinsky/roundops/internal/models"
)

// ResultsCall records one PostRoundResults invocation
type ResultsCall struct {
	EventID string
	RoundNo int
	Results []ResultItem
}

// DeleteCall records one DeleteRoundCheckIn invocation
type DeleteCall struct {
	EventID       string
	RoundNo       int
	ParticipantID string
}

// PrizesCall records one AssignEventPrizes invocation
type PrizesCall struct {
	EventID string
	Prizes  []PrizeItem
}

// MockClient is an in-memory events backend for tests. By default every
// submitted item is recorded without errors. Safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	baseURL     string
	rosters     map[string][]models.Entry
	rosterErr   error
	resultsFunc func(call ResultsCall) (*RoundResultsResponse, error)
	deleteFunc  func(call DeleteCall) (*MessageResponse, error)
	prizesFunc  func(call PrizesCall) (*PrizesResponse, error)
	flushErr    error
	resultsGate chan struct{}

	rosterCalls  int
	resultsCalls []ResultsCall
	deleteCalls  []DeleteCall
	prizesCalls  []PrizesCall
	flushCalls   []string
}

// MockOption configures the mock client
type MockOption func(*MockClient)

func rosterKey(eventID string, roundNo int) string {
	return fmt.Sprintf("%s#%d", eventID, roundNo)
}

// WithRoster sets the entries returned for a round
func WithRoster(eventID string, roundNo int, entries []models.Entry) MockOption {
	return func(m *MockClient) {
		m.rosters[rosterKey(eventID, roundNo)] = entries
	}
}

// WithRosterError makes ListRoundCheckIns fail
func WithRosterError(err error) MockOption {
	return func(m *MockClient) {
		m.rosterErr = err
	}
}

// WithResultsFunc replaces the PostRoundResults behaviour
func WithResultsFunc(fn func(call ResultsCall) (*RoundResultsResponse, error)) MockOption {
	return func(m *MockClient) {
		m.resultsFunc = fn
	}
}

// WithDeleteFunc replaces the DeleteRoundCheckIn behaviour
func WithDeleteFunc(fn func(call DeleteCall) (*MessageResponse, error)) MockOption {
	return func(m *MockClient) {
		m.deleteFunc = fn
	}
}

// WithPrizesFunc replaces the AssignEventPrizes behaviour
func WithPrizesFunc(fn func(call PrizesCall) (*PrizesResponse, error)) MockOption {
	return func(m *MockClient) {
		m.prizesFunc = fn
	}
}

// WithFlushError makes DeleteEventPrizes fail
func WithFlushError(err error) MockOption {
	return func(m *MockClient) {
		m.flushErr = err
	}
}

// WithResultsGate blocks every PostRoundResults call until gate is closed
func WithResultsGate(gate chan struct{}) MockOption {
	return func(m *MockClient) {
		m.resultsGate = gate
	}
}

// NewMockClient creates a new mock events client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{
		baseURL: "http://mock-events.local",
		rosters: make(map[string][]models.Entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetRoster replaces the entries of a round after construction
func (m *MockClient) SetRoster(eventID string, roundNo int, entries []models.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosters[rosterKey(eventID, roundNo)] = entries
}

func (m *MockClient) BaseURL() string {
	return m.baseURL
}

func (m *MockClient) ListRoundCheckIns(ctx context.Context, eventID string, roundNo int) ([]models.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosterCalls++
	if m.rosterErr != nil {
		return nil, m.rosterErr
	}
	entries := m.rosters[rosterKey(eventID, roundNo)]
	return append([]models.Entry(nil), entries...), nil
}

func (m *MockClient) PostRoundResults(ctx context.Context, eventID string, roundNo int, results []ResultItem) (*RoundResultsResponse, error) {
	if m.resultsGate != nil {
		select {
		case <-m.resultsGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return nil, fmt.Errorf("mock results gate never opened")
		}
	}

	call := ResultsCall{EventID: eventID, RoundNo: roundNo, Results: append([]ResultItem(nil), results...)}

	m.mu.Lock()
	m.resultsCalls = append(m.resultsCalls, call)
	fn := m.resultsFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(call)
	}
	resp := &RoundResultsResponse{}
	resp.Data.RecordedCount = len(results)
	return resp, nil
}

func (m *MockClient) DeleteRoundCheckIn(ctx context.Context, eventID string, roundNo int, participantID string) (*MessageResponse, error) {
	call := DeleteCall{EventID: eventID, RoundNo: roundNo, ParticipantID: participantID}

	m.mu.Lock()
	m.deleteCalls = append(m.deleteCalls, call)
	fn := m.deleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(call)
	}
	return &MessageResponse{Message: "Check-in removed"}, nil
}

func (m *MockClient) AssignEventPrizes(ctx context.Context, eventID string, prizes []PrizeItem) (*PrizesResponse, error) {
	call := PrizesCall{EventID: eventID, Prizes: append([]PrizeItem(nil), prizes...)}

	m.mu.Lock()
	m.prizesCalls = append(m.prizesCalls, call)
	fn := m.prizesFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(call)
	}
	resp := &PrizesResponse{}
	resp.Data.RecordedCount = len(prizes)
	return resp, nil
}

func (m *MockClient) DeleteEventPrizes(ctx context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushCalls = append(m.flushCalls, eventID)
	return m.flushErr
}

// RosterCalls returns how many times the roster was fetched
func (m *MockClient) RosterCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rosterCalls
}

// ResultsCalls returns a copy of the recorded results batches
func (m *MockClient) ResultsCalls() []ResultsCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ResultsCall(nil), m.resultsCalls...)
}

// DeleteCalls returns a copy of the recorded check-in removals
func (m *MockClient) DeleteCalls() []DeleteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]DeleteCall(nil), m.deleteCalls...)
}

// PrizesCalls returns a copy of the recorded prize assignments
func (m *MockClient) PrizesCalls() []PrizesCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]PrizesCall(nil), m.prizesCalls...)
}

// FlushCalls returns the event ids whose prizes were deleted
func (m *MockClient) FlushCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.flushCalls...)
}

// Ensure MockClient implements Client
var _ Client = (*MockClient)(nil)
