package rounds_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/itbasis/go-clock"

	"github.com/abrezinsky/roundops/internal/logger"
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/rounds"
	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

const (
	testEvent = "ev-1"
	testRound = 2
)

func solo(id string) models.Solo {
	return models.Solo{Participant: models.Participant{ParticipantID: id, FirstName: "First" + id, LastName: "Last"}}
}

func team(name string, members ...string) models.Team {
	t := models.Team{Name: name}
	for _, m := range members {
		t.Members = append(t.Members, models.Participant{ParticipantID: m})
	}
	return t
}

// recordingInvalidator collects invalidated keys
type recordingInvalidator struct {
	mu   sync.Mutex
	keys []models.QueryKey
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, keys ...models.QueryKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, keys...)
}

func (r *recordingInvalidator) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, k.String())
	}
	return out
}

// memoryModes is an in-memory ModeStore
type memoryModes struct {
	mu      sync.Mutex
	mode    models.AssignmentMode
	saveErr error
	saved   []models.AssignmentMode
}

func (m *memoryModes) LoadMode(ctx context.Context) (models.AssignmentMode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode, m.mode != ""
}

func (m *memoryModes) SaveMode(ctx context.Context, mode models.AssignmentMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, mode)
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mode = mode
	return nil
}

// recordingReporter collects operation reports
type recordingReporter struct {
	mu      sync.Mutex
	reports []rounds.Report
}

func (r *recordingReporter) Report(ctx context.Context, rep rounds.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

type fixture struct {
	ctrl        *rounds.Controller
	api         *eventsapi.MockClient
	invalidator *recordingInvalidator
	modes       *memoryModes
	reporter    *recordingReporter
	clock       *clock.Mock
}

func newFixture(t *testing.T, mode models.AssignmentMode, entries []models.Entry, opts ...eventsapi.MockOption) *fixture {
	t.Helper()
	f := &fixture{
		api:         eventsapi.NewMockClient(opts...),
		invalidator: &recordingInvalidator{},
		modes:       &memoryModes{mode: mode},
		reporter:    &recordingReporter{},
		clock:       clock.NewMock(),
	}
	f.ctrl = rounds.NewController(context.Background(), rounds.Config{
		EventID:     testEvent,
		RoundNo:     testRound,
		PageSize:    10,
		API:         f.api,
		Invalidator: f.invalidator,
		Modes:       f.modes,
		Reporter:    f.reporter,
		Clock:       f.clock,
		Log:         logger.Discard(),
	})
	f.ctrl.SetRoster(entries)
	return f
}

// itemKey renders a result item as "user:<id>" or "team:<id>"
func itemKey(item eventsapi.ResultItem) string {
	if item.UserID != "" {
		return "user:" + item.UserID
	}
	return "team:" + item.TeamID
}

// callsByStatus groups the items of every results call by status
func callsByStatus(calls []eventsapi.ResultsCall) map[models.ParticipantStatus][]string {
	out := make(map[models.ParticipantStatus][]string)
	for _, c := range calls {
		for _, item := range c.Results {
			out[item.Status] = append(out[item.Status], itemKey(item))
		}
	}
	for _, v := range out {
		sort.Strings(v)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
