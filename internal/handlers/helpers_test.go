package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/itbasis/go-clock"

	"github.com/abrezinsky/roundops/internal/auth"
	"github.com/abrezinsky/roundops/internal/handlers"
	"github.com/abrezinsky/roundops/internal/logger"
	"github.com/abrezinsky/roundops/internal/models"
	"github.com/abrezinsky/roundops/internal/repository"
	"github.com/abrezinsky/roundops/internal/services"
	"github.com/abrezinsky/roundops/internal/testutil"
	"github.com/abrezinsky/roundops/pkg/eventsapi"
)

const testEvent = "ev-1"

// testSetup bundles a router wired to real services over a mock backend
type testSetup struct {
	router     chi.Router
	handlers   *handlers.Handlers
	authCookie *http.Cookie
	client     *eventsapi.MockClient
	repo       *repository.Repository
	rounds     *services.RoundService
	settings   *services.SettingsService
	history    *services.HistoryService
	clock      *clock.Mock
}

func newTestSetup(t *testing.T, opts ...eventsapi.MockOption) *testSetup {
	t.Helper()
	log := logger.Discard()
	repo := testutil.NewTestRepository(t)
	clk := clock.NewMock()
	client := eventsapi.NewMockClient(opts...)

	settings := services.NewSettingsService(log, repo)
	history := services.NewHistoryService(log, repo, clk)
	roundSvc := services.NewRoundService(log, client, settings, history, clk, 25)
	results := services.NewResultsService(log, client, roundSvc, history)
	checkIn := services.NewCheckInService(log, "https://checkin.example.org")

	h := handlers.NewForTesting(handlers.Deps{
		Rounds:   roundSvc,
		Settings: settings,
		Results:  results,
		CheckIn:  checkIn,
		History:  history,
	})
	h.DB = repo

	token, ok := h.Auth.Login("test-password")
	if !ok {
		t.Fatal("test login failed")
	}

	return &testSetup{
		router:     h.Router(),
		handlers:   h,
		authCookie: &http.Cookie{Name: auth.CookieName, Value: token},
		client:     client,
		repo:       repo,
		rounds:     roundSvc,
		settings:   settings,
		history:    history,
		clock:      clk,
	}
}

// do sends an authenticated request with an optional JSON body
func (s *testSetup) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(s.authCookie)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// openSession opens a session on round and returns its id
func (s *testSetup) openSession(t *testing.T, round int) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/sessions", map[string]interface{}{"event_id": testEvent, "round_no": round})
	if rec.Code != http.StatusCreated {
		t.Fatalf("open session: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp handlers.SessionResponse
	decode(t, rec, &resp)
	return resp.Session.ID
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var apiErr handlers.APIError
	decode(t, rec, &apiErr)
	return apiErr.Code
}

func solo(id string) models.Solo {
	return models.Solo{Participant: models.Participant{ParticipantID: id, FirstName: id, LastName: "Runner"}}
}

func team(name string, members ...string) models.Team {
	tm := models.Team{Name: name}
	for _, m := range members {
		tm.Members = append(tm.Members, models.Participant{ParticipantID: m})
	}
	return tm
}
