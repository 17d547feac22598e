// Package eventsapi provides a client for the festival events backend that
// owns rosters, round results and prizes.
package eventsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/roundops/internal/logger"
	"github.com/abrezinsky/roundops/internal/models"
)

// FlexString is an identifier that the backend may send as a JSON string
// or as a number.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler for FlexString
func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexString(n.String())
		return nil
	}

	return fmt.Errorf("FlexString: cannot unmarshal %s", string(data))
}

func (f FlexString) String() string {
	return string(f)
}

// ResultItem is one status update inside a round results batch. Exactly one
// of UserID and TeamID is set.
type ResultItem struct {
	UserID string                   `json:"user_id,omitempty"`
	TeamID string                   `json:"team_id,omitempty"`
	Status models.ParticipantStatus `json:"status"`
}

// UserError reports a rejected solo entry
type UserError struct {
	UserID FlexString `json:"user_id"`
	Error  string `json:"error"`
}

// TeamError reports a rejected team entry
type TeamError struct {
	TeamID FlexString `json:"team_id"`
	Error  string `json:"error"`
}

// RoundResultsResponse is the response of a round results batch
type RoundResultsResponse struct {
	Data struct {
		RecordedCount int `json:"recorded_count"`
	} `json:"data"`
	UserErrors []UserError `json:"user_errors,omitempty"`
	TeamErrors []TeamError `json:"team_errors,omitempty"`
}

// PrizeItem assigns a podium position to a user or a team
type PrizeItem struct {
	UserID   string `json:"user_id,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
	Position int    `json:"position"`
}

// PrizeError reports a rejected prize assignment
type PrizeError struct {
	UserID FlexString `json:"user_id,omitempty"`
	TeamID FlexString `json:"team_id,omitempty"`
	Error  string `json:"error"`
}

// PrizesResponse is the response of a prize assignment request. Errors may
// arrive either inside data or at the top level.
type PrizesResponse struct {
	Data struct {
		RecordedCount int          `json:"recorded_count"`
		Errors        []PrizeError `json:"errors,omitempty"`
	} `json:"data"`
	Errors []PrizeError `json:"errors,omitempty"`
}

// AllErrors merges the nested and top-level prize errors
func (r *PrizesResponse) AllErrors() []PrizeError {
	out := make([]PrizeError, 0, len(r.Data.Errors)+len(r.Errors))
	out = append(out, r.Data.Errors...)
	return append(out, r.Errors...)
}

// MessageResponse is returned by single-entity mutations
type MessageResponse struct {
	Message string `json:"message"`
}

// APIError is returned for non-2xx responses. It keeps whatever structured
// per-entity errors the backend attached to the body.
type APIError struct {
	StatusCode int          `json:"-"`
	Message    string       `json:"message"`
	Detail     string       `json:"error"`
	UserErrors []UserError  `json:"user_errors"`
	TeamErrors []TeamError  `json:"team_errors"`
	Errors     []PrizeError `json:"errors"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Detail
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("events backend returned status %d: %s", e.StatusCode, msg)
}

// Text returns the backend supplied message, or "" when there is none
func (e *APIError) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Detail
}

// Client defines the events backend operations used by round operations
type Client interface {
	// ListRoundCheckIns returns every entry checked into a round
	ListRoundCheckIns(ctx context.Context, eventID string, roundNo int) ([]models.Entry, error)
	// PostRoundResults records a batch of statuses for a round
	PostRoundResults(ctx context.Context, eventID string, roundNo int, results []ResultItem) (*RoundResultsResponse, error)
	// DeleteRoundCheckIn removes one participant's check-in from a round
	DeleteRoundCheckIn(ctx context.Context, eventID string, roundNo int, participantID string) (*MessageResponse, error)
	// AssignEventPrizes records podium positions for an event
	AssignEventPrizes(ctx context.Context, eventID string, prizes []PrizeItem) (*PrizesResponse, error)
	// DeleteEventPrizes removes every recorded winner of an event
	DeleteEventPrizes(ctx context.Context, eventID string) error
	// BaseURL returns the configured backend base URL
	BaseURL() string
}

// RequestIDHeader correlates a request with the backend's logs
const RequestIDHeader = "X-Request-ID"

// HTTPClient talks JSON to the events backend
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
	tokens     *TokenSource
}

// NewHTTPClient creates a client with a 30 second timeout. When secret is
// non-empty every request carries a signed bearer token.
func NewHTTPClient(baseURL, secret string, log logger.Logger) *HTTPClient {
	return NewHTTPClientWithHTTPClient(baseURL, secret, &http.Client{Timeout: 30 * time.Second}, log)
}

// NewHTTPClientWithHTTPClient creates a client with a custom http.Client
func NewHTTPClientWithHTTPClient(baseURL, secret string, httpClient *http.Client, log logger.Logger) *HTTPClient {
	c := &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
	if secret != "" {
		c.tokens = NewTokenSource(secret, DefaultTokenTTL)
	}
	return c
}

// BaseURL returns the configured backend base URL
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func roundPath(eventID string, roundNo int) string {
	return fmt.Sprintf("/events/%s/rounds/%d", url.PathEscape(eventID), roundNo)
}

// do sends a JSON request and decodes a 2xx body into out. Non-2xx
// responses are returned as *APIError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	apiURL := c.baseURL + path
	requestID := uuid.NewString()
	c.log.Debug("Events request", "method", method, "url", apiURL, "request_id", requestID, "body", string(payload))

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("failed to sign request token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to events backend: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debug("Events response", "status", resp.StatusCode, "body", string(respBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{}
		if len(respBody) > 0 {
			// A non-JSON error body still yields an APIError with the status
			_ = json.Unmarshal(respBody, apiErr)
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// checkInRow is the wire shape of a roster row. Rows with a team name are teams.
type checkInRow struct {
	UserID      FlexString          `json:"user_id"`
	FirstName   string              `json:"first_name"`
	LastName    string              `json:"last_name"`
	Email       string              `json:"email"`
	Phone       string              `json:"phone"`
	College     string              `json:"college"`
	TeamName    string              `json:"team_name"`
	TeamID      FlexString          `json:"team_id"`
	Members     []checkInMemberJSON `json:"members"`
	CheckedInAt time.Time           `json:"checked_in_at"`
}

type checkInMemberJSON struct {
	UserID    FlexString `json:"user_id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	College   string     `json:"college"`
}

func (m checkInMemberJSON) participant() models.Participant {
	return models.Participant{
		ParticipantID: m.UserID.String(),
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Email:         m.Email,
		Phone:         m.Phone,
		College:       m.College,
	}
}

func (r checkInRow) entry() models.Entry {
	if r.TeamName != "" {
		team := models.Team{Name: r.TeamName, TeamID: r.TeamID.String(), CheckedIn: r.CheckedInAt}
		for _, m := range r.Members {
			team.Members = append(team.Members, m.participant())
		}
		return team
	}
	return models.Solo{
		Participant: checkInMemberJSON{
			UserID:    r.UserID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Phone:     r.Phone,
			College:   r.College,
		}.participant(),
		CheckedIn: r.CheckedInAt,
	}
}

// ListRoundCheckIns returns every entry checked into a round
func (c *HTTPClient) ListRoundCheckIns(ctx context.Context, eventID string, roundNo int) ([]models.Entry, error) {
	var response struct {
		Data []checkInRow `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, roundPath(eventID, roundNo)+"/checkins", nil, &response); err != nil {
		return nil, err
	}

	entries := make([]models.Entry, 0, len(response.Data))
	for _, row := range response.Data {
		entries = append(entries, row.entry())
	}
	return entries, nil
}

// PostRoundResults records a batch of statuses for a round
func (c *HTTPClient) PostRoundResults(ctx context.Context, eventID string, roundNo int, results []ResultItem) (*RoundResultsResponse, error) {
	body := struct {
		Results []ResultItem `json:"results"`
	}{Results: results}

	var response RoundResultsResponse
	if err := c.do(ctx, http.MethodPost, roundPath(eventID, roundNo)+"/results", body, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// DeleteRoundCheckIn removes one participant's check-in from a round
func (c *HTTPClient) DeleteRoundCheckIn(ctx context.Context, eventID string, roundNo int, participantID string) (*MessageResponse, error) {
	path := roundPath(eventID, roundNo) + "/checkins/" + url.PathEscape(participantID)

	var response MessageResponse
	if err := c.do(ctx, http.MethodDelete, path, nil, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// AssignEventPrizes records podium positions for an event
func (c *HTTPClient) AssignEventPrizes(ctx context.Context, eventID string, prizes []PrizeItem) (*PrizesResponse, error) {
	body := struct {
		Results []PrizeItem `json:"results"`
	}{Results: prizes}

	var response PrizesResponse
	if err := c.do(ctx, http.MethodPost, "/events/"+url.PathEscape(eventID)+"/prizes", body, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// DeleteEventPrizes removes every recorded winner of an event
func (c *HTTPClient) DeleteEventPrizes(ctx context.Context, eventID string) error {
	return c.do(ctx, http.MethodDelete, "/events/"+url.PathEscape(eventID)+"/prizes", nil, nil)
}

// Ensure HTTPClient implements Client
var _ Client = (*HTTPClient)(nil)
