package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abrezinsky/roundops/internal/errors"
	"github.com/abrezinsky/roundops/internal/handlers"
	"github.com/abrezinsky/roundops/internal/services"
)

// TestAPIError_Error tests that the message is the error string
func TestAPIError_Error(t *testing.T) {
	err := handlers.NewAPIError(http.StatusBadRequest, "BAD_REQUEST", "test message")

	if err.Error() != "test message" {
		t.Errorf("expected 'test message', got %q", err.Error())
	}
	if err.Code != "BAD_REQUEST" {
		t.Errorf("expected code 'BAD_REQUEST', got %q", err.Code)
	}
}

// TestBadRequest_CodeAssignment tests that validation wording selects the validation code
func TestBadRequest_CodeAssignment(t *testing.T) {
	tests := []struct {
		message string
		code    string
	}{
		{"Request body is empty", handlers.ErrCodeBadRequest},
		{"Invalid page parameter", handlers.ErrCodeValidation},
		{"validation failed", handlers.ErrCodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			err := handlers.BadRequest(tt.message)
			if err.Status != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", err.Status)
			}
			if err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, err.Code)
			}
		})
	}
}

// TestInternalError tests that internal errors hide the original message
func TestInternalError(t *testing.T) {
	err := handlers.InternalError(fmt.Errorf("db connection failed"))

	if err.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", err.Status)
	}
	if err.Message != "Internal server error" {
		t.Errorf("expected generic message, got %q", err.Message)
	}
}

// TestToAPIError_DirectTests tests the mapping of every error class to a status
func TestToAPIError_DirectTests(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errors.NotFound("session x not found"), http.StatusNotFound, handlers.ErrCodeNotFound},
		{"validation", errors.Validation("no delete is pending"), http.StatusBadRequest, handlers.ErrCodeValidation},
		{"invalid input", errors.InvalidInput("bad status"), http.StatusBadRequest, handlers.ErrCodeValidation},
		{"conflict", errors.Conflict("duplicate"), http.StatusConflict, handlers.ErrCodeConflict},
		{"busy", errors.Busy("status update"), http.StatusConflict, handlers.ErrCodeBusy},
		{"upstream", errors.Upstream("backend down", fmt.Errorf("dial tcp")), http.StatusBadGateway, handlers.ErrCodeUpstream},
		{"internal kind", errors.Internal(fmt.Errorf("boom")), http.StatusInternalServerError, handlers.ErrCodeInternalServer},
		{"service error", services.ErrInvalidLimit, http.StatusBadRequest, handlers.ErrCodeBadRequest},
		{"wrapped service error", fmt.Errorf("list: %w", services.ErrInvalidQRSize), http.StatusBadRequest, handlers.ErrCodeBadRequest},
		{"invalid table", &services.InvalidTableError{Table: "users"}, http.StatusBadRequest, handlers.ErrCodeValidation},
		{"plain error", fmt.Errorf("unexpected"), http.StatusInternalServerError, handlers.ErrCodeInternalServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apiErr := handlers.ToAPIError(tt.err)
			if apiErr.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, apiErr.Status)
			}
			if apiErr.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, apiErr.Code)
			}
		})
	}
}

// TestDecodeJSON_EmptyBody tests that an empty body is a 400
func TestDecodeJSON_EmptyBody(t *testing.T) {
	setup := newTestSetup(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	req.AddCookie(setup.authCookie)
	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "empty") {
		t.Errorf("expected empty body message, got %s", rec.Body.String())
	}
}

// TestDecodeJSON_InvalidJSON tests that malformed JSON is a 400
func TestDecodeJSON_InvalidJSON(t *testing.T) {
	setup := newTestSetup(t)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", strings.NewReader("{not json"))
	req.AddCookie(setup.authCookie)
	rec := httptest.NewRecorder()
	setup.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid JSON") {
		t.Errorf("expected invalid JSON message, got %s", rec.Body.String())
	}
}

// TestParseIntParam_Invalid tests that a non-numeric slot is rejected
func TestParseIntParam_Invalid(t *testing.T) {
	setup := newTestSetup(t)
	sid := setup.openSession(t, 1)

	rec := setup.do(t, http.MethodPost, "/api/sessions/"+sid+"/podium/first", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// TestParseIntQuery_Invalid tests that a non-numeric page is rejected
func TestParseIntQuery_Invalid(t *testing.T) {
	setup := newTestSetup(t)
	sid := setup.openSession(t, 1)

	rec := setup.do(t, http.MethodGet, "/api/sessions/"+sid+"?page=two", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
