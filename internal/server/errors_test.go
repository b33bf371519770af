package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/schemas"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.Invalid("email", "bad"), http.StatusUnprocessableEntity, "validation_error"},
		{apperr.NotFound("User", "x"), http.StatusNotFound, "not_found"},
		{&apperr.PermissionDeniedError{}, http.StatusForbidden, "permission_denied"},
		{&apperr.DuplicateResourceError{Resource: "Email"}, http.StatusConflict, "duplicate_resource"},
		{&apperr.AuthenticationError{}, http.StatusUnauthorized, "authentication_failed"},
		{&apperr.RateLimitExceededError{}, http.StatusTooManyRequests, "rate_limit_exceeded"},
		{&apperr.BusinessRuleViolationError{Rule: "step_order"}, http.StatusConflict, "business_rule_violation"},
		{&apperr.ExternalServiceError{Service: "smtp"}, http.StatusBadGateway, "external_service_error"},
		{&apperr.DatabaseError{}, http.StatusInternalServerError, "database_error"},
		{&apperr.ConfigurationError{}, http.StatusInternalServerError, "configuration_error"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{fmt.Errorf("wrapped: %w", apperr.NotFound("Document", "x")), http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := HTTPStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestErrorBody_HidesInternals(t *testing.T) {
	body := errorBody(errors.New("pq: password authentication failed"), http.StatusInternalServerError, "internal_error")
	assert.Equal(t, "Internal Server Error", body.Message)

	loadErr := &schemas.SchemaLoadError{Path: "content/resume.json", Message: "read failed"}
	status, code := HTTPStatus(loadErr)
	body = errorBody(loadErr, status, code)
	assert.NotContains(t, body.Message, "resume.json")

	rule := &apperr.BusinessRuleViolationError{Rule: "workflow_complete", Detail: "final_checklist is the last step."}
	status, code = HTTPStatus(rule)
	body = errorBody(rule, status, code)
	assert.Equal(t, "workflow_complete", body.Rule)
	assert.Contains(t, body.Message, "last step")
}

func TestWriteError_RetryAfter(t *testing.T) {
	s := &Server{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/users", nil)

	s.writeError(w, r, &apperr.RateLimitExceededError{RetryAfter: 3 * time.Second})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("Retry-After"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestWriteError_LogsDatabaseCause(t *testing.T) {
	var logs bytes.Buffer
	s := &Server{logger: slog.New(slog.NewTextHandler(&logs, nil))}
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/users", nil)

	dbErr := &apperr.DatabaseError{Message: "list users failed", Cause: errors.New("dial tcp 10.0.0.5:5432: connection refused")}
	s.writeError(w, r, fmt.Errorf("listing: %w", dbErr))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
	assert.Contains(t, logs.String(), "cause=")
	assert.Contains(t, logs.String(), "connection refused")

	// Client errors carry no cause attribute.
	logs.Reset()
	s.writeError(httptest.NewRecorder(), r, apperr.Invalid("email", "bad"))
	assert.NotContains(t, logs.String(), "cause=")
}

func TestRootCause(t *testing.T) {
	inner := errors.New("timeout")
	cause, wrapped := rootCause(fmt.Errorf("a: %w", &apperr.DatabaseError{Cause: inner}))
	assert.True(t, wrapped)
	assert.Same(t, inner, cause)

	plain := errors.New("plain")
	cause, wrapped = rootCause(plain)
	assert.False(t, wrapped)
	assert.Same(t, plain, cause)
}
