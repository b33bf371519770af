package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/server/ratelimit"
	"github.com/jonathan/job-assistant/internal/types"
)

const testPassword = "Sup3r$ecret"

func testSettings() *config.Settings {
	return &config.Settings{
		AppName:     "Job Assistant",
		AppVersion:  "test",
		SecretKey:   "test-secret-key-for-jwt-signing-minimum-32-bytes",
		SessionTTL:  time.Hour,
		HTTPPort:    8080,
		CORSOrigins: []string{"http://localhost:3000"},
	}
}

// testServer wires a Server to a fake store with rate limiting off and a cheap bcrypt cost.
func testServer(t *testing.T) (*Server, *fakeStore) {
	t.Helper()
	return testServerWith(t, ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}))
}

func testServerWith(t *testing.T, limiter ratelimit.Allower) (*Server, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	s, err := New(Config{
		Store:     store,
		Settings:  testSettings(),
		Passwords: &config.PasswordConfig{BcryptCost: 4},
		Limiter:   limiter,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	t.Cleanup(limiter.Stop)
	return s, store
}

type call struct {
	method string
	path   string
	body   any
	token  string
}

func do(t *testing.T, s *Server, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	switch b := c.body.(type) {
	case nil:
	case string:
		body = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func createUser(t *testing.T, s *Server, username string) types.UserResponse {
	t.Helper()
	w := do(t, s, call{method: http.MethodPost, path: "/users", body: map[string]any{
		"username": username,
		"email":    username + "@example.com",
		"password": testPassword,
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody[types.UserResponse](t, w)
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{Settings: testSettings()})
	assert.Error(t, err)

	settings := testSettings()
	settings.SecretKey = ""
	_, err = New(Config{Store: newFakeStore(), Settings: settings, Passwords: &config.PasswordConfig{BcryptCost: 4}})
	assert.Error(t, err)
}

func TestRootEndpoint(t *testing.T) {
	s, _ := testServer(t)
	w := do(t, s, call{method: http.MethodGet, path: "/"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody[map[string]string](t, w)
	assert.Equal(t, "Welcome to Job Assistant!", body["message"])

	w = do(t, s, call{method: http.MethodGet, path: "/nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	s, store := testServer(t)

	w := do(t, s, call{method: http.MethodGet, path: "/health"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody[map[string]string](t, w)["status"])

	store.pingErr = errStoreDown
	w = do(t, s, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", decodeBody[map[string]string](t, w)["status"])
}

func TestEnumsEndpoint(t *testing.T) {
	s, _ := testServer(t)
	w := do(t, s, call{method: http.MethodGet, path: "/enums"})
	require.Equal(t, http.StatusOK, w.Code)

	catalog := decodeBody[[]EnumResponse](t, w)
	names := make(map[string][]string, len(catalog))
	for _, e := range catalog {
		names[e.Name] = e.Values
	}
	assert.Contains(t, names["document_type"], "cover_letter")
	assert.Contains(t, names["assistant_step_type"], "initial_synthesis")
}

func TestContentSchemaEndpoint(t *testing.T) {
	s, _ := testServer(t)

	w := do(t, s, call{method: http.MethodGet, path: "/document-types/cover_letter/schema"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/schema+json", w.Header().Get("Content-Type"))
	assert.True(t, json.Valid(w.Body.Bytes()))

	w = do(t, s, call{method: http.MethodGet, path: "/document-types/resume/schema?shared=true"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "contact_info")

	w = do(t, s, call{method: http.MethodGet, path: "/document-types/spreadsheet/schema"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCORS(t *testing.T) {
	s, _ := testServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  2,
		DefaultWindow: time.Minute,
	})
	s, _ := testServerWith(t, limiter)

	for i := 0; i < 2; i++ {
		w := do(t, s, call{method: http.MethodGet, path: "/enums"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := do(t, s, call{method: http.MethodGet, path: "/enums"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "rate_limit_exceeded", decodeBody[ErrorBody](t, w).Error)

	// Health checks are never limited.
	w = do(t, s, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPathUUIDValidation(t *testing.T) {
	s, _ := testServer(t)
	for _, path := range []string{"/users/abc", "/job-applications/abc", "/documents/abc", "/assistant-steps/abc"} {
		w := do(t, s, call{method: http.MethodGet, path: path})
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, path)
		assert.Equal(t, "id", decodeBody[ErrorBody](t, w).Fields[0].Field, path)
	}
}

func TestSweepSessions(t *testing.T) {
	s, store := testServer(t)
	user := createUser(t, s, "sweeper")

	w := do(t, s, call{method: http.MethodPost, path: "/auth/login", body: map[string]any{
		"login": "sweeper", "password": testPassword, "ttl": "1m",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, store.sessions, 1)

	s.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.sweepSessions(ctx, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		sessions, err := store.ListSessions(ctx, user.ID, db.ListOptions{})
		return err == nil && len(sessions) == 0
	}, time.Second, 10*time.Millisecond)
}
