// Package server provides the HTTP REST API of the job application assistant.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/server/middleware"
	"github.com/jonathan/job-assistant/internal/server/ratelimit"
)

// sessionSweepInterval is how often expired sessions are purged while serving.
const sessionSweepInterval = time.Hour

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       Store
	settings    *config.Settings
	logger      *slog.Logger
	rateLimiter ratelimit.Allower
	tokens      *TokenService
	users       *UserService
	now         func() time.Time
}

// Config holds server dependencies. Store, Settings and Passwords are required.
type Config struct {
	Store     Store
	Settings  *config.Settings
	Passwords *config.PasswordConfig
	// Limiter defaults to an in-memory limiter with settings from the environment.
	Limiter ratelimit.Allower
	Logger  *slog.Logger
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil || cfg.Settings == nil || cfg.Passwords == nil {
		return nil, errors.New("server: store, settings and password config are required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	jwtConfig, err := cfg.Settings.JWT()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	s := &Server{
		store:       cfg.Store,
		settings:    cfg.Settings,
		logger:      logger,
		rateLimiter: cfg.Limiter,
		tokens:      NewTokenService(jwtConfig),
		users:       NewUserService(cfg.Store, cfg.Passwords),
		now:         time.Now,
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig(func(string) (string, bool) { return "", false }))
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Settings.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the routed handler with its middleware chain.
func (s *Server) Handler() http.Handler {
	requireAuth := middleware.AuthMiddleware(&sessionValidator{tokens: s.tokens, store: s.store})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /enums", s.handleEnums)
	mux.HandleFunc("GET /document-types/{type}/schema", s.handleContentSchema)

	// Authentication
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.Handle("GET /auth/me", requireAuth(http.HandlerFunc(s.handleMe)))
	mux.Handle("POST /auth/logout", requireAuth(http.HandlerFunc(s.handleLogout)))

	// Users
	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PATCH /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)
	mux.HandleFunc("POST /users/{id}/restore", s.handleRestoreUser)

	// Job applications
	mux.HandleFunc("POST /users/{id}/job-applications", s.handleCreateJobApplication)
	mux.HandleFunc("GET /users/{id}/job-applications", s.handleListJobApplications)
	mux.HandleFunc("GET /job-applications/{id}", s.handleGetJobApplication)
	mux.HandleFunc("PATCH /job-applications/{id}", s.handleUpdateJobApplication)
	mux.HandleFunc("DELETE /job-applications/{id}", s.handleDeleteJobApplication)
	mux.HandleFunc("POST /job-applications/{id}/restore", s.handleRestoreJobApplication)

	// Assistant steps
	mux.HandleFunc("GET /job-applications/{id}/steps", s.handleListSteps)
	mux.HandleFunc("POST /job-applications/{id}/steps", s.handleCreateStep)
	mux.HandleFunc("POST /job-applications/{id}/advance", s.handleAdvance)
	mux.HandleFunc("GET /assistant-steps/{id}", s.handleGetStep)
	mux.HandleFunc("PATCH /assistant-steps/{id}", s.handleUpdateStep)

	// Documents
	mux.HandleFunc("POST /users/{id}/documents", s.handleCreateDocument)
	mux.HandleFunc("GET /users/{id}/documents", s.handleListDocuments)
	mux.HandleFunc("GET /documents/{id}", s.handleGetDocument)
	mux.HandleFunc("PATCH /documents/{id}", s.handleUpdateDocument)
	mux.HandleFunc("DELETE /documents/{id}", s.handleDeleteDocument)
	mux.HandleFunc("POST /documents/{id}/restore", s.handleRestoreDocument)
	mux.HandleFunc("GET /documents/{id}/job-applications", s.handleListDocumentLinks)
	mux.HandleFunc("PUT /documents/{id}/job-applications/{app_id}", s.handleAttachDocument)
	mux.HandleFunc("DELETE /documents/{id}/job-applications/{app_id}", s.handleDetachDocument)
	mux.HandleFunc("GET /job-applications/{id}/documents", s.handleListApplicationDocuments)

	// Sessions
	mux.Handle("POST /users/{id}/sessions", requireAuth(http.HandlerFunc(s.handleCreateSession)))
	mux.Handle("GET /users/{id}/sessions", requireAuth(http.HandlerFunc(s.handleListSessions)))
	mux.Handle("DELETE /sessions/{id}", requireAuth(http.HandlerFunc(s.handleDeleteSession)))

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr, "app", s.settings.AppName, "version", s.settings.AppVersion)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweepSessions(sweepCtx, sessionSweepInterval)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.rateLimiter.Stop()
	s.logger.Info("server stopped")
	return nil
}

// sweepSessions deletes expired sessions every interval until ctx is done.
func (s *Server) sweepSessions(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.DeleteExpiredSessions(ctx, s.now())
			if err != nil {
				s.logger.Warn("expired session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}

// withCORS adds CORS headers for the configured origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	origins := s.settings.CORSOrigins
	anyOrigin := slices.Contains(origins, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case anyOrigin:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(r.Context(), s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logs.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("error encoding JSON response", "error", err)
	}
}

// extractClientID identifies the caller by the IP of RemoteAddr. Forwarded headers are not
// trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	s.logger.Warn("rate limit exceeded",
		"client", s.extractClientID(r),
		"method", r.Method,
		"path", r.URL.Path,
		"limit", info.Limit,
		"reset", info.ResetTime,
	)
	s.writeError(w, r, &apperr.RateLimitExceededError{RetryAfter: info.RetryAfter})
}
