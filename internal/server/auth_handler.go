package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/server/middleware"
	"github.com/jonathan/job-assistant/internal/types"
)

// handleLogin checks credentials and opens a session. The token in the response is the only
// copy the client will receive.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ttl, err := req.Lifetime(s.settings.SessionTTL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.users.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp, err := s.openSession(r.Context(), user, ttl, clientIP(r), userAgent(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("user logged in", "user_id", user.ID, "session_id", resp.Session.ID)
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleMe returns the user behind the bearer token.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.writeError(w, r, &apperr.AuthenticationError{Message: "Authentication required.", Cause: err})
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if user == nil {
		s.writeError(w, r, apperr.NotFound("User", userID))
		return
	}

	s.jsonResponse(w, http.StatusOK, types.UserToResponse(user))
}

// handleLogout deactivates the session behind the bearer token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.GetToken(r)
	if !ok {
		s.writeError(w, r, &apperr.AuthenticationError{Message: "Authentication required."})
		return
	}

	session, err := s.store.GetSessionByToken(r.Context(), token)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if session == nil {
		s.writeError(w, r, &apperr.AuthenticationError{Message: "Session is no longer active."})
		return
	}
	if err := s.store.DeactivateSession(r.Context(), session.ID); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("user logged out", "user_id", session.UserID, "session_id", session.ID)
	w.WriteHeader(http.StatusNoContent)
}

// handleCreateSession opens an extra session for a user without a password check. The
// caller must hold a session as that user or as an admin, and the account must be active. IP
// address and user agent default to the request's own.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.callerFor(r, userID); err != nil {
		s.writeError(w, r, err)
		return
	}

	var req types.SessionCreate
	if err := decodeOptional(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ttl, err := req.Lifetime(s.settings.SessionTTL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if user == nil {
		s.writeError(w, r, apperr.NotFound("User", userID))
		return
	}
	if !user.IsActive {
		s.writeError(w, r, &apperr.AuthenticationError{Message: "Account is disabled."})
		return
	}

	ip, agent := req.IPAddress, req.UserAgent
	if ip == nil {
		ip = clientIP(r)
	}
	if agent == nil {
		agent = userAgent(r)
	}

	resp, err := s.openSession(r.Context(), user, ttl, ip, agent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info("session opened", "user_id", user.ID, "session_id", resp.Session.ID)
	s.jsonResponse(w, http.StatusCreated, resp)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.callerFor(r, userID); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := listOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sessions, err := s.store.ListSessions(r.Context(), userID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.SessionsToResponse(sessions))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := pathUUID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	session, err := s.store.GetSession(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if session == nil {
		s.writeError(w, r, apperr.NotFound("Session", sessionID))
		return
	}
	if _, err := s.callerFor(r, session.UserID); err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.store.DeleteSession(r.Context(), sessionID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// callerFor returns the authenticated user when they may manage userID's sessions: the user
// themselves or an admin.
func (s *Server) callerFor(r *http.Request, userID uuid.UUID) (*db.User, error) {
	callerID, err := middleware.GetUserID(r)
	if err != nil {
		return nil, &apperr.AuthenticationError{Message: "Authentication required.", Cause: err}
	}
	caller, err := s.store.GetUser(r.Context(), callerID)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		return nil, &apperr.AuthenticationError{Message: "Account no longer exists."}
	}
	if !caller.IsActive {
		return nil, &apperr.AuthenticationError{Message: "Account is disabled."}
	}
	if caller.ID != userID && !caller.IsAdmin() {
		return nil, &apperr.PermissionDeniedError{Message: "Sessions belong to another user."}
	}
	return caller, nil
}

// openSession signs a token for user and stores it as a session.
func (s *Server) openSession(ctx context.Context, user *db.User, ttl time.Duration, ip, agent *string) (*types.LoginResponse, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, ttl)
	if err != nil {
		return nil, err
	}

	session, err := s.store.CreateSession(ctx, db.CreateSessionInput{
		UserID:       user.ID,
		SessionToken: token,
		IPAddress:    ip,
		UserAgent:    agent,
		ExpiresAt:    expiresAt,
	})
	if err != nil {
		return nil, err
	}

	return &types.LoginResponse{
		User:    types.UserToResponse(user),
		Session: types.SessionToResponse(session),
		Token:   token,
	}, nil
}

func clientIP(r *http.Request) *string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || net.ParseIP(host) == nil {
		return nil
	}
	return &host
}

func userAgent(r *http.Request) *string {
	ua := r.UserAgent()
	if ua == "" {
		return nil
	}
	return &ua
}
