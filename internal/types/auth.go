package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/db"
)

// maxSessionTTL caps client-requested session lifetimes.
const maxSessionTTL = 30 * 24 * time.Hour

// LoginRequest authenticates by username or email.
type LoginRequest struct {
	Login    string  `json:"login" validate:"required,max=100"`
	Password string  `json:"password" validate:"required,max=128"`
	TTL      *string `json:"ttl,omitempty"`
}

func (r *LoginRequest) Validate() error {
	if err := Validate(r); err != nil {
		return err
	}
	_, err := r.Lifetime(time.Hour)
	return err
}

func (r *LoginRequest) Lifetime(def time.Duration) (time.Duration, error) {
	return parseTTL(r.TTL, def)
}

// SessionCreate is the body of POST /users/{id}/sessions. TTL is a Go duration string; the
// configured session TTL applies when it is omitted.
type SessionCreate struct {
	IPAddress *string `json:"ipAddress,omitempty" validate:"omitempty,ip"`
	UserAgent *string `json:"userAgent,omitempty" validate:"omitempty,max=512"`
	TTL       *string `json:"ttl,omitempty"`
}

func (r *SessionCreate) Validate() error {
	if err := Validate(r); err != nil {
		return err
	}
	_, err := r.Lifetime(time.Hour)
	return err
}

// Lifetime returns the requested TTL, or def when none was given.
func (r *SessionCreate) Lifetime(def time.Duration) (time.Duration, error) {
	return parseTTL(r.TTL, def)
}

// SessionResponse is a session as returned by listings. Tokens are never included.
type SessionResponse struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    uuid.UUID `json:"userId"`
	IPAddress *string   `json:"ipAddress,omitempty"`
	UserAgent *string   `json:"userAgent,omitempty"`
	IsActive  bool      `json:"isActive"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func SessionToResponse(s *db.UserSession) SessionResponse {
	return SessionResponse{
		ID:        s.ID,
		CreatedAt: s.CreatedAt,
		UserID:    s.UserID,
		IPAddress: s.IPAddress,
		UserAgent: s.UserAgent,
		IsActive:  s.IsActive,
		ExpiresAt: s.ExpiresAt,
	}
}

func SessionsToResponse(sessions []db.UserSession) []SessionResponse {
	out := make([]SessionResponse, len(sessions))
	for i := range sessions {
		out[i] = SessionToResponse(&sessions[i])
	}
	return out
}

// LoginResponse is returned once when a session is created. It is the only response that
// carries the session token.
type LoginResponse struct {
	User    UserResponse    `json:"user"`
	Session SessionResponse `json:"session"`
	Token   string          `json:"token"`
}

func parseTTL(s *string, def time.Duration) (time.Duration, error) {
	if s == nil || *s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(*s)
	if err != nil || d <= 0 {
		return 0, apperr.Invalid("ttl", "must be a positive duration such as 30m or 24h")
	}
	if d > maxSessionTTL {
		return 0, apperr.Invalid("ttl", "must be at most "+maxSessionTTL.String())
	}
	return d, nil
}
