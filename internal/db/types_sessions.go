package db

import (
	"time"

	"github.com/google/uuid"
)

// UserSession is a login session belonging to a user.
type UserSession struct {
	Base
	UserID       uuid.UUID `json:"userId"`
	SessionToken string    `json:"-"`
	RefreshToken *string   `json:"-"`
	IPAddress    *string   `json:"ipAddress,omitempty"`
	UserAgent    *string   `json:"userAgent,omitempty"`
	IsActive     bool      `json:"isActive"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at now.
func (s *UserSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// CreateSessionInput holds the fields for a new session.
type CreateSessionInput struct {
	UserID       uuid.UUID
	SessionToken string
	RefreshToken *string
	IPAddress    *string
	UserAgent    *string
	ExpiresAt    time.Time
}
