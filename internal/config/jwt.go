package config

import (
	"fmt"
	"time"

	"github.com/jonathan/job-assistant/internal/apperr"
)

// JWTConfig holds configuration for session token signing and validation.
type JWTConfig struct {
	Secret string
	TTL    time.Duration
	Issuer string
}

// JWT returns the session token configuration. JWT_SECRET is not a separate setting:
// tokens are signed with SECRET_KEY.
func (s *Settings) JWT() (*JWTConfig, error) {
	cfg := &JWTConfig{
		Secret: s.SecretKey,
		TTL:    s.SessionTTL,
		Issuer: s.AppName,
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return &apperr.ConfigurationError{Message: "SECRET_KEY cannot be empty"}
	}
	if c.TTL < time.Minute {
		return &apperr.ConfigurationError{Message: fmt.Sprintf("SESSION_TTL must be at least 1 minute, got: %s", c.TTL)}
	}
	return nil
}
