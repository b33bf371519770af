package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/server/middleware"
)

// Claims are the session token claims. The token itself is what user_session stores.
type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	jwt.RegisteredClaims
}

// GetUserID returns the user ID from the claims.
// This implements the middleware.UserIDGetter interface.
func (c *Claims) GetUserID() uuid.UUID {
	return c.UserID
}

// TokenService signs and verifies session tokens.
type TokenService struct {
	config *config.JWTConfig
	now    func() time.Time
}

// NewTokenService creates a token service with the given configuration.
func NewTokenService(cfg *config.JWTConfig) *TokenService {
	return &TokenService{config: cfg, now: time.Now}
}

// GenerateToken issues a token for userID that expires after ttl. A zero ttl uses the
// configured session TTL.
func (s *TokenService) GenerateToken(userID uuid.UUID, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = s.config.TTL
	}
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// ValidateToken verifies the signature, issuer and lifetime of a token and returns its claims.
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, &apperr.AuthenticationError{Message: "Missing session token."}
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	},
		jwt.WithIssuer(s.config.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, &apperr.AuthenticationError{Message: "Session token expired.", Cause: err}
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, &apperr.AuthenticationError{Message: "Malformed session token.", Cause: err}
		default:
			return nil, &apperr.AuthenticationError{Message: "Invalid session token.", Cause: err}
		}
	}
	if !token.Valid {
		return nil, &apperr.AuthenticationError{Message: "Invalid session token."}
	}
	return claims, nil
}

// sessionValidator checks a bearer token against both its signature and the stored session,
// so logging out revokes a token before it expires.
type sessionValidator struct {
	tokens *TokenService
	store  Store
}

func (v *sessionValidator) ValidateToken(ctx context.Context, tokenString string) (middleware.UserIDGetter, error) {
	claims, err := v.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	session, err := v.store.GetSessionByToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.IsActive || session.Expired(v.tokens.now()) || session.UserID != claims.UserID {
		return nil, &apperr.AuthenticationError{Message: "Session is no longer active."}
	}
	return claims, nil
}
