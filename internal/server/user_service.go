package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/config"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/types"
)

// UserService holds the user operations that involve password hashing.
type UserService struct {
	store          Store
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(store Store, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		store:          store,
		passwordConfig: passwordConfig,
	}
}

// Register hashes the password and creates the user.
func (s *UserService) Register(ctx context.Context, req *types.UserCreate) (*db.User, error) {
	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return s.store.CreateUser(ctx, req.Input(passwordHash))
}

// Authenticate checks a username or email and password pair. Every failure returns the same
// error so callers cannot learn which accounts exist.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*db.User, error) {
	var (
		user *db.User
		err  error
	)
	if strings.Contains(login, "@") {
		user, err = s.store.GetUserByEmail(ctx, login)
	} else {
		user, err = s.store.GetUserByUsername(ctx, login)
	}
	if err != nil {
		return nil, err
	}

	invalid := &apperr.AuthenticationError{Message: "Invalid login or password."}
	if user == nil || user.PasswordHash == "" {
		return nil, invalid
	}
	if !s.passwordConfig.VerifyPassword(password, user.PasswordHash) {
		return nil, invalid
	}
	if !user.IsActive {
		return nil, &apperr.AuthenticationError{Message: "Account is disabled."}
	}
	return user, nil
}

// Update applies a user update. A password change must carry the current password.
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req *types.UserUpdate) (*db.User, error) {
	var passwordHash *string
	if req.NewPassword != nil {
		user, err := s.store.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, apperr.NotFound("User", id)
		}
		if !s.passwordConfig.VerifyPassword(*req.PreviousPassword, user.PasswordHash) {
			return nil, apperr.Invalid("previousPassword", "does not match the current password")
		}
		hash, err := s.passwordConfig.HashPassword(*req.NewPassword)
		if err != nil {
			return nil, fmt.Errorf("failed to hash new password: %w", err)
		}
		passwordHash = &hash
	}
	return s.store.UpdateUser(ctx, id, req.Input(passwordHash))
}
