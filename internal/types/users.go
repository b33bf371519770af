package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/enums"
)

// UserCreate is the body of POST /users.
type UserCreate struct {
	Username       string             `json:"username" validate:"required,username"`
	Email          string             `json:"email" validate:"required,email,max=100"`
	Password       string             `json:"password" validate:"required,password"`
	FirstName      *string            `json:"firstName,omitempty" validate:"omitempty,max=50"`
	LastName       *string            `json:"lastName,omitempty" validate:"omitempty,max=50"`
	Role           *enums.UserRole    `json:"role,omitempty" validate:"omitempty,enum"`
	SSOProvider    *enums.SSOProvider `json:"ssoProvider,omitempty" validate:"omitempty,enum"`
	SSOID          *string            `json:"ssoId,omitempty" validate:"omitempty,max=255"`
	ProfilePicture *string            `json:"profilePicture,omitempty" validate:"omitempty,url"`
	Dir            *string            `json:"dir,omitempty" validate:"omitempty,max=255"`
}

func (r *UserCreate) Validate() error { return Validate(r) }

// Input converts the request into repository input. The password must already be hashed.
func (r *UserCreate) Input(passwordHash string) db.CreateUserInput {
	in := db.CreateUserInput{
		Username:       r.Username,
		Email:          r.Email,
		PasswordHash:   passwordHash,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		SSOProvider:    r.SSOProvider,
		SSOID:          r.SSOID,
		ProfilePicture: r.ProfilePicture,
		Dir:            r.Dir,
	}
	if r.Role != nil {
		in.Role = *r.Role
	}
	return in
}

// UserUpdate is the body of PATCH /users/{id}. A password change needs both PreviousPassword
// and NewPassword.
type UserUpdate struct {
	Username         *string            `json:"username,omitempty" validate:"omitempty,username"`
	Email            *string            `json:"email,omitempty" validate:"omitempty,email,max=100"`
	FirstName        *string            `json:"firstName,omitempty" validate:"omitempty,max=50"`
	LastName         *string            `json:"lastName,omitempty" validate:"omitempty,max=50"`
	IsActive         *bool              `json:"isActive,omitempty"`
	Role             *enums.UserRole    `json:"role,omitempty" validate:"omitempty,enum"`
	SSOProvider      *enums.SSOProvider `json:"ssoProvider,omitempty" validate:"omitempty,enum"`
	SSOID            *string            `json:"ssoId,omitempty" validate:"omitempty,max=255"`
	SSOVerified      *bool              `json:"ssoVerified,omitempty"`
	ProfilePicture   *string            `json:"profilePicture,omitempty" validate:"omitempty,url"`
	Dir              *string            `json:"dir,omitempty" validate:"omitempty,max=255"`
	PreviousPassword *string            `json:"previousPassword,omitempty" validate:"omitempty,min=8,max=128"`
	NewPassword      *string            `json:"newPassword,omitempty" validate:"omitempty,password"`
}

func (r *UserUpdate) Validate() error {
	if err := Validate(r); err != nil {
		return err
	}
	if (r.PreviousPassword == nil) != (r.NewPassword == nil) {
		return apperr.Invalid("newPassword", "previousPassword and newPassword must be given together")
	}
	return nil
}

// Input converts the request into repository input. passwordHash is nil unless the password
// is being changed.
func (r *UserUpdate) Input(passwordHash *string) db.UpdateUserInput {
	return db.UpdateUserInput{
		Username:       r.Username,
		Email:          r.Email,
		PasswordHash:   passwordHash,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		IsActive:       r.IsActive,
		Role:           r.Role,
		SSOProvider:    r.SSOProvider,
		SSOID:          r.SSOID,
		SSOVerified:    r.SSOVerified,
		ProfilePicture: r.ProfilePicture,
		Dir:            r.Dir,
	}
}

// UserResponse is a user as returned by the API. It never carries the password hash.
type UserResponse struct {
	ID             uuid.UUID          `json:"id"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
	IsDeleted      bool               `json:"isDeleted"`
	DeletedAt      *time.Time         `json:"deletedAt,omitempty"`
	Username       string             `json:"username"`
	Email          string             `json:"email"`
	FirstName      *string            `json:"firstName,omitempty"`
	LastName       *string            `json:"lastName,omitempty"`
	IsActive       bool               `json:"isActive"`
	IsAdmin        bool               `json:"isAdmin"`
	Role           enums.UserRole     `json:"role"`
	SSOProvider    *enums.SSOProvider `json:"ssoProvider,omitempty"`
	SSOID          *string            `json:"ssoId,omitempty"`
	SSOVerified    bool               `json:"ssoVerified"`
	ProfilePicture *string            `json:"profilePicture,omitempty"`
	Dir            *string            `json:"dir,omitempty"`
}

// UserToResponse converts a stored user.
func UserToResponse(u *db.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
		IsDeleted:      u.IsDeleted,
		DeletedAt:      u.DeletedAt,
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		IsActive:       u.IsActive,
		IsAdmin:        u.IsAdmin(),
		Role:           u.Role,
		SSOProvider:    u.SSOProvider,
		SSOID:          u.SSOID,
		SSOVerified:    u.SSOVerified,
		ProfilePicture: u.ProfilePicture,
		Dir:            u.Dir,
	}
}

// UsersToResponse converts a page of users.
func UsersToResponse(users []db.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = UserToResponse(&users[i])
	}
	return out
}

// Update returns the request that would set every mutable field to the response's value.
func (r UserResponse) Update() UserUpdate {
	role := r.Role
	active := r.IsActive
	verified := r.SSOVerified
	username := r.Username
	email := r.Email
	return UserUpdate{
		Username:       &username,
		Email:          &email,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		IsActive:       &active,
		Role:           &role,
		SSOProvider:    r.SSOProvider,
		SSOID:          r.SSOID,
		SSOVerified:    &verified,
		ProfilePicture: r.ProfilePicture,
		Dir:            r.Dir,
	}
}
