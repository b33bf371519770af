package db

import "github.com/jonathan/job-assistant/internal/enums"

// User is the root aggregate owning job applications, documents and sessions.
type User struct {
	Base
	Username       string             `json:"username"`
	Email          string             `json:"email"`
	PasswordHash   string             `json:"-"` // Never serialize to JSON
	FirstName      *string            `json:"firstName,omitempty"`
	LastName       *string            `json:"lastName,omitempty"`
	IsActive       bool               `json:"isActive"`
	Role           enums.UserRole     `json:"role"`
	SSOProvider    *enums.SSOProvider `json:"ssoProvider,omitempty"`
	SSOID          *string            `json:"ssoId,omitempty"`
	SSOVerified    bool               `json:"ssoVerified"`
	ProfilePicture *string            `json:"profilePicture,omitempty"`
	Dir            *string            `json:"dir,omitempty"`
}

// IsAdmin reports whether the user holds an administrative role.
func (u *User) IsAdmin() bool {
	return u.Role == enums.UserRoleAdmin || u.Role == enums.UserRoleSuperuser
}

// CreateUserInput holds the fields for a new user. Role defaults to user.
type CreateUserInput struct {
	Username       string
	Email          string
	PasswordHash   string
	FirstName      *string
	LastName       *string
	Role           enums.UserRole
	SSOProvider    *enums.SSOProvider
	SSOID          *string
	SSOVerified    bool
	ProfilePicture *string
	Dir            *string
}

// UpdateUserInput holds optional changes to a user. Nil fields are left unchanged.
type UpdateUserInput struct {
	Username       *string
	Email          *string
	PasswordHash   *string
	FirstName      *string
	LastName       *string
	IsActive       *bool
	Role           *enums.UserRole
	SSOProvider    *enums.SSOProvider
	SSOID          *string
	SSOVerified    *bool
	ProfilePicture *string
	Dir            *string
}
