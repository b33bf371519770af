// Package apperr defines the application error taxonomy.
//
// Every error type carries a default message that an explicit Message overrides. Types that
// wrap a lower-level failure expose it through Unwrap so callers can still inspect it, but the
// message itself never includes the cause's text when it would leak storage detail.
package apperr

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ConfigurationError indicates invalid or unreadable configuration.
type ConfigurationError struct {
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Configuration error."
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError indicates input that failed validation.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "Validation failed."
	}
	if len(e.Fields) == 0 {
		return msg
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%s (%s)", msg, strings.Join(parts, "; "))
}

// Invalid builds a ValidationError for a single field.
func Invalid(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// NotFoundError indicates a missing resource.
type NotFoundError struct {
	Resource string
	Detail   string
	Message  string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", orDefault(e.Resource, "Resource"), orDefault(e.Detail, "not found."))
}

// NotFound builds a NotFoundError for the resource with the given id.
func NotFound(resource string, id any) *NotFoundError {
	return &NotFoundError{Resource: resource, Detail: fmt.Sprintf("%v not found.", id)}
}

// PermissionDeniedError indicates the caller may not perform the operation.
type PermissionDeniedError struct {
	Message string
}

func (e *PermissionDeniedError) Error() string {
	return orDefault(e.Message, "Permission denied.")
}

// ExternalServiceError indicates a failure in a collaborating service.
type ExternalServiceError struct {
	Service string
	Detail  string
	Message string
	Cause   error
}

func (e *ExternalServiceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", orDefault(e.Service, "External service"), orDefault(e.Detail, "error."))
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Cause
}

// DatabaseError indicates a storage failure. The cause is kept for logs only.
type DatabaseError struct {
	Message string
	Cause   error
}

func (e *DatabaseError) Error() string {
	return orDefault(e.Message, "Database operation failed.")
}

func (e *DatabaseError) Unwrap() error {
	return e.Cause
}

// DuplicateResourceError indicates a uniqueness conflict.
type DuplicateResourceError struct {
	Resource string
	Detail   string
	Message  string
}

func (e *DuplicateResourceError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", orDefault(e.Resource, "Resource"), orDefault(e.Detail, "already exists."))
}

// AuthenticationError indicates missing or invalid credentials.
type AuthenticationError struct {
	Message string
	Cause   error
}

func (e *AuthenticationError) Error() string {
	return orDefault(e.Message, "Authentication failed.")
}

func (e *AuthenticationError) Unwrap() error {
	return e.Cause
}

// RateLimitExceededError indicates the caller exceeded its request budget.
type RateLimitExceededError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitExceededError) Error() string {
	return orDefault(e.Message, "Rate limit exceeded.")
}

// BusinessRuleViolationError indicates a request that conflicts with a domain rule.
type BusinessRuleViolationError struct {
	Rule    string
	Detail  string
	Message string
}

func (e *BusinessRuleViolationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s", orDefault(e.Rule, "Business rule"), orDefault(e.Detail, "was violated."))
}

// IsExpected reports whether err is a normal lookup or create outcome that should not be
// logged as a failure.
func IsExpected(err error) bool {
	var nf *NotFoundError
	var dup *DuplicateResourceError
	return errors.As(err, &nf) || errors.As(err, &dup)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
