package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jonathan/job-assistant/internal/apperr"
)

// Postgres SQLSTATE codes the repository translates.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidTextRep      = "22P02"
	codeSerialization       = "40001"
)

// constraintResources names the resource behind each named constraint.
var constraintResources = map[string]string{
	"user_username_key":                                "Username",
	"user_email_key":                                   "Email",
	"user_session_session_token_key":                   "Session token",
	"assistant_step_job_application_id_step_order_key": "Step order",
	"assistant_step_previous_step_id_key":              "Successor of the previous step",
	"document_job_application_pkey":                    "Document link",
	"job_application_user_id_fkey":                     "User",
	"document_user_id_fkey":                            "User",
	"user_session_user_id_fkey":                        "User",
	"assistant_step_job_application_id_fkey":           "Job application",
	"assistant_step_previous_step_id_fkey":             "Previous step",
	"document_job_application_document_id_fkey":        "Document",
	"document_job_application_job_application_id_fkey": "Job application",
}

// mapError converts a storage error into the application taxonomy. Storage detail is kept
// only as the unexported cause.
func mapError(op, resource string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		name := constraintResources[pgErr.ConstraintName]
		switch pgErr.Code {
		case codeUniqueViolation:
			if name == "" {
				name = resource
			}
			return &apperr.DuplicateResourceError{Resource: name}
		case codeForeignKeyViolation:
			if name == "" {
				name = "Referenced resource"
			}
			return &apperr.NotFoundError{Resource: name}
		case codeCheckViolation:
			return &apperr.ValidationError{Message: fmt.Sprintf("%s violates constraint %s.", resource, pgErr.ConstraintName)}
		case codeInvalidTextRep:
			return &apperr.ValidationError{Message: fmt.Sprintf("%s has a value of the wrong type.", resource)}
		case codeSerialization:
			return &apperr.BusinessRuleViolationError{Rule: "concurrent_update", Detail: "conflicted with another writer; retry."}
		}
	}

	return &apperr.DatabaseError{Cause: fmt.Errorf("failed to %s: %w", op, err)}
}
