package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/enums"
	"github.com/jonathan/job-assistant/internal/workflow"
)

const jobApplicationColumns = `id, created_at, updated_at, is_deleted, deleted_at, user_id, title,
	company_name, location, posting_url, notes, applied_at, type, application_status,
	assistant_status, assistant_current_step, source, priority, lock_version`

func scanJobApplication(row pgx.Row) (*JobApplication, error) {
	var j JobApplication
	err := row.Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt, &j.IsDeleted, &j.DeletedAt,
		&j.UserID, &j.Title, &j.CompanyName, &j.Location, &j.PostingURL, &j.Notes, &j.AppliedAt,
		&j.Type, &j.ApplicationStatus, &j.AssistantStatus, &j.AssistantCurrentStep,
		&j.Source, &j.Priority, &j.LockVersion)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (in *CreateJobApplicationInput) applyDefaults() {
	if in.Type == "" {
		in.Type = enums.JobTypeFullTime
	}
	if in.ApplicationStatus == "" {
		in.ApplicationStatus = enums.JobApplicationStatusPending
	}
	if in.AssistantStatus == "" {
		in.AssistantStatus = enums.AssistantStatusNotStarted
	}
	if in.AssistantCurrentStep == "" {
		in.AssistantCurrentStep = enums.AssistantStepPending
	}
	if in.Priority == "" {
		in.Priority = enums.JobApplicationPriorityNone
	}
}

// CreateJobApplication inserts a job application for a live user.
func (db *DB) CreateJobApplication(ctx context.Context, in CreateJobApplicationInput) (*JobApplication, error) {
	in.applyDefaults()

	var created *JobApplication
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if err := requireUser(ctx, tx, in.UserID); err != nil {
			return err
		}

		query := `INSERT INTO job_application (user_id, title, company_name, location, posting_url,
		              notes, applied_at, type, application_status, assistant_status,
		              assistant_current_step, source, priority)
		          VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()), $8, $9, $10, $11, $12, $13)
		          RETURNING ` + jobApplicationColumns

		j, err := scanJobApplication(tx.QueryRow(ctx, query,
			in.UserID, in.Title, in.CompanyName, in.Location, in.PostingURL, in.Notes, in.AppliedAt,
			in.Type, in.ApplicationStatus, in.AssistantStatus, in.AssistantCurrentStep,
			in.Source, in.Priority,
		))
		if err != nil {
			return mapError("create job application", "Job application", err)
		}
		created = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetJobApplication retrieves a live job application. Returns nil, nil if not found.
func (db *DB) GetJobApplication(ctx context.Context, id uuid.UUID) (*JobApplication, error) {
	return getJobApplication(ctx, db.pool, id, "")
}

func getJobApplication(ctx context.Context, q querier, id uuid.UUID, lock string) (*JobApplication, error) {
	query := `SELECT ` + jobApplicationColumns + ` FROM job_application
	          WHERE id = $1 AND NOT is_deleted ` + lock
	j, err := scanJobApplication(q.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, mapError("get job application", "Job application", err)
	}
	return j, nil
}

// ListJobApplications returns a user's job applications, newest first.
func (db *DB) ListJobApplications(ctx context.Context, userID uuid.UUID, filters JobApplicationFilters) ([]JobApplication, error) {
	query := `SELECT ` + jobApplicationColumns + ` FROM job_application WHERE user_id = $1`
	args := []interface{}{userID}
	argPos := 2

	if !filters.IncludeDeleted {
		query += " AND NOT is_deleted"
	}
	if filters.ApplicationStatus != nil {
		query += fmt.Sprintf(" AND application_status = $%d", argPos)
		args = append(args, *filters.ApplicationStatus)
		argPos++
	}
	if filters.AssistantStatus != nil {
		query += fmt.Sprintf(" AND assistant_status = $%d", argPos)
		args = append(args, *filters.AssistantStatus)
		argPos++
	}
	if filters.Priority != nil {
		query += fmt.Sprintf(" AND priority = $%d", argPos)
		args = append(args, *filters.Priority)
	}

	query += " ORDER BY applied_at DESC, id"
	page, args := pageClause(args, filters.ListOptions)

	rows, err := db.pool.Query(ctx, query+page, args...)
	if err != nil {
		return nil, mapError("list job applications", "Job application", err)
	}
	defer rows.Close()

	apps := []JobApplication{}
	for rows.Next() {
		j, err := scanJobApplication(rows)
		if err != nil {
			return nil, mapError("scan job application", "Job application", err)
		}
		apps = append(apps, *j)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list job applications", "Job application", err)
	}
	return apps, nil
}

// UpdateJobApplication applies the non-nil fields of in and bumps the lock version. When
// ExpectedLockVersion is set and stale the update is rejected.
func (db *DB) UpdateJobApplication(ctx context.Context, id uuid.UUID, in UpdateJobApplicationInput) (*JobApplication, error) {
	var a assignments
	setIf(&a, "title", in.Title)
	setIf(&a, "company_name", in.CompanyName)
	setIf(&a, "location", in.Location)
	setIf(&a, "posting_url", in.PostingURL)
	setIf(&a, "notes", in.Notes)
	setIf(&a, "applied_at", in.AppliedAt)
	setIf(&a, "type", in.Type)
	setIf(&a, "application_status", in.ApplicationStatus)
	setIf(&a, "assistant_status", in.AssistantStatus)
	setIf(&a, "source", in.Source)
	setIf(&a, "priority", in.Priority)

	if a.empty() {
		j, err := db.GetJobApplication(ctx, id)
		if err == nil && j == nil {
			return nil, apperr.NotFound("Job application", id)
		}
		return j, err
	}
	a.cols = append(a.cols, "lock_version = lock_version + 1")

	cond := "id = " + a.next(id) + " AND NOT is_deleted"
	if in.ExpectedLockVersion != nil {
		cond += " AND lock_version = " + a.next(*in.ExpectedLockVersion)
	}
	query := fmt.Sprintf(`UPDATE job_application SET %s WHERE %s RETURNING %s`,
		a.clause(), cond, jobApplicationColumns)

	j, err := scanJobApplication(db.pool.QueryRow(ctx, query, a.args...))
	if err == nil {
		return j, nil
	}
	if err != pgx.ErrNoRows {
		return nil, mapError("update job application", "Job application", err)
	}

	// Distinguish a missing row from a lost race.
	current, getErr := db.GetJobApplication(ctx, id)
	if getErr != nil {
		return nil, getErr
	}
	if current == nil || in.ExpectedLockVersion == nil {
		return nil, apperr.NotFound("Job application", id)
	}
	return nil, staleVersion(*in.ExpectedLockVersion, current.LockVersion)
}

func staleVersion(expected, actual int) error {
	return &apperr.BusinessRuleViolationError{
		Rule:   workflow.RuleConcurrentAdvance,
		Detail: fmt.Sprintf("expected lock version %d but the application is at %d.", expected, actual),
	}
}

// SoftDeleteJobApplication hides a job application. Its steps and links are kept.
func (db *DB) SoftDeleteJobApplication(ctx context.Context, id uuid.UUID) error {
	return softDelete(ctx, db.pool, "job_application", "Job application", id)
}

// RestoreJobApplication clears the deletion flag. The owner must be live.
func (db *DB) RestoreJobApplication(ctx context.Context, id uuid.UUID) (*JobApplication, error) {
	query := `UPDATE job_application j SET is_deleted = false, deleted_at = NULL, updated_at = NOW()
	          FROM "user" u
	          WHERE j.id = $1 AND u.id = j.user_id AND NOT u.is_deleted
	          RETURNING ` + prefixed("j", jobApplicationColumns)
	j, err := scanJobApplication(db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("Job application", id)
		}
		return nil, mapError("restore job application", "Job application", err)
	}
	return j, nil
}

// HardDeleteJobApplication removes an application with its steps and document links.
// Linked documents belong to the user and survive.
func (db *DB) HardDeleteJobApplication(ctx context.Context, id uuid.UUID) (*CascadeSummary, error) {
	var summary CascadeSummary
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var found uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM job_application WHERE id = $1 FOR UPDATE`, id).Scan(&found); err != nil {
			if err == pgx.ErrNoRows {
				return apperr.NotFound("Job application", id)
			}
			return mapError("lock job application", "Job application", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM assistant_step WHERE job_application_id = $1`, id)
		if err != nil {
			return mapError("delete assistant steps", "Assistant step", err)
		}
		summary.AssistantSteps = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM document_job_application WHERE job_application_id = $1`, id)
		if err != nil {
			return mapError("delete document links", "Document link", err)
		}
		summary.DocumentLinks = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `DELETE FROM job_application WHERE id = $1`, id)
		if err != nil {
			return mapError("delete job application", "Job application", err)
		}
		summary.JobApplications = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
