package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-assistant/internal/apperr"
	"github.com/jonathan/job-assistant/internal/enums"
)

const userColumns = `id, created_at, updated_at, is_deleted, deleted_at, username, email, password,
	first_name, last_name, is_active, role, sso_provider, sso_id, sso_verified, profile_picture, dir`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.IsDeleted, &u.DeletedAt,
		&u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.IsActive,
		&u.Role, &u.SSOProvider, &u.SSOID, &u.SSOVerified, &u.ProfilePicture, &u.Dir)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user. Username and email must be unique.
func (db *DB) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if in.Role == "" {
		in.Role = enums.UserRoleUser
	}

	query := `INSERT INTO "user" (username, email, password, first_name, last_name, role,
	                              sso_provider, sso_id, sso_verified, profile_picture, dir)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING ` + userColumns

	u, err := scanUser(db.pool.QueryRow(ctx, query,
		in.Username, in.Email, in.PasswordHash, in.FirstName, in.LastName, in.Role,
		in.SSOProvider, in.SSOID, in.SSOVerified, in.ProfilePicture, in.Dir,
	))
	if err != nil {
		return nil, mapError("create user", "User", err)
	}
	return u, nil
}

// GetUser retrieves a live user by ID. Returns nil, nil if not found or soft-deleted.
func (db *DB) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return db.getUserWhere(ctx, "id = $1", id)
}

// GetUserByUsername retrieves a live user by username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return db.getUserWhere(ctx, "username = $1", username)
}

// GetUserByEmail retrieves a live user by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return db.getUserWhere(ctx, "email = $1", email)
}

func (db *DB) getUserWhere(ctx context.Context, cond string, arg any) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM "user" WHERE ` + cond + ` AND NOT is_deleted`
	u, err := scanUser(db.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, mapError("get user", "User", err)
	}
	return u, nil
}

// ListUsers returns users ordered by creation time.
func (db *DB) ListUsers(ctx context.Context, opts ListOptions) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM "user"`
	if !opts.IncludeDeleted {
		query += ` WHERE NOT is_deleted`
	}
	query += ` ORDER BY created_at, id`
	page, args := pageClause(nil, opts)

	rows, err := db.pool.Query(ctx, query+page, args...)
	if err != nil {
		return nil, mapError("list users", "User", err)
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, mapError("scan user", "User", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list users", "User", err)
	}
	return users, nil
}

// UpdateUser applies the non-nil fields of in to a live user and returns the result.
func (db *DB) UpdateUser(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*User, error) {
	var a assignments
	setIf(&a, "username", in.Username)
	setIf(&a, "email", in.Email)
	setIf(&a, "password", in.PasswordHash)
	setIf(&a, "first_name", in.FirstName)
	setIf(&a, "last_name", in.LastName)
	setIf(&a, "is_active", in.IsActive)
	setIf(&a, "role", in.Role)
	setIf(&a, "sso_provider", in.SSOProvider)
	setIf(&a, "sso_id", in.SSOID)
	setIf(&a, "sso_verified", in.SSOVerified)
	setIf(&a, "profile_picture", in.ProfilePicture)
	setIf(&a, "dir", in.Dir)

	if a.empty() {
		u, err := db.GetUser(ctx, id)
		if err == nil && u == nil {
			return nil, apperr.NotFound("User", id)
		}
		return u, err
	}

	query := fmt.Sprintf(`UPDATE "user" SET %s WHERE id = %s AND NOT is_deleted RETURNING %s`,
		a.clause(), a.next(id), userColumns)

	u, err := scanUser(db.pool.QueryRow(ctx, query, a.args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("User", id)
		}
		return nil, mapError("update user", "User", err)
	}
	return u, nil
}

// SoftDeleteUser hides a user. Owned rows keep their own deletion flags.
func (db *DB) SoftDeleteUser(ctx context.Context, id uuid.UUID) error {
	return softDelete(ctx, db.pool, `"user"`, "User", id)
}

// RestoreUser clears the deletion flag and returns the restored user.
func (db *DB) RestoreUser(ctx context.Context, id uuid.UUID) (*User, error) {
	query := `UPDATE "user" SET is_deleted = false, deleted_at = NULL, updated_at = NOW()
	          WHERE id = $1 RETURNING ` + userColumns
	u, err := scanUser(db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperr.NotFound("User", id)
		}
		return nil, mapError("restore user", "User", err)
	}
	return u, nil
}

// CascadeSummary counts the rows a hard delete removed.
type CascadeSummary struct {
	AssistantSteps  int64 `json:"assistantSteps"`
	DocumentLinks   int64 `json:"documentLinks"`
	Documents       int64 `json:"documents"`
	JobApplications int64 `json:"jobApplications"`
	Sessions        int64 `json:"sessions"`
}

// HardDeleteUser permanently removes a user and everything it owns in one transaction.
// Either every row is gone or none is.
func (db *DB) HardDeleteUser(ctx context.Context, id uuid.UUID) (*CascadeSummary, error) {
	var summary CascadeSummary
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		var found uuid.UUID
		if err := tx.QueryRow(ctx, `SELECT id FROM "user" WHERE id = $1 FOR UPDATE`, id).Scan(&found); err != nil {
			if err == pgx.ErrNoRows {
				return apperr.NotFound("User", id)
			}
			return mapError("lock user", "User", err)
		}

		steps := []struct {
			query string
			count *int64
		}{
			{`DELETE FROM assistant_step WHERE job_application_id IN
			      (SELECT id FROM job_application WHERE user_id = $1)`, &summary.AssistantSteps},
			{`DELETE FROM document_job_application WHERE
			      job_application_id IN (SELECT id FROM job_application WHERE user_id = $1)
			      OR document_id IN (SELECT id FROM document WHERE user_id = $1)`, &summary.DocumentLinks},
			{`DELETE FROM document WHERE user_id = $1`, &summary.Documents},
			{`DELETE FROM job_application WHERE user_id = $1`, &summary.JobApplications},
			{`DELETE FROM user_session WHERE user_id = $1`, &summary.Sessions},
		}
		for _, s := range steps {
			tag, err := tx.Exec(ctx, s.query, id)
			if err != nil {
				return mapError("delete user data", "User", err)
			}
			*s.count = tag.RowsAffected()
		}

		if _, err := tx.Exec(ctx, `DELETE FROM "user" WHERE id = $1`, id); err != nil {
			return mapError("delete user", "User", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// softDelete flags one row as deleted. Deleting an already hidden row is a no-op.
func softDelete(ctx context.Context, q querier, table, resource string, id uuid.UUID) error {
	query := `UPDATE ` + table + ` SET is_deleted = true, deleted_at = COALESCE(deleted_at, NOW()),
	          updated_at = NOW() WHERE id = $1`
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return mapError("soft delete "+resource, resource, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resource, id)
	}
	return nil
}
