package db

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/job-assistant/internal/apperr"
)

const sessionColumns = `id, created_at, updated_at, is_deleted, deleted_at, user_id, session_token,
	refresh_token, ip_address, user_agent, is_active, expires_at`

func scanSession(row pgx.Row) (*UserSession, error) {
	var s UserSession
	err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.IsDeleted, &s.DeletedAt,
		&s.UserID, &s.SessionToken, &s.RefreshToken, &s.IPAddress, &s.UserAgent,
		&s.IsActive, &s.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession stores a new active session for a live user.
func (db *DB) CreateSession(ctx context.Context, in CreateSessionInput) (*UserSession, error) {
	var created *UserSession
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		if err := requireUser(ctx, tx, in.UserID); err != nil {
			return err
		}

		query := `INSERT INTO user_session (user_id, session_token, refresh_token, ip_address,
		              user_agent, expires_at)
		          VALUES ($1, $2, $3, $4, $5, $6)
		          RETURNING ` + sessionColumns
		s, err := scanSession(tx.QueryRow(ctx, query,
			in.UserID, in.SessionToken, in.RefreshToken, in.IPAddress, in.UserAgent, in.ExpiresAt,
		))
		if err != nil {
			return mapError("create session", "Session", err)
		}
		created = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetSession retrieves a session by id. Returns nil, nil if not found.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*UserSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_session WHERE id = $1 AND NOT is_deleted`
	s, err := scanSession(db.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, mapError("get session", "Session", err)
	}
	return s, nil
}

// GetSessionByToken retrieves a session by its token. Returns nil, nil if not found.
// Callers check IsActive and Expired themselves.
func (db *DB) GetSessionByToken(ctx context.Context, token string) (*UserSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_session WHERE session_token = $1 AND NOT is_deleted`
	s, err := scanSession(db.pool.QueryRow(ctx, query, token))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, mapError("get session", "Session", err)
	}
	return s, nil
}

// ListSessions returns a user's sessions, newest first.
func (db *DB) ListSessions(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]UserSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM user_session WHERE user_id = $1`
	if !opts.IncludeDeleted {
		query += ` AND NOT is_deleted`
	}
	query += ` ORDER BY created_at DESC, id`
	page, args := pageClause([]interface{}{userID}, opts)

	rows, err := db.pool.Query(ctx, query+page, args...)
	if err != nil {
		return nil, mapError("list sessions", "Session", err)
	}
	defer rows.Close()

	sessions := []UserSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, mapError("scan session", "Session", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list sessions", "Session", err)
	}
	return sessions, nil
}

// DeactivateSession marks a session inactive without removing it.
func (db *DB) DeactivateSession(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx,
		`UPDATE user_session SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return mapError("deactivate session", "Session", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Session", id)
	}
	return nil
}

// DeleteSession permanently removes a session.
func (db *DB) DeleteSession(ctx context.Context, id uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM user_session WHERE id = $1`, id)
	if err != nil {
		return mapError("delete session", "Session", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Session", id)
	}
	return nil
}

// DeleteExpiredSessions removes sessions that expired before now and returns how many.
func (db *DB) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM user_session WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, mapError("delete expired sessions", "Session", err)
	}
	return tag.RowsAffected(), nil
}
