// Package db provides PostgreSQL access for users, job applications, assistant steps,
// documents and sessions.
package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/job-assistant/internal/apperr"
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, &apperr.DatabaseError{Message: "failed to connect to database", Cause: err}
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &apperr.DatabaseError{Message: "failed to ping database", Cause: err}
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Pool exposes the underlying pool for the migration runner.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return &apperr.DatabaseError{Cause: err}
	}
	return nil
}

// inTx runs fn in a transaction and commits when it returns nil.
func (db *DB) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return &apperr.DatabaseError{Cause: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &apperr.DatabaseError{Cause: fmt.Errorf("failed to commit transaction: %w", err)}
	}
	return nil
}

// requireUser locks a live user row so that children cannot be attached to an owner that a
// concurrent hard delete is removing.
func requireUser(ctx context.Context, q querier, userID uuid.UUID) error {
	var found uuid.UUID
	err := q.QueryRow(ctx,
		`SELECT id FROM "user" WHERE id = $1 AND NOT is_deleted FOR KEY SHARE`,
		userID,
	).Scan(&found)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperr.NotFound("User", userID)
		}
		return mapError("lookup user", "User", err)
	}
	return nil
}
