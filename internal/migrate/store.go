package migrate

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore keeps the revision marker in the schema_version table.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore returns a Store backed by pool.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) EnsureVersionTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version_num varchar(64) NOT NULL,
		CONSTRAINT schema_version_pkc PRIMARY KEY (version_num)
	)`)
	return err
}

func (s *PgStore) CurrentVersion(ctx context.Context) (string, error) {
	var version string
	err := s.pool.QueryRow(ctx, `SELECT version_num FROM schema_version LIMIT 1`).Scan(&version)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return version, nil
}

func (s *PgStore) Run(ctx context.Context, statements []string, version string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, stmt := range statements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("statement failed: %s: %w", firstLine(stmt), err)
		}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM schema_version`); err != nil {
		return fmt.Errorf("failed to clear revision: %w", err)
	}
	if version != "" {
		if _, err := tx.Exec(ctx, `INSERT INTO schema_version (version_num) VALUES ($1)`, version); err != nil {
			return fmt.Errorf("failed to record revision: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func firstLine(stmt string) string {
	for i, c := range stmt {
		if c == '\n' {
			return stmt[:i]
		}
	}
	return stmt
}
