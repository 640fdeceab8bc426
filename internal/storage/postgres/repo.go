// Package postgres implements storage.Repository on Postgres with pgx v5.
// Rows are written with COPY straight into the target table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config holds Postgres repository configuration.
type Config struct {
	DSN     string   // pgxpool connection string
	Table   string   // e.g. "public.referral_report"
	Columns []string // ordered COPY columns
}

// Repository is a Postgres-backed storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewRepository opens a pool and returns the repository with its close func.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, nil, fmt.Errorf("postgres: DSN must not be empty")
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Repository{pool: pool, cfg: cfg}, pool.Close, nil
}

// CopyFrom COPYs rows into the configured table.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	n, err := r.pool.CopyFrom(ctx, identifier(r.cfg.Table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("postgres: copy: %s (%s): %w", pgErr.Detail, pgErr.SQLState(), err)
		}
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// Exec runs one statement on the pool.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if strings.TrimSpace(sql) == "" {
		return nil
	}
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

// identifier splits "schema.table" into a pgx.Identifier.
func identifier(fqn string) pgx.Identifier {
	return pgx.Identifier(strings.Split(fqn, "."))
}
