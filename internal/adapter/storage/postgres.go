package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/example/storefront/internal/domain"
)

// PgxPool is the part of *pgxpool.Pool the postgres backend needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres keeps values in the kv_store table, one row per key.
type Postgres struct {
	Pool PgxPool
}

func NewPostgres(pool PgxPool) *Postgres {
	return &Postgres{Pool: pool}
}

func (p *Postgres) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.Pool.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (p *Postgres) SetItem(ctx context.Context, key, value string) error {
	_, err := p.Pool.Exec(ctx, `INSERT INTO kv_store(key, value) VALUES($1, $2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

var _ domain.Storage = (*Postgres)(nil)

// EnsureSchema creates the kv_store table if it is missing.
func EnsureSchema(ctx context.Context, pool PgxPool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS kv_store (
  key text PRIMARY KEY,
  value text NOT NULL
);`)
	return err
}
