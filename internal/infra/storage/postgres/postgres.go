// Package postgres implements the persistence ports on PostgreSQL using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolationCode is the PostgreSQL error code for unique constraint
// violations.
const uniqueViolationCode = "23505"

// Pool is the subset of pgxpool.Pool the repositories use. pgxmock satisfies
// it, so repositories are testable without a database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// NewPool opens a pgx connection pool for the given DSN and verifies
// connectivity.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// schema is the idempotent bootstrap DDL. Deleting a wallet cascades to its
// recorded transactions.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS wallets (
		id UUID PRIMARY KEY,
		owner_id BIGINT NOT NULL,
		chain TEXT NOT NULL,
		address TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		last_checked_at TIMESTAMPTZ NOT NULL DEFAULT to_timestamp(0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (owner_id, address)
	)`,
	`CREATE TABLE IF NOT EXISTS wallet_transactions (
		wallet_id UUID NOT NULL REFERENCES wallets (id) ON DELETE CASCADE,
		tx_hash TEXT NOT NULL,
		direction TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		fee NUMERIC NOT NULL DEFAULT 0,
		counterparty TEXT NOT NULL DEFAULT '',
		confirmations BIGINT NOT NULL DEFAULT 0,
		occurred_at TIMESTAMPTZ NOT NULL,
		notification_sent BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (wallet_id, tx_hash)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		owner_id BIGINT NOT NULL,
		tier TEXT NOT NULL,
		months INT NOT NULL,
		amount NUMERIC NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		owner_id BIGINT PRIMARY KEY,
		tier TEXT NOT NULL,
		expires_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate applies the bootstrap schema. Safe to run on every startup.
func Migrate(ctx context.Context, pool Pool) error {
	for _, ddl := range schema {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	return nil
}

// isUniqueViolation reports whether the error is a unique constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
