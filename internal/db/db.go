// Package db opens the PostgreSQL pool and applies schema migrations.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/memohai/meetprep/internal/config"
)

const connectTimeout = 10 * time.Second

// Open connects to PostgreSQL and verifies the connection. Nothing in the
// service can run without the users table and the ledger, so callers treat
// an error here as fatal.
func Open(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, DSN(cfg))
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}
