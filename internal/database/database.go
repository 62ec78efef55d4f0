package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// connectTimeout bounds the initial connectivity probe so a wrong
// DATABASE_URL fails startup quickly instead of hanging on the pool.
const connectTimeout = 5 * time.Second

// DB wraps a pgxpool.Pool and owns schema migration for the service.
type DB struct {
	pool *pgxpool.Pool
}

// New parses the database URL, opens a connection pool and verifies
// connectivity before returning.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	db.pool.Close()
}

// Ping verifies the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// Pool returns the underlying pgxpool.Pool for repository use.
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}
