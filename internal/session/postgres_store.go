package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) Store {
	return &PostgresStore{pool: pool}
}

// Create inserts a new session row.
func (r *PostgresStore) Create(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, s.ID, s.UserID, s.ExpiresAt).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by its UUID.
func (r *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	query := `
		SELECT id, user_id, created_at, expires_at
		FROM sessions
		WHERE id = $1`

	var s Session
	err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}

	return &s, nil
}

// Delete removes a session row. Deleting an absent session is not an error;
// logout is idempotent.
func (r *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry and returns the count.
func (r *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE expires_at < NOW()")
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
