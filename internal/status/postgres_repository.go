package status

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository, for
// deployments where several hosts share the daily-notification gate.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL status repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the status table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS notification_status (
			day  TEXT PRIMARY KEY,
			sent BOOLEAN NOT NULL DEFAULT FALSE
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure status schema: %w", err)
	}
	return nil
}

// Sent reports whether the day's notification was recorded.
func (r *PostgresRepository) Sent(ctx context.Context, day string) (bool, error) {
	var sent bool
	err := r.pool.QueryRow(ctx,
		`SELECT sent FROM notification_status WHERE day = $1`, day).Scan(&sent)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query status: %w", err)
	}
	return sent, nil
}

// MarkSent records the day's notification.
func (r *PostgresRepository) MarkSent(ctx context.Context, day string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notification_status (day, sent)
		VALUES ($1, TRUE)
		ON CONFLICT (day) DO UPDATE SET sent = TRUE
	`, day)
	if err != nil {
		return fmt.Errorf("mark status: %w", err)
	}
	return nil
}
