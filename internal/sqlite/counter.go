package sqlite

import (
	"context"
	"fmt"
)

// CounterRepository keeps per-key serial counters.
type CounterRepository struct {
	db *DB
}

// NewCounterRepository creates a new CounterRepository
func NewCounterRepository(db *DB) *CounterRepository {
	return &CounterRepository{db: db}
}

// Next increments the counter for key and returns the new value. The row is
// created on first use, so the first value is 1. Increment and read happen
// in one statement.
func (r *CounterRepository) Next(ctx context.Context, key string) (int64, error) {
	query := `
		INSERT INTO counters (key, value) VALUES (?, 1)
		ON CONFLICT(key) DO UPDATE SET value = value + 1
		RETURNING value
	`

	var value int64
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	return value, nil
}

// Current returns the last value handed out for key, or 0 if none.
func (r *CounterRepository) Current(ctx context.Context, key string) (int64, error) {
	var value int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE((SELECT value FROM counters WHERE key = ?), 0)`, key).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("failed to read counter: %w", err)
	}
	return value, nil
}
