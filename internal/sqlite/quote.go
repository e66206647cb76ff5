package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/domain/quote"
	"github.com/rpggio/freightline/internal/repository"
)

// QuoteRepository implements quote.Repository for SQLite
type QuoteRepository struct {
	db *DB
}

// NewQuoteRepository creates a new QuoteRepository
func NewQuoteRepository(db *DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

// Create inserts a new quote
func (r *QuoteRepository) Create(ctx context.Context, q *quote.Quote) error {
	fields, err := encodeJSON(q.Fields)
	if err != nil {
		return err
	}
	grant, err := encodeNullableJSON(q.EditGrant, q.EditGrant == nil)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO quotes (
			id, mode, trade, status, fields, job_id, edit_grant,
			version, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		q.ID,
		q.Mode,
		q.Trade,
		q.Status,
		fields,
		q.JobID,
		grant,
		q.Version,
		q.CreatedBy,
		q.CreatedAt.UTC(),
		q.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create quote: %w", err)
	}
	return nil
}

// Get retrieves a quote by ID
func (r *QuoteRepository) Get(ctx context.Context, id string) (*quote.Quote, error) {
	query := `
		SELECT id, mode, trade, status, fields, job_id, edit_grant,
		       version, created_by, created_at, updated_at
		FROM quotes
		WHERE id = ?
	`

	var (
		q      quote.Quote
		fields string
		grant  sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&q.ID,
		&q.Mode,
		&q.Trade,
		&q.Status,
		&fields,
		&q.JobID,
		&grant,
		&q.Version,
		&q.CreatedBy,
		&q.CreatedAt,
		&q.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if err := decodeJSON(fields, &q.Fields); err != nil {
		return nil, err
	}
	if grant.Valid {
		q.EditGrant = &editgrant.Grant{}
		if err := decodeJSON(grant.String, q.EditGrant); err != nil {
			return nil, err
		}
	}
	return &q, nil
}

// Update writes the quote if its stored version still equals expectedVersion.
func (r *QuoteRepository) Update(ctx context.Context, q *quote.Quote, expectedVersion int64) error {
	fields, err := encodeJSON(q.Fields)
	if err != nil {
		return err
	}
	grant, err := encodeNullableJSON(q.EditGrant, q.EditGrant == nil)
	if err != nil {
		return err
	}

	query := `
		UPDATE quotes
		SET status = ?, fields = ?, job_id = ?, edit_grant = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		q.Status,
		fields,
		q.JobID,
		grant,
		q.Version,
		q.UpdatedAt.UTC(),
		q.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}
	return r.checkConditional(ctx, result, q.ID)
}

// UpdateGrant replaces the edit grant and bumps the version if the stored
// version still equals expectedVersion.
func (r *QuoteRepository) UpdateGrant(ctx context.Context, id string, grant *editgrant.Grant, expectedVersion int64) error {
	value, err := encodeNullableJSON(grant, grant == nil)
	if err != nil {
		return err
	}

	query := `
		UPDATE quotes
		SET edit_grant = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := r.db.ExecContext(ctx, query, value, time.Now().UTC(), id, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update quote grant: %w", err)
	}
	return r.checkConditional(ctx, result, id)
}

func (r *QuoteRepository) checkConditional(ctx context.Context, result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM quotes WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check quote existence: %w", err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}
