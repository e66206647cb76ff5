package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/domain/job"
	"github.com/rpggio/freightline/internal/repository"
)

// JobRepository implements job.Repository for SQLite
type JobRepository struct {
	db *DB
}

// NewJobRepository creates a new JobRepository
func NewJobRepository(db *DB) *JobRepository {
	return &JobRepository{db: db}
}

const jobColumns = `
	id, quote_id, mode, trade, status, current_stage, stages, documents,
	edit_grant, fields, version, created_by, created_at, updated_at`

type jobColumnValues struct {
	stages    string
	documents string
	grant     sql.NullString
	fields    string
}

func encodeJob(j *job.Job) (jobColumnValues, error) {
	var v jobColumnValues
	var err error
	stages := j.Stages
	if stages == nil {
		stages = []job.Stage{}
	}
	if v.stages, err = encodeJSON(stages); err != nil {
		return v, err
	}
	docs := j.Documents
	if docs == nil {
		docs = []job.Document{}
	}
	if v.documents, err = encodeJSON(docs); err != nil {
		return v, err
	}
	if v.grant, err = encodeNullableJSON(j.EditGrant, j.EditGrant == nil); err != nil {
		return v, err
	}
	if v.fields, err = encodeJSON(j.Fields); err != nil {
		return v, err
	}
	return v, nil
}

// Create inserts a new job
func (r *JobRepository) Create(ctx context.Context, j *job.Job) error {
	cols, err := encodeJob(j)
	if err != nil {
		return err
	}

	query := `INSERT INTO jobs (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		j.ID,
		j.QuoteID,
		j.Mode,
		j.Trade,
		j.Status,
		j.CurrentStage,
		cols.stages,
		cols.documents,
		cols.grant,
		cols.fields,
		j.Version,
		j.CreatedBy,
		j.CreatedAt.UTC(),
		j.UpdatedAt.UTC(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// Get retrieves a job by ID
func (r *JobRepository) Get(ctx context.Context, id string) (*job.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = ?`

	var (
		j                         job.Job
		stages, documents, fields string
		grant                     sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&j.ID,
		&j.QuoteID,
		&j.Mode,
		&j.Trade,
		&j.Status,
		&j.CurrentStage,
		&stages,
		&documents,
		&grant,
		&fields,
		&j.Version,
		&j.CreatedBy,
		&j.CreatedAt,
		&j.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if err := decodeJSON(stages, &j.Stages); err != nil {
		return nil, err
	}
	if err := decodeJSON(documents, &j.Documents); err != nil {
		return nil, err
	}
	if err := decodeJSON(fields, &j.Fields); err != nil {
		return nil, err
	}
	if grant.Valid {
		j.EditGrant = &editgrant.Grant{}
		if err := decodeJSON(grant.String, j.EditGrant); err != nil {
			return nil, err
		}
	}
	return &j, nil
}

// Update writes the whole job if its stored version still equals expectedVersion.
func (r *JobRepository) Update(ctx context.Context, j *job.Job, expectedVersion int64) error {
	cols, err := encodeJob(j)
	if err != nil {
		return err
	}

	query := `
		UPDATE jobs
		SET quote_id = ?, status = ?, current_stage = ?, stages = ?, documents = ?,
		    edit_grant = ?, fields = ?, version = ?, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		j.QuoteID,
		j.Status,
		j.CurrentStage,
		cols.stages,
		cols.documents,
		cols.grant,
		cols.fields,
		j.Version,
		j.UpdatedAt.UTC(),
		j.ID,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return r.checkConditional(ctx, result, j.ID)
}

// UpdateGrant replaces the edit grant and bumps the version if the stored
// version still equals expectedVersion.
func (r *JobRepository) UpdateGrant(ctx context.Context, id string, grant *editgrant.Grant, expectedVersion int64) error {
	value, err := encodeNullableJSON(grant, grant == nil)
	if err != nil {
		return err
	}

	query := `
		UPDATE jobs
		SET edit_grant = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`
	result, err := r.db.ExecContext(ctx, query, value, time.Now().UTC(), id, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to update job grant: %w", err)
	}
	return r.checkConditional(ctx, result, id)
}

func (r *JobRepository) checkConditional(ctx context.Context, result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	var exists bool
	err = r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM jobs WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check job existence: %w", err)
	}
	if !exists {
		return repository.ErrNotFound
	}
	// Job exists but the version moved on
	return repository.ErrConflict
}

// Delete permanently removes a job
func (r *JobRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns job summaries, most recently updated first
func (r *JobRepository) List(ctx context.Context, opts job.ListOptions) ([]job.Summary, error) {
	query := `
		SELECT id, mode, trade, status, current_stage,
		       COALESCE(json_extract(fields, '$.client_name'), ''), updated_at
		FROM jobs
	`

	var (
		conditions []string
		args       []any
	)
	if opts.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *opts.Status)
	}
	if opts.Mode != nil {
		conditions = append(conditions, "mode = ?")
		args = append(args, *opts.Mode)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY updated_at DESC, id ASC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	summaries := []job.Summary{}
	for rows.Next() {
		var s job.Summary
		if err := rows.Scan(&s.ID, &s.Mode, &s.Trade, &s.Status, &s.CurrentStage, &s.ClientName, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate jobs: %w", err)
	}
	return summaries, nil
}
