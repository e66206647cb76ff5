package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/freightline/internal/domain/audit"
)

// AuditRepository implements audit.Repository for SQLite. Entries are only
// ever inserted.
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new AuditRepository
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Append inserts a new audit entry
func (r *AuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var meta sql.NullString
	if len(entry.Meta) > 0 {
		var err error
		if meta, err = encodeNullableJSON(entry.Meta, false); err != nil {
			return err
		}
	}

	query := `
		INSERT INTO audit_log (
			id, entity_type, entity_id, action, description,
			performed_by, meta, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.EntityType,
		entry.EntityID,
		entry.Action,
		entry.Description,
		entry.PerformedBy,
		meta,
		createdAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}

	seq, err := result.LastInsertId()
	if err == nil {
		entry.Seq = seq
	}
	entry.CreatedAt = createdAt.UTC()
	return nil
}

// ListByEntity returns an entity's entries in the order they were recorded
func (r *AuditRepository) ListByEntity(ctx context.Context, entityType audit.EntityType, entityID string) ([]audit.Entry, error) {
	query := `
		SELECT seq, id, entity_type, entity_id, action, description, performed_by, meta, created_at
		FROM audit_log
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at ASC, seq ASC
	`
	return r.query(ctx, query, entityType, entityID)
}

// ListByActor returns an actor's entries, newest first
func (r *AuditRepository) ListByActor(ctx context.Context, actorID string, opts audit.ActorListOptions) ([]audit.Entry, error) {
	query := `
		SELECT seq, id, entity_type, entity_id, action, description, performed_by, meta, created_at
		FROM audit_log
		WHERE performed_by = ?
		ORDER BY created_at DESC, seq DESC
	`
	args := []any{actorID}
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, opts.Offset)
		}
	}
	return r.query(ctx, query, args...)
}

func (r *AuditRepository) query(ctx context.Context, query string, args ...any) ([]audit.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	entries := []audit.Entry{}
	for rows.Next() {
		var (
			entry audit.Entry
			meta  sql.NullString
		)
		if err := rows.Scan(
			&entry.Seq,
			&entry.ID,
			&entry.EntityType,
			&entry.EntityID,
			&entry.Action,
			&entry.Description,
			&entry.PerformedBy,
			&meta,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if meta.Valid {
			if err := decodeJSON(meta.String, &entry.Meta); err != nil {
				return nil, err
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}
