package quote

import (
	"context"

	"github.com/rpggio/freightline/internal/domain/audit"
	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/domain/job"
	"github.com/rpggio/freightline/internal/domain/sequence"
)

// Repository provides persistence for quotes. Update and UpdateGrant are
// conditional on expectedVersion and return repository.ErrConflict when stale.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
	Get(ctx context.Context, id string) (*Quote, error)
	Update(ctx context.Context, q *Quote, expectedVersion int64) error
	UpdateGrant(ctx context.Context, id string, grant *editgrant.Grant, expectedVersion int64) error
}

// Allocator mints quote identifiers.
type Allocator interface {
	AllocateQuoteIdentifier(ctx context.Context, mode, trade string, year int) (sequence.Identifier, error)
}

// JobCreator turns an approved quote into a job.
type JobCreator interface {
	CreateJob(ctx context.Context, req job.CreateRequest) (*job.Job, error)
}

// AuditRecorder records quote events.
type AuditRecorder interface {
	Record(ctx context.Context, entityType audit.EntityType, entityID string, action audit.Action, description string, performedBy any, meta map[string]any)
}
