package job

import (
	"context"

	"github.com/rpggio/freightline/internal/domain/audit"
	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/domain/sequence"
	"github.com/rpggio/freightline/internal/notify"
)

// Repository provides persistence for jobs. Update and UpdateGrant are
// conditional on expectedVersion and return repository.ErrConflict when stale.
type Repository interface {
	Create(ctx context.Context, j *Job) error
	Get(ctx context.Context, id string) (*Job, error)
	Update(ctx context.Context, j *Job, expectedVersion int64) error
	UpdateGrant(ctx context.Context, id string, grant *editgrant.Grant, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, opts ListOptions) ([]Summary, error)
}

// Allocator mints job identifiers.
type Allocator interface {
	AllocateJobIdentifier(ctx context.Context, mode, trade string, year int) (sequence.Identifier, error)
}

// AuditRecorder records job events.
type AuditRecorder interface {
	Record(ctx context.Context, entityType audit.EntityType, entityID string, action audit.Action, description string, performedBy any, meta map[string]any)
}

// Notifier delivers best-effort notifications.
type Notifier interface {
	Notify(ctx context.Context, msg notify.Message)
}
