package audit

import "context"

// Repository provides append-only persistence for audit entries.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error
	ListByEntity(ctx context.Context, entityType EntityType, entityID string) ([]Entry, error)
	ListByActor(ctx context.Context, actorID string, opts ActorListOptions) ([]Entry, error)
}
