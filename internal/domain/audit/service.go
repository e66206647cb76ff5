package audit

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/freightline/internal/apperr"
)

// ErrInvalidInput indicates a malformed trail query.
var ErrInvalidInput = apperr.New(apperr.KindValidation, "INVALID_AUDIT_QUERY", "entity type and id are required")

// Service records and reads the audit trail.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new audit service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Record appends an audit entry. It never fails the caller: write errors are
// logged and dropped.
func (s *Service) Record(ctx context.Context, entityType EntityType, entityID string, action Action, description string, performedBy any, meta map[string]any) {
	entry := &Entry{
		ID:          uuid.NewString(),
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: description,
		PerformedBy: NormalizeActor(performedBy),
		Meta:        meta,
		CreatedAt:   s.now().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("audit write panicked", "entity_type", entityType, "entity_id", entityID, "action", action, "panic", r)
		}
	}()

	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Error("audit write failed",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
	}
}

// Trail returns the entries for an entity in ascending creation order.
func (s *Service) Trail(ctx context.Context, entityType EntityType, entityID string) ([]Entry, error) {
	if strings.TrimSpace(string(entityType)) == "" || strings.TrimSpace(entityID) == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByEntity(ctx, entityType, entityID)
}

// ActorActivity returns an actor's most recent entries, newest first.
func (s *Service) ActorActivity(ctx context.Context, actorID string, opts ActorListOptions) ([]Entry, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, ErrInvalidInput
	}
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	return s.repo.ListByActor(ctx, actorID, opts)
}
