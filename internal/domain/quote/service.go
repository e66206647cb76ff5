package quote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/rpggio/freightline/internal/domain/access"
	"github.com/rpggio/freightline/internal/domain/audit"
	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/domain/job"
	"github.com/rpggio/freightline/internal/domain/sequence"
	"github.com/rpggio/freightline/internal/repository"
)

// Service handles quote business logic.
type Service struct {
	quotes      Repository
	allocator   Allocator
	jobs        JobCreator
	authz       access.Authorizer
	audit       AuditRecorder
	defaultMode string
	logger      *slog.Logger
	now         func() time.Time
}

// NewService creates a new quote service. defaultMode applies when a create
// request omits the transport mode.
func NewService(
	quotes Repository,
	allocator Allocator,
	jobs JobCreator,
	authz access.Authorizer,
	recorder AuditRecorder,
	defaultMode string,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		quotes:      quotes,
		allocator:   allocator,
		jobs:        jobs,
		authz:       authz,
		audit:       recorder,
		defaultMode: defaultMode,
		logger:      logger,
		now:         time.Now,
	}
}

// CreateRequest describes a quote creation request.
type CreateRequest struct {
	Mode   string
	Trade  string
	Year   int
	Fields Fields
	Actor  access.Actor
}

// Create allocates a quote identifier and stores a draft quote.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Quote, error) {
	mode := strings.TrimSpace(req.Mode)
	if mode == "" {
		mode = s.defaultMode
	}
	year := req.Year
	if year == 0 {
		year = s.now().Year()
	}

	id, err := s.allocator.AllocateQuoteIdentifier(ctx, mode, req.Trade, year)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	q := &Quote{
		ID:        id.String(),
		Mode:      id.Key.Mode,
		Trade:     id.Key.Trade,
		Status:    StatusDraft,
		Fields:    req.Fields,
		Version:   1,
		CreatedBy: audit.NormalizeActor(req.Actor),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.quotes.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("creating quote %s: %w", q.ID, err)
	}

	s.record(ctx, q.ID, audit.ActionQuoteCreated, fmt.Sprintf("Quote %s created", q.ID), req.Actor,
		map[string]any{"mode": q.Mode, "trade": q.Trade})
	s.logger.Info("quote created", "quote_id", q.ID, "actor", req.Actor.ID)
	return q, nil
}

// Get returns a quote by id.
func (s *Service) Get(ctx context.Context, id string) (*Quote, error) {
	return s.load(ctx, id)
}

// Approve marks a draft quote approved and creates its job. The approver must
// hold approve_quotes. The status flip is claimed first, so concurrent
// approvals create at most one job.
func (s *Service) Approve(ctx context.Context, id string, approver access.Actor) (*Quote, *job.Job, error) {
	if err := s.authz.Authorize(ctx, approver, access.CapApproveQuotes); err != nil {
		return nil, nil, err
	}
	current, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if current.Status == StatusApproved {
		return nil, nil, ErrAlreadyApproved.WithDetails(map[string]any{"quote_id": id, "job_id": current.JobID})
	}

	// The job is numbered in the same year as the quote it came from.
	ident, err := sequence.ParseIdentifier(current.ID)
	if err != nil {
		return nil, nil, err
	}

	claimed := *current
	claimed.Status = StatusApproved
	if err := s.update(ctx, &claimed, current.Version); err != nil {
		return nil, nil, err
	}

	quoteID := claimed.ID
	created, err := s.jobs.CreateJob(ctx, job.CreateRequest{
		QuoteID: &quoteID,
		Mode:    string(claimed.Mode),
		Trade:   string(claimed.Trade),
		Year:    ident.Key.FullYear(),
		Fields:  claimed.Fields.Fields,
		Actor:   approver,
	})
	if err != nil {
		s.release(ctx, &claimed)
		return nil, nil, err
	}

	linked := claimed
	linked.JobID = &created.ID
	if err := s.update(ctx, &linked, claimed.Version); err != nil {
		s.logger.Error("linking quote to job failed", "quote_id", id, "job_id", created.ID, "error", err)
		return nil, nil, err
	}

	s.record(ctx, id, audit.ActionQuoteApproved, fmt.Sprintf("Quote %s approved as job %s", id, created.ID), approver,
		map[string]any{"job_id": created.ID})
	s.logger.Info("quote approved", "quote_id", id, "job_id", created.ID, "approver", approver.ID)
	return &linked, created, nil
}

// release returns a claimed quote to draft after job creation failed.
func (s *Service) release(ctx context.Context, claimed *Quote) {
	draft := *claimed
	draft.Status = StatusDraft
	if err := s.update(ctx, &draft, claimed.Version); err != nil {
		s.logger.Error("releasing quote approval failed", "quote_id", claimed.ID, "error", err)
	}
}

// EditTarget exposes quotes to the edit grant workflow.
func (s *Service) EditTarget() editgrant.Target {
	return grantTarget{s: s}
}

func (s *Service) load(ctx context.Context, id string) (*Quote, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidInput.WithDetails(map[string]string{"field": "quote_id"})
	}
	q, err := s.quotes.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrQuoteNotFound.WithDetails(map[string]string{"quote_id": id})
		}
		return nil, fmt.Errorf("loading quote %s: %w", id, err)
	}
	return q, nil
}

func (s *Service) update(ctx context.Context, q *Quote, expected int64) error {
	q.Version = expected + 1
	q.UpdatedAt = s.now().UTC()
	if err := s.quotes.Update(ctx, q, expected); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return ErrConcurrentUpdate.WithDetails(map[string]string{"quote_id": q.ID}).Wrap(err)
		case errors.Is(err, repository.ErrNotFound):
			return ErrQuoteNotFound.WithDetails(map[string]string{"quote_id": q.ID})
		}
		return fmt.Errorf("updating quote %s: %w", q.ID, err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, id string, action audit.Action, description string, actor access.Actor, meta map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.EntityQuote, id, action, description, actor, meta)
}

type grantTarget struct {
	s *Service
}

func (t grantTarget) LoadGrant(ctx context.Context, id string) (editgrant.Snapshot, error) {
	q, err := t.s.load(ctx, id)
	if err != nil {
		return editgrant.Snapshot{}, err
	}
	return editgrant.Snapshot{Grant: q.EditGrant, Version: q.Version}, nil
}

func (t grantTarget) SaveGrant(ctx context.Context, id string, grant *editgrant.Grant, expectedVersion int64) error {
	err := t.s.quotes.UpdateGrant(ctx, id, grant, expectedVersion)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrQuoteNotFound.WithDetails(map[string]string{"quote_id": id})
	}
	return err
}

func (t grantTarget) ValidateChanges(changes editgrant.Changes) error {
	return editgrant.ValidateFields(changes, EditableFields)
}

func (t grantTarget) ApplyEdit(ctx context.Context, id string, grant *editgrant.Grant, changes editgrant.Changes, expectedVersion int64) (any, error) {
	current, err := t.s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Version != expectedVersion {
		return nil, repository.ErrConflict
	}
	updated := *current
	updated.Fields.Apply(changes)
	updated.EditGrant = grant
	updated.Version = expectedVersion + 1
	updated.UpdatedAt = t.s.now().UTC()
	if err := t.s.quotes.Update(ctx, &updated, expectedVersion); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return nil, err
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrQuoteNotFound.WithDetails(map[string]string{"quote_id": id})
		}
		return nil, fmt.Errorf("applying edit to quote %s: %w", id, err)
	}
	return &updated, nil
}
