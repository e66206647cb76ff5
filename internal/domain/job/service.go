package job

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
	"github.com/rpggio/freightline/internal/domain/sequence"
	"github.com/rpggio/freightline/internal/notify"
	"github.com/rpggio/freightline/internal/repository"
)

// confirmAttempts bounds re-reads when a confirmation loses a version race.
// Confirmations commute, so replaying one against fresh state is safe.
const confirmAttempts = 3

// Service handles job lifecycle business logic.
type Service struct {
	jobs      Repository
	allocator Allocator
	authz     access.Authorizer
	audit     AuditRecorder
	notifier  Notifier
	opts      Options
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new job service.
func NewService(
	jobs Repository,
	allocator Allocator,
	authz access.Authorizer,
	recorder AuditRecorder,
	notifier Notifier,
	opts Options,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = string(sequence.ModeSea)
	}
	if opts.Templates == nil {
		opts.Templates = DefaultTemplates()
	}
	return &Service{
		jobs:      jobs,
		allocator: allocator,
		authz:     authz,
		audit:     recorder,
		notifier:  notifier,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateRequest describes a job creation request.
type CreateRequest struct {
	QuoteID *string
	Mode    string
	Trade   string
	// Year defaults to the current year.
	Year   int
	Fields Fields
	// Documents overrides the mode's document template when non-nil.
	Documents []string
	Actor     access.Actor
}

// CreateJob allocates an identifier, stores the job and initializes its stages.
func (s *Service) CreateJob(ctx context.Context, req CreateRequest) (*Job, error) {
	mode := strings.TrimSpace(req.Mode)
	if mode == "" {
		mode = s.opts.DefaultMode
	}
	year := req.Year
	if year == 0 {
		year = s.now().Year()
	}

	// Everything that can reject the request is checked before a serial is
	// spent or a row is written.
	parsedMode, err := sequence.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	docs := req.Documents
	if docs == nil {
		docs = s.opts.Templates[parsedMode]
	}
	if err := ValidateDocuments(docs); err != nil {
		return nil, err
	}

	id, err := s.allocator.AllocateJobIdentifier(ctx, mode, req.Trade, year)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	j := &Job{
		ID:        id.String(),
		QuoteID:   req.QuoteID,
		Mode:      id.Key.Mode,
		Trade:     id.Key.Trade,
		Status:    StatusNew,
		Fields:    req.Fields,
		Version:   1,
		CreatedBy: audit.NormalizeActor(req.Actor),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobs.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("creating job %s: %w", j.ID, err)
	}

	meta := map[string]any{"mode": j.Mode, "trade": j.Trade}
	if j.QuoteID != nil {
		meta["quote_id"] = *j.QuoteID
	}
	s.record(ctx, j.ID, audit.ActionJobCreated, fmt.Sprintf("Job %s created", j.ID), req.Actor, meta)

	initialized, err := s.InitializeJob(ctx, j.ID, docs, req.Actor)
	if err != nil {
		return nil, err
	}

	s.logger.Info("job created", "job_id", j.ID, "actor", req.Actor.ID)
	return initialized, nil
}

// InitializeJob applies the stage template to a job still in status new.
func (s *Service) InitializeJob(ctx context.Context, jobID string, documents []string, actor access.Actor) (*Job, error) {
	current, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusNew {
		return nil, ErrAlreadyInitialized.WithDetails(map[string]any{"job_id": jobID, "status": current.Status})
	}

	updated := current.Clone()
	if err := Initialize(updated, documents, s.now()); err != nil {
		return nil, err
	}
	if err := s.update(ctx, updated, current.Version); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(updated.Documents))
	for _, d := range updated.Documents {
		names = append(names, d.Name)
	}
	s.record(ctx, jobID, audit.ActionJobInitialized, fmt.Sprintf("Job %s initialized", jobID), actor,
		map[string]any{"documents": names})
	return updated, nil
}

// ConfirmDocument marks a document confirmed. It never advances the stage.
func (s *Service) ConfirmDocument(ctx context.Context, jobID, name string, actor access.Actor) (*Document, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidDocument
	}

	var (
		doc Document
		err error
	)
	for attempt := 1; attempt <= confirmAttempts; attempt++ {
		var current *Job
		current, err = s.load(ctx, jobID)
		if err != nil {
			return nil, err
		}
		updated := current.Clone()
		doc, err = ConfirmDocument(updated, name, audit.NormalizeActor(actor), s.now())
		if err != nil {
			return nil, err
		}
		err = s.update(ctx, updated, current.Version)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrStageRace) {
			return nil, err
		}
		s.logger.Debug("document confirmation retry", "job_id", jobID, "attempt", attempt)
	}
	if err != nil {
		return nil, err
	}

	s.record(ctx, jobID, audit.ActionDocumentConfirmed, fmt.Sprintf("Document %q confirmed", doc.Name), actor,
		map[string]any{"document": doc.Name})
	return &doc, nil
}

// AdvanceStage moves the job to its next stage when every document is
// satisfied. The write is conditional on the version read, so two concurrent
// advances never both pass the same stage.
func (s *Service) AdvanceStage(ctx context.Context, jobID string, actor access.Actor) (*Job, error) {
	current, err := s.load(ctx, jobID)
	if err != nil {
		return nil, err
	}

	updated := current.Clone()
	advanced, err := Advance(updated, s.now())
	if err != nil {
		return nil, err
	}
	if !advanced {
		return current, nil
	}
	if err := s.update(ctx, updated, current.Version); err != nil {
		return nil, err
	}

	stageName := StageName(updated.CurrentStage)
	s.record(ctx, jobID, audit.ActionStageAdvanced, fmt.Sprintf("Advanced to stage %d: %s", updated.CurrentStage, stageName), actor,
		map[string]any{
			"previousStage": current.CurrentStage,
			"newStage":      updated.CurrentStage,
			"stageName":     stageName,
		})

	event := notify.EventStageAdvanced
	if updated.Status == StatusCompleted {
		event = notify.EventJobCompleted
		s.record(ctx, jobID, audit.ActionJobCompleted, fmt.Sprintf("Job %s completed", jobID), actor, nil)
	}
	s.notify(ctx, notify.Message{
		Event:      event,
		Recipient:  updated.Fields.ClientEmail,
		Subject:    fmt.Sprintf("Shipment %s: %s", jobID, stageName),
		Body:       fmt.Sprintf("Your shipment %s is now at stage %d of %d: %s.", jobID, updated.CurrentStage, FinalStage, stageName),
		EntityType: string(audit.EntityJob),
		EntityID:   jobID,
		Meta:       map[string]any{"stage": updated.CurrentStage},
	})

	s.logger.Info("stage advanced", "job_id", jobID, "stage", updated.CurrentStage, "actor", actor.ID)
	return updated, nil
}

// GetJob returns a job by id.
func (s *Service) GetJob(ctx context.Context, jobID string) (*Job, error) {
	return s.load(ctx, jobID)
}

// ListJobs returns job summaries.
func (s *Service) ListJobs(ctx context.Context, opts ListOptions) ([]Summary, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}
	return s.jobs.List(ctx, opts)
}

// DeleteJob permanently removes a job. The actor must hold delete_jobs.
func (s *Service) DeleteJob(ctx context.Context, jobID string, actor access.Actor) error {
	if err := s.authz.Authorize(ctx, actor, access.CapDeleteJobs); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrJobNotFound.WithDetails(map[string]string{"job_id": jobID})
		}
		return fmt.Errorf("deleting job %s: %w", jobID, err)
	}
	s.record(ctx, jobID, audit.ActionJobDeleted, fmt.Sprintf("Job %s deleted", jobID), actor, nil)
	s.logger.Info("job deleted", "job_id", jobID, "actor", actor.ID)
	return nil
}

func (s *Service) load(ctx context.Context, jobID string) (*Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, ErrInvalidInput.WithDetails(map[string]string{"field": "job_id"})
	}
	j, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrJobNotFound.WithDetails(map[string]string{"job_id": jobID})
		}
		return nil, fmt.Errorf("loading job %s: %w", jobID, err)
	}
	return j, nil
}

// update bumps the version and writes j if the stored version is still expected.
func (s *Service) update(ctx context.Context, j *Job, expected int64) error {
	j.Version = expected + 1
	j.UpdatedAt = s.now().UTC()
	if err := s.jobs.Update(ctx, j, expected); err != nil {
		switch {
		case errors.Is(err, repository.ErrConflict):
			return ErrStageRace.WithDetails(map[string]string{"job_id": j.ID}).Wrap(err)
		case errors.Is(err, repository.ErrNotFound):
			return ErrJobNotFound.WithDetails(map[string]string{"job_id": j.ID})
		}
		return fmt.Errorf("updating job %s: %w", j.ID, err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, jobID string, action audit.Action, description string, actor access.Actor, meta map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, audit.EntityJob, jobID, action, description, actor, meta)
}

func (s *Service) notify(ctx context.Context, msg notify.Message) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, msg)
}
