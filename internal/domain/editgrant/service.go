package editgrant

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/rpggio/freightline/internal/domain/access"
	"github.com/rpggio/freightline/internal/domain/audit"
	"github.com/rpggio/freightline/internal/notify"
	"github.com/rpggio/freightline/internal/repository"
)

// Snapshot is an entity's current grant and the version it was read at.
type Snapshot struct {
	Grant   *Grant
	Version int64
}

// Target adapts one entity type to the grant workflow. Writes are conditional
// on expectedVersion and fail with repository.ErrConflict when it is stale.
type Target interface {
	LoadGrant(ctx context.Context, id string) (Snapshot, error)
	SaveGrant(ctx context.Context, id string, grant *Grant, expectedVersion int64) error
	ValidateChanges(changes Changes) error
	// ApplyEdit writes changes and the consumed grant in one conditional update
	// and returns the updated entity.
	ApplyEdit(ctx context.Context, id string, grant *Grant, changes Changes, expectedVersion int64) (any, error)
}

// AuditRecorder records grant transitions.
type AuditRecorder interface {
	Record(ctx context.Context, entityType audit.EntityType, entityID string, action audit.Action, description string, performedBy any, meta map[string]any)
}

// Notifier delivers best-effort notifications.
type Notifier interface {
	Notify(ctx context.Context, msg notify.Message)
}

// ActorDirectory looks up actors for notification addressing.
type ActorDirectory interface {
	LookupActor(ctx context.Context, id string) (*access.Actor, error)
}

// Ref identifies an entity.
type Ref struct {
	Type audit.EntityType
	ID   string
}

// Service runs the edit authorization workflow over registered targets.
type Service struct {
	targets       map[audit.EntityType]Target
	authz         access.Authorizer
	audit         AuditRecorder
	notifier      Notifier
	directory     ActorDirectory
	approverEmail string
	logger        *slog.Logger
	now           func() time.Time
}

// Options configures optional collaborators.
type Options struct {
	Notifier      Notifier
	Directory     ActorDirectory
	ApproverEmail string
}

// NewService creates a new edit grant service.
func NewService(authz access.Authorizer, recorder AuditRecorder, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		targets:       make(map[audit.EntityType]Target),
		authz:         authz,
		audit:         recorder,
		notifier:      opts.Notifier,
		directory:     opts.Directory,
		approverEmail: opts.ApproverEmail,
		logger:        logger,
		now:           time.Now,
	}
}

// Register makes an entity type editable through the workflow.
func (s *Service) Register(entityType audit.EntityType, target Target) {
	s.targets[entityType] = target
}

// Status returns the current grant of an entity and its derived state.
func (s *Service) Status(ctx context.Context, ref Ref) (State, *Grant, error) {
	target, err := s.target(ref.Type)
	if err != nil {
		return "", nil, err
	}
	snap, err := target.LoadGrant(ctx, ref.ID)
	if err != nil {
		return "", nil, err
	}
	return StateOf(snap.Grant), snap.Grant, nil
}

// RequestEdit opens an edit request on behalf of actor.
func (s *Service) RequestEdit(ctx context.Context, ref Ref, actor access.Actor) (*Grant, error) {
	target, err := s.target(ref.Type)
	if err != nil {
		return nil, err
	}
	snap, err := target.LoadGrant(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	next, err := Request(snap.Grant, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, target, ref, next, snap.Version); err != nil {
		return nil, err
	}

	s.record(ctx, ref, audit.ActionEditRequested, fmt.Sprintf("Edit requested for %s %s", ref.Type, ref.ID), actor, nil)
	s.notify(ctx, notify.Message{
		Event:     notify.EventEditRequested,
		Recipient: s.approverEmail,
		Subject:   fmt.Sprintf("Edit request for %s", ref.ID),
		Body:      fmt.Sprintf("%s requested permission to edit %s %s.", displayName(actor), ref.Type, ref.ID),
	}, ref)

	s.logger.Info("edit requested", "entity_type", ref.Type, "entity_id", ref.ID, "actor", actor.ID)
	return next, nil
}

// ApproveEdit approves the pending request. The approver must hold the
// approve_edits capability.
func (s *Service) ApproveEdit(ctx context.Context, ref Ref, approver access.Actor) (*Grant, error) {
	if err := s.authz.Authorize(ctx, approver, access.CapApproveEdits); err != nil {
		return nil, err
	}
	target, err := s.target(ref.Type)
	if err != nil {
		return nil, err
	}
	snap, err := target.LoadGrant(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	next, err := Approve(snap.Grant, approver.ID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, target, ref, next, snap.Version); err != nil {
		return nil, err
	}

	s.record(ctx, ref, audit.ActionEditApproved, fmt.Sprintf("Edit approved for %s %s", ref.Type, ref.ID), approver,
		map[string]any{"requested_by": next.RequestedBy})
	s.notifyRequester(ctx, ref, next.RequestedBy, notify.EventEditApproved, "approved")

	s.logger.Info("edit approved", "entity_type", ref.Type, "entity_id", ref.ID, "approver", approver.ID, "requester", next.RequestedBy)
	return next, nil
}

// RejectEdit discards the pending request. The approver must hold the
// approve_edits capability.
func (s *Service) RejectEdit(ctx context.Context, ref Ref, approver access.Actor, reason string) error {
	if err := s.authz.Authorize(ctx, approver, access.CapApproveEdits); err != nil {
		return err
	}
	target, err := s.target(ref.Type)
	if err != nil {
		return err
	}
	snap, err := target.LoadGrant(ctx, ref.ID)
	if err != nil {
		return err
	}
	if _, err := Reject(snap.Grant); err != nil {
		return err
	}
	if err := s.save(ctx, target, ref, nil, snap.Version); err != nil {
		return err
	}

	meta := map[string]any{"requested_by": snap.Grant.RequestedBy}
	if reason != "" {
		meta["reason"] = reason
	}
	s.record(ctx, ref, audit.ActionEditRejected, fmt.Sprintf("Edit rejected for %s %s", ref.Type, ref.ID), approver, meta)
	s.notifyRequester(ctx, ref, snap.Grant.RequestedBy, notify.EventEditRejected, "rejected")

	s.logger.Info("edit rejected", "entity_type", ref.Type, "entity_id", ref.ID, "approver", approver.ID)
	return nil
}

// ConsumeEditAndApply applies changes using actor's approved grant and marks
// the grant used in the same write.
func (s *Service) ConsumeEditAndApply(ctx context.Context, ref Ref, actor access.Actor, changes Changes) (any, error) {
	target, err := s.target(ref.Type)
	if err != nil {
		return nil, err
	}
	if len(changes) == 0 {
		return nil, ErrNoChanges
	}
	if err := target.ValidateChanges(changes); err != nil {
		return nil, err
	}
	snap, err := target.LoadGrant(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	consumed, err := Consume(snap.Grant, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	updated, err := target.ApplyEdit(ctx, ref.ID, consumed, changes, snap.Version)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConcurrentUpdate.Wrap(err)
		}
		return nil, err
	}

	fields := make([]string, 0, len(changes))
	for name := range changes {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	s.record(ctx, ref, audit.ActionEditConsumed, fmt.Sprintf("Edit applied to %s %s", ref.Type, ref.ID), actor,
		map[string]any{"fields": fields})

	s.logger.Info("edit applied", "entity_type", ref.Type, "entity_id", ref.ID, "actor", actor.ID, "fields", fields)
	return updated, nil
}

func (s *Service) target(entityType audit.EntityType) (Target, error) {
	target, ok := s.targets[entityType]
	if !ok {
		return nil, ErrUnknownEntity.WithDetails(map[string]string{"entity_type": string(entityType)})
	}
	return target, nil
}

func (s *Service) save(ctx context.Context, target Target, ref Ref, grant *Grant, version int64) error {
	if err := target.SaveGrant(ctx, ref.ID, grant, version); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrConcurrentUpdate.Wrap(err)
		}
		return err
	}
	return nil
}

func (s *Service) record(ctx context.Context, ref Ref, action audit.Action, description string, actor access.Actor, meta map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, ref.Type, ref.ID, action, description, actor, meta)
}

func (s *Service) notify(ctx context.Context, msg notify.Message, ref Ref) {
	if s.notifier == nil {
		return
	}
	msg.EntityType = string(ref.Type)
	msg.EntityID = ref.ID
	s.notifier.Notify(ctx, msg)
}

func (s *Service) notifyRequester(ctx context.Context, ref Ref, requesterID string, event notify.Event, verb string) {
	if s.notifier == nil || s.directory == nil {
		return
	}
	requester, err := s.directory.LookupActor(ctx, requesterID)
	if err != nil {
		s.logger.Warn("requester lookup failed", "actor", requesterID, "error", err)
		return
	}
	s.notify(ctx, notify.Message{
		Event:     event,
		Recipient: requester.Email,
		Subject:   fmt.Sprintf("Edit request %s for %s", verb, ref.ID),
		Body:      fmt.Sprintf("Your request to edit %s %s was %s.", ref.Type, ref.ID, verb),
	}, ref)
}

func displayName(a access.Actor) string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}
