package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rpggio/freightline/internal/domain/access"
	"github.com/rpggio/freightline/internal/domain/audit"
	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/domain/job"
	"github.com/rpggio/freightline/internal/domain/quote"
	"github.com/rpggio/freightline/internal/domain/sequence"
)

// AllocatorService defines identifier allocation needed by MCP.
type AllocatorService interface {
	AllocateJobIdentifier(ctx context.Context, mode, trade string, year int) (sequence.Identifier, error)
}

// JobService defines job operations needed by MCP.
type JobService interface {
	CreateJob(ctx context.Context, req job.CreateRequest) (*job.Job, error)
	InitializeJob(ctx context.Context, jobID string, documents []string, actor access.Actor) (*job.Job, error)
	ConfirmDocument(ctx context.Context, jobID, name string, actor access.Actor) (*job.Document, error)
	AdvanceStage(ctx context.Context, jobID string, actor access.Actor) (*job.Job, error)
	GetJob(ctx context.Context, jobID string) (*job.Job, error)
	ListJobs(ctx context.Context, opts job.ListOptions) ([]job.Summary, error)
	DeleteJob(ctx context.Context, jobID string, actor access.Actor) error
}

// QuoteService defines quote operations needed by MCP.
type QuoteService interface {
	Create(ctx context.Context, req quote.CreateRequest) (*quote.Quote, error)
	Get(ctx context.Context, id string) (*quote.Quote, error)
	Approve(ctx context.Context, id string, approver access.Actor) (*quote.Quote, *job.Job, error)
}

// EditService defines the edit authorization workflow needed by MCP.
type EditService interface {
	RequestEdit(ctx context.Context, ref editgrant.Ref, actor access.Actor) (*editgrant.Grant, error)
	ApproveEdit(ctx context.Context, ref editgrant.Ref, approver access.Actor) (*editgrant.Grant, error)
	RejectEdit(ctx context.Context, ref editgrant.Ref, approver access.Actor, reason string) error
	ConsumeEditAndApply(ctx context.Context, ref editgrant.Ref, actor access.Actor, changes editgrant.Changes) (any, error)
}

// AuditService defines audit operations needed by MCP.
type AuditService interface {
	Record(ctx context.Context, entityType audit.EntityType, entityID string, action audit.Action, description string, performedBy any, meta map[string]any)
	Trail(ctx context.Context, entityType audit.EntityType, entityID string) ([]audit.Entry, error)
	ActorActivity(ctx context.Context, actorID string, opts audit.ActorListOptions) ([]audit.Entry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Allocator AllocatorService
	Jobs      JobService
	Quotes    QuoteService
	Edits     EditService
	Audit     AuditService
}

// toolCapabilities is the capability each tool requires of the caller.
// Approval-class services check their own capability again.
var toolCapabilities = map[string]access.Capability{
	"allocate_job_identifier": access.CapManageJobs,
	"create_job":              access.CapManageJobs,
	"initialize_job":          access.CapManageJobs,
	"get_job":                 access.CapViewJobs,
	"list_jobs":               access.CapViewJobs,
	"confirm_document":        access.CapManageJobs,
	"advance_stage":           access.CapManageJobs,
	"delete_job":              access.CapDeleteJobs,
	"create_quote":            access.CapManageJobs,
	"get_quote":               access.CapViewJobs,
	"approve_quote":           access.CapApproveQuotes,
	"request_edit":            access.CapManageJobs,
	"approve_edit":            access.CapApproveEdits,
	"reject_edit":             access.CapApproveEdits,
	"apply_edit":              access.CapManageJobs,
	"record_audit":            access.CapManageJobs,
	"audit_trail":             access.CapViewJobs,
	"actor_activity":          access.CapViewJobs,
}

// Handler dispatches tool calls to domain services.
type Handler struct {
	services Services
	authz    access.Authorizer
	now      func() time.Time
}

// NewHandler creates a new MCP handler.
func NewHandler(services Services, authz access.Authorizer) *Handler {
	if authz == nil {
		authz = access.DefaultPolicy()
	}
	return &Handler{services: services, authz: authz, now: time.Now}
}

// Handle authorizes actor for method and dispatches it.
func (h *Handler) Handle(ctx context.Context, actor access.Actor, method string, params json.RawMessage) (any, error) {
	capability, ok := toolCapabilities[method]
	if !ok {
		return nil, errUnknownTool.WithDetails(map[string]string{"tool": method})
	}
	if err := h.authz.Authorize(ctx, actor, capability); err != nil {
		return nil, err
	}

	switch method {
	case "allocate_job_identifier":
		var req AllocateJobIdentifierParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		id, err := h.services.Allocator.AllocateJobIdentifier(ctx, req.Mode, req.Trade, h.year(req.Year))
		if err != nil {
			return nil, err
		}
		return IdentifierResponse{Identifier: id.String()}, nil

	case "create_job":
		var req CreateJobParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.services.Jobs.CreateJob(ctx, job.CreateRequest{
			Mode:      req.Mode,
			Trade:     req.Trade,
			Year:      req.Year,
			Fields:    req.Fields.jobFields(),
			Documents: req.Documents,
			Actor:     actor,
		})

	case "initialize_job":
		var req InitializeJobParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.services.Jobs.InitializeJob(ctx, req.JobID, req.Documents, actor)

	case "get_job":
		var req JobIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.services.Jobs.GetJob(ctx, req.JobID)

	case "list_jobs":
		var req ListJobsParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		opts, err := listOptions(req)
		if err != nil {
			return nil, err
		}
		jobs, err := h.services.Jobs.ListJobs(ctx, opts)
		if err != nil {
			return nil, err
		}
		if jobs == nil {
			jobs = []job.Summary{}
		}
		return JobListResponse{Jobs: jobs}, nil

	case "confirm_document":
		var req ConfirmDocumentParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		doc, err := h.services.Jobs.ConfirmDocument(ctx, req.JobID, req.Document, actor)
		if err != nil {
			return nil, err
		}
		return ConfirmDocumentResponse{JobID: req.JobID, Document: doc}, nil

	case "advance_stage":
		var req JobIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.services.Jobs.AdvanceStage(ctx, req.JobID, actor)

	case "delete_job":
		var req JobIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if err := h.services.Jobs.DeleteJob(ctx, req.JobID, actor); err != nil {
			return nil, err
		}
		return DeleteJobResponse{Deleted: req.JobID}, nil

	case "create_quote":
		var req CreateQuoteParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.services.Quotes.Create(ctx, quote.CreateRequest{
			Mode:  req.Mode,
			Trade: req.Trade,
			Year:  req.Year,
			Fields: quote.Fields{
				Fields:   req.Fields.jobFields(),
				Amount:   req.Amount,
				Currency: req.Currency,
			},
			Actor: actor,
		})

	case "get_quote":
		var req QuoteIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.services.Quotes.Get(ctx, req.QuoteID)

	case "approve_quote":
		var req QuoteIDParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		q, j, err := h.services.Quotes.Approve(ctx, req.QuoteID, actor)
		if err != nil {
			return nil, err
		}
		return ApproveQuoteResponse{Quote: q, Job: j}, nil

	case "request_edit":
		var req EntityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		ref := entityRef(req.EntityType, req.EntityID)
		grant, err := h.services.Edits.RequestEdit(ctx, ref, actor)
		if err != nil {
			return nil, err
		}
		return grantResponse(ref, grant), nil

	case "approve_edit":
		var req EntityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		ref := entityRef(req.EntityType, req.EntityID)
		grant, err := h.services.Edits.ApproveEdit(ctx, ref, actor)
		if err != nil {
			return nil, err
		}
		return grantResponse(ref, grant), nil

	case "reject_edit":
		var req RejectEditParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		ref := entityRef(req.EntityType, req.EntityID)
		if err := h.services.Edits.RejectEdit(ctx, ref, actor, req.Reason); err != nil {
			return nil, err
		}
		return grantResponse(ref, nil), nil

	case "apply_edit":
		var req ApplyEditParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		ref := entityRef(req.EntityType, req.EntityID)
		updated, err := h.services.Edits.ConsumeEditAndApply(ctx, ref, actor, editgrant.Changes(req.Changes))
		if err != nil {
			return nil, err
		}
		return ApplyEditResponse{EntityType: string(ref.Type), Entity: updated}, nil

	case "record_audit":
		var req RecordAuditParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if strings.TrimSpace(req.EntityType) == "" || strings.TrimSpace(req.EntityID) == "" || strings.TrimSpace(req.Action) == "" {
			return nil, errInvalidParams.WithDetails(map[string]string{"required": "entity_type, entity_id, action"})
		}
		// Callers may attribute an entry to automation, never to another person.
		var performer any = actor
		if strings.TrimSpace(req.PerformedBy) != "" {
			if !audit.IsSystemPerformer(req.PerformedBy) {
				return nil, errInvalidParams.WithDetails(map[string]string{"performed_by": "must be a system performer such as system or automation"})
			}
			performer = nil
		}
		h.services.Audit.Record(ctx, audit.EntityType(req.EntityType), req.EntityID, audit.Action(req.Action), req.Description, performer, req.Meta)
		return RecordAuditResponse{Recorded: true}, nil

	case "audit_trail":
		var req EntityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		entries, err := h.services.Audit.Trail(ctx, audit.EntityType(strings.ToLower(strings.TrimSpace(req.EntityType))), req.EntityID)
		if err != nil {
			return nil, err
		}
		return entriesResponse(entries), nil

	case "actor_activity":
		var req ActorActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		actorID := req.ActorID
		if actorID == "" {
			actorID = actor.ID
		}
		entries, err := h.services.Audit.ActorActivity(ctx, actorID, audit.ActorListOptions{Limit: req.Limit, Offset: req.Offset})
		if err != nil {
			return nil, err
		}
		return entriesResponse(entries), nil

	default:
		return nil, errUnknownTool.WithDetails(map[string]string{"tool": method})
	}
}

func (h *Handler) year(year int) int {
	if year == 0 {
		return h.now().Year()
	}
	return year
}

func decodeParams(params json.RawMessage, out any) error {
	if len(bytes.TrimSpace(params)) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return errInvalidParams.Wrap(fmt.Errorf("decode params: %w", err))
	}
	return nil
}

func listOptions(req ListJobsParams) (job.ListOptions, error) {
	opts := job.ListOptions{Limit: req.Limit, Offset: req.Offset}
	if req.Status != "" {
		status := job.Status(strings.ToLower(strings.TrimSpace(req.Status)))
		switch status {
		case job.StatusNew, job.StatusActive, job.StatusCompleted:
			opts.Status = &status
		default:
			return opts, errInvalidParams.WithDetails(map[string]string{"status": req.Status})
		}
	}
	if req.Mode != "" {
		mode, err := sequence.ParseMode(req.Mode)
		if err != nil {
			return opts, err
		}
		opts.Mode = &mode
	}
	return opts, nil
}

func entityRef(entityType, entityID string) editgrant.Ref {
	return editgrant.Ref{
		Type: audit.EntityType(strings.ToLower(strings.TrimSpace(entityType))),
		ID:   strings.TrimSpace(entityID),
	}
}

func grantResponse(ref editgrant.Ref, grant *editgrant.Grant) GrantResponse {
	return GrantResponse{
		EntityType: string(ref.Type),
		EntityID:   ref.ID,
		State:      editgrant.StateOf(grant),
		Grant:      grant,
	}
}

func entriesResponse(entries []audit.Entry) AuditEntriesResponse {
	if entries == nil {
		entries = []audit.Entry{}
	}
	return AuditEntriesResponse{Entries: entries}
}
