package audit

import "time"

// EntityType names the kind of entity an entry refers to.
type EntityType string

const (
	EntityJob   EntityType = "job"
	EntityQuote EntityType = "quote"
)

// Action identifies what happened to an entity.
type Action string

const (
	ActionJobCreated        Action = "job_created"
	ActionJobInitialized    Action = "job_initialized"
	ActionDocumentConfirmed Action = "document_confirmed"
	ActionStageAdvanced     Action = "stage_advanced"
	ActionJobCompleted      Action = "job_completed"
	ActionJobDeleted        Action = "job_deleted"
	ActionQuoteCreated      Action = "quote_created"
	ActionQuoteApproved     Action = "quote_approved"
	ActionEditRequested     Action = "edit_requested"
	ActionEditApproved      Action = "edit_approved"
	ActionEditRejected      Action = "edit_rejected"
	ActionEditConsumed      Action = "edit_consumed"
)

// Entry is an immutable record of an action taken against an entity.
// PerformedBy is nil for system or automation actions.
type Entry struct {
	ID          string         `json:"id"`
	Seq         int64          `json:"seq"`
	EntityType  EntityType     `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	Action      Action         `json:"action"`
	Description string         `json:"description"`
	PerformedBy *string        `json:"performed_by"`
	Meta        map[string]any `json:"meta,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ActorListOptions filters an actor's activity.
type ActorListOptions struct {
	Limit  int
	Offset int
}
