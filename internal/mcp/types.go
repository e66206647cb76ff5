package mcp

import (
	"github.com/rpggio/freightline/internal/domain/audit"
	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/domain/job"
	"github.com/rpggio/freightline/internal/domain/quote"
)

type AllocateJobIdentifierParams struct {
	Mode  string `json:"mode,omitempty" jsonschema:"transport mode (SEA, AIR, ROAD, RAIL); defaults to the configured mode"`
	Trade string `json:"trade" jsonschema:"trade direction (EX, IM, CT)"`
	Year  int    `json:"year,omitempty" jsonschema:"two or four digit year; defaults to the current year"`
}

// FieldsParams carries the editable descriptive fields of a job or quote.
type FieldsParams struct {
	Shipper          string `json:"shipper,omitempty"`
	Consignee        string `json:"consignee,omitempty"`
	Origin           string `json:"origin,omitempty"`
	Destination      string `json:"destination,omitempty"`
	CargoDescription string `json:"cargo_description,omitempty"`
	ClientName       string `json:"client_name,omitempty"`
	ClientEmail      string `json:"client_email,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

func (p FieldsParams) jobFields() job.Fields {
	return job.Fields{
		Shipper:          p.Shipper,
		Consignee:        p.Consignee,
		Origin:           p.Origin,
		Destination:      p.Destination,
		CargoDescription: p.CargoDescription,
		ClientName:       p.ClientName,
		ClientEmail:      p.ClientEmail,
		Notes:            p.Notes,
	}
}

type CreateJobParams struct {
	Mode      string       `json:"mode,omitempty" jsonschema:"transport mode; defaults to the configured mode"`
	Trade     string       `json:"trade" jsonschema:"trade direction (EX, IM, CT)"`
	Year      int          `json:"year,omitempty" jsonschema:"two or four digit year; defaults to the current year"`
	Fields    FieldsParams `json:"fields,omitempty"`
	Documents []string     `json:"documents,omitempty" jsonschema:"required document names; defaults to the mode's template"`
}

type InitializeJobParams struct {
	JobID     string   `json:"job_id"`
	Documents []string `json:"documents,omitempty" jsonschema:"required document names; defaults to the mode's template"`
}

type JobIDParams struct {
	JobID string `json:"job_id"`
}

type ListJobsParams struct {
	Status string `json:"status,omitempty" jsonschema:"filter by status (new, active, completed)"`
	Mode   string `json:"mode,omitempty" jsonschema:"filter by transport mode"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

type ConfirmDocumentParams struct {
	JobID    string `json:"job_id"`
	Document string `json:"document" jsonschema:"document name, created if the job does not list it yet"`
}

type CreateQuoteParams struct {
	Mode     string       `json:"mode,omitempty" jsonschema:"transport mode; defaults to the configured mode"`
	Trade    string       `json:"trade" jsonschema:"trade direction (EX, IM, CT)"`
	Year     int          `json:"year,omitempty"`
	Fields   FieldsParams `json:"fields,omitempty"`
	Amount   string       `json:"amount,omitempty"`
	Currency string       `json:"currency,omitempty"`
}

type QuoteIDParams struct {
	QuoteID string `json:"quote_id"`
}

type EntityParams struct {
	EntityType string `json:"entity_type" jsonschema:"job or quote"`
	EntityID   string `json:"entity_id"`
}

type RejectEditParams struct {
	EntityType string `json:"entity_type" jsonschema:"job or quote"`
	EntityID   string `json:"entity_id"`
	Reason     string `json:"reason,omitempty"`
}

type ApplyEditParams struct {
	EntityType string            `json:"entity_type" jsonschema:"job or quote"`
	EntityID   string            `json:"entity_id"`
	Changes    map[string]string `json:"changes" jsonschema:"field name to new value"`
}

type RecordAuditParams struct {
	EntityType  string         `json:"entity_type"`
	EntityID    string         `json:"entity_id"`
	Action      string         `json:"action"`
	Description string         `json:"description,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
	PerformedBy string         `json:"performed_by,omitempty" jsonschema:"set to system to record an automated action; defaults to the caller"`
}

type ActorActivityParams struct {
	ActorID string `json:"actor_id,omitempty" jsonschema:"actor to query; defaults to the caller"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

type IdentifierResponse struct {
	Identifier string `json:"identifier"`
}

type JobListResponse struct {
	Jobs []job.Summary `json:"jobs"`
}

type ConfirmDocumentResponse struct {
	JobID    string        `json:"job_id"`
	Document *job.Document `json:"document"`
}

type DeleteJobResponse struct {
	Deleted string `json:"deleted"`
}

type ApproveQuoteResponse struct {
	Quote *quote.Quote `json:"quote"`
	Job   *job.Job     `json:"job"`
}

type GrantResponse struct {
	EntityType string           `json:"entity_type"`
	EntityID   string           `json:"entity_id"`
	State      editgrant.State  `json:"state"`
	Grant      *editgrant.Grant `json:"grant,omitempty"`
}

type ApplyEditResponse struct {
	EntityType string `json:"entity_type"`
	Entity     any    `json:"entity"`
}

type RecordAuditResponse struct {
	Recorded bool `json:"recorded"`
}

type AuditEntriesResponse struct {
	Entries []audit.Entry `json:"entries"`
}
