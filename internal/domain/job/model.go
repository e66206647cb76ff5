package job

import (
	"time"

	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/domain/sequence"
)

// Status is the lifecycle status of a job.
type Status string

const (
	StatusNew       Status = "new"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Stage is one step of the fixed ten-stage lifecycle.
type Stage struct {
	Number      int        `json:"number"`
	Name        string     `json:"name"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Document is a required document. Names are unique within a job.
type Document struct {
	Name         string     `json:"name"`
	Confirmed    bool       `json:"confirmed"`
	IsCompleted  bool       `json:"is_completed"`
	UploadedFile *string    `json:"uploaded_file,omitempty"`
	ConfirmedBy  *string    `json:"confirmed_by,omitempty"`
	ConfirmedAt  *time.Time `json:"confirmed_at,omitempty"`
}

// Satisfied reports whether the document no longer blocks stage advancement.
// Either flag counts; legacy data sets only IsCompleted.
func (d Document) Satisfied() bool {
	return d.Confirmed || d.IsCompleted
}

// Fields are the descriptive, editable attributes of a job.
type Fields struct {
	Shipper          string `json:"shipper,omitempty"`
	Consignee        string `json:"consignee,omitempty"`
	Origin           string `json:"origin,omitempty"`
	Destination      string `json:"destination,omitempty"`
	CargoDescription string `json:"cargo_description,omitempty"`
	ClientName       string `json:"client_name,omitempty"`
	ClientEmail      string `json:"client_email,omitempty"`
	Notes            string `json:"notes,omitempty"`
}

// Job is a freight-forwarding shipment file.
type Job struct {
	ID           string           `json:"id"`
	QuoteID      *string          `json:"quote_id,omitempty"`
	Mode         sequence.Mode    `json:"mode"`
	Trade        sequence.Trade   `json:"trade"`
	Status       Status           `json:"status"`
	CurrentStage int              `json:"current_stage"`
	Stages       []Stage          `json:"stages"`
	Documents    []Document       `json:"documents"`
	Fields       Fields           `json:"fields"`
	EditGrant    *editgrant.Grant `json:"edit_grant,omitempty"`
	Version      int64            `json:"version"`
	CreatedBy    *string          `json:"created_by,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// Summary is the list view of a job.
type Summary struct {
	ID           string         `json:"id"`
	Mode         sequence.Mode  `json:"mode"`
	Trade        sequence.Trade `json:"trade"`
	Status       Status         `json:"status"`
	CurrentStage int            `json:"current_stage"`
	ClientName   string         `json:"client_name,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ListOptions filters job listings.
type ListOptions struct {
	Status *Status
	Mode   *sequence.Mode
	Limit  int
	Offset int
}

// Clone returns a deep copy of j so state transitions never alias stored data.
func (j *Job) Clone() *Job {
	cp := *j
	cp.Stages = append([]Stage(nil), j.Stages...)
	cp.Documents = append([]Document(nil), j.Documents...)
	if j.EditGrant != nil {
		g := *j.EditGrant
		cp.EditGrant = &g
	}
	return &cp
}
