package quote

import (
	"strings"
	"time"

	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/domain/job"
	"github.com/rpggio/freightline/internal/domain/sequence"
)

// Status is the lifecycle status of a quote.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusApproved Status = "approved"
)

// Fields are the editable attributes of a quote: the job fields plus pricing.
type Fields struct {
	job.Fields
	Amount   string `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// Quote is a priced offer that becomes a job once approved.
type Quote struct {
	ID        string           `json:"id"`
	Mode      sequence.Mode    `json:"mode"`
	Trade     sequence.Trade   `json:"trade"`
	Status    Status           `json:"status"`
	Fields    Fields           `json:"fields"`
	JobID     *string          `json:"job_id,omitempty"`
	EditGrant *editgrant.Grant `json:"edit_grant,omitempty"`
	Version   int64            `json:"version"`
	CreatedBy *string          `json:"created_by,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// EditableFields are the quote fields an approved edit may change.
var EditableFields = func() map[string]struct{} {
	fields := map[string]struct{}{"amount": {}, "currency": {}}
	for name := range job.EditableFields {
		fields[name] = struct{}{}
	}
	return fields
}()

// Apply writes validated changes into f.
func (f *Fields) Apply(changes editgrant.Changes) {
	rest := editgrant.Changes{}
	for name, value := range changes {
		switch name {
		case "amount":
			f.Amount = strings.TrimSpace(value)
		case "currency":
			f.Currency = strings.ToUpper(strings.TrimSpace(value))
		default:
			rest[name] = value
		}
	}
	f.Fields.Apply(rest)
}
