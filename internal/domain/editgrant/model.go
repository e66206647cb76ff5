package editgrant

import (
	"sort"
	"time"
)

// State is the derived state of an entity's edit grant.
type State string

const (
	StateNone      State = "NONE"
	StateRequested State = "REQUESTED"
	StateApproved  State = "APPROVED"
	StateConsumed  State = "CONSUMED"
)

// Grant is a one-time permission for a single actor to edit one entity.
// A rejected request leaves no grant behind.
type Grant struct {
	RequestedBy string     `json:"requested_by"`
	RequestedAt time.Time  `json:"requested_at"`
	ApprovedBy  *string    `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	Used        bool       `json:"used"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
}

// StateOf derives the state of g. A nil grant is NONE.
func StateOf(g *Grant) State {
	switch {
	case g == nil:
		return StateNone
	case g.Used:
		return StateConsumed
	case g.ApprovedAt != nil:
		return StateApproved
	default:
		return StateRequested
	}
}

// Active reports whether g authorizes an edit right now.
func (g *Grant) Active() bool {
	return StateOf(g) == StateApproved
}

// Changes maps editable field names to their new values.
type Changes map[string]string

// ValidateFields checks that changes is non-empty and names only allowed fields.
func ValidateFields(changes Changes, allowed map[string]struct{}) error {
	if len(changes) == 0 {
		return ErrNoChanges
	}
	var bad []string
	for name := range changes {
		if _, ok := allowed[name]; !ok {
			bad = append(bad, name)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return ErrUneditableField.WithDetails(map[string]any{"fields": bad})
	}
	return nil
}
