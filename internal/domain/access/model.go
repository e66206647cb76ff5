package access

import (
	"strings"

	"github.com/rpggio/freightline/internal/apperr"
)

// Role is the closed set of staff roles.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Capability names a single privilege.
type Capability uint8

const (
	CapViewJobs Capability = 1 << iota
	CapManageJobs
	CapApproveEdits
	CapApproveQuotes
	CapDeleteJobs
)

var capabilityNames = map[Capability]string{
	CapViewJobs:      "view_jobs",
	CapManageJobs:    "manage_jobs",
	CapApproveEdits:  "approve_edits",
	CapApproveQuotes: "approve_quotes",
	CapDeleteJobs:    "delete_jobs",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "unknown"
}

// CapabilitySet is a bit set of capabilities.
type CapabilitySet uint8

// NewCapabilitySet builds a set from individual capabilities.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var set CapabilitySet
	for _, c := range caps {
		set |= CapabilitySet(c)
	}
	return set
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return s&CapabilitySet(c) != 0
}

// Names lists the capability names in the set.
func (s CapabilitySet) Names() []string {
	var names []string
	for c := CapViewJobs; c <= CapDeleteJobs; c <<= 1 {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}
	return names
}

// ParseRole validates a role name.
func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	switch role {
	case RoleAdmin, RoleManager, RoleOperator, RoleViewer:
		return role, nil
	}
	return "", apperr.Validation("INVALID_ROLE", "unknown role %q", raw)
}

// Actor is an authenticated staff member.
type Actor struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role"`
}

// Ref returns the canonical actor reference.
func (a Actor) Ref() string {
	return a.ID
}
