package access

import (
	"context"
	"fmt"

	"github.com/rpggio/freightline/internal/apperr"
)

// ErrForbidden is returned when an actor lacks a capability.
var ErrForbidden = apperr.New(apperr.KindPermission, "FORBIDDEN", "actor lacks required privilege")

// ErrUnknownActor is returned when no actor is attached to a request.
var ErrUnknownActor = apperr.New(apperr.KindPermission, "UNAUTHENTICATED", "no authenticated actor")

// Authorizer answers whether an actor may exercise a capability.
type Authorizer interface {
	Authorize(ctx context.Context, actor Actor, c Capability) error
}

// Policy maps each role to its capability set.
type Policy map[Role]CapabilitySet

// DefaultPolicy is the standard role table.
func DefaultPolicy() Policy {
	return Policy{
		RoleAdmin:    NewCapabilitySet(CapViewJobs, CapManageJobs, CapApproveEdits, CapApproveQuotes, CapDeleteJobs),
		RoleManager:  NewCapabilitySet(CapViewJobs, CapManageJobs, CapApproveEdits, CapApproveQuotes),
		RoleOperator: NewCapabilitySet(CapViewJobs, CapManageJobs),
		RoleViewer:   NewCapabilitySet(CapViewJobs),
	}
}

// Capabilities returns the capability set granted to role.
func (p Policy) Capabilities(role Role) CapabilitySet {
	return p[role]
}

// Authorize implements Authorizer.
func (p Policy) Authorize(_ context.Context, actor Actor, c Capability) error {
	if actor.ID == "" {
		return ErrUnknownActor
	}
	if !p[actor.Role].Has(c) {
		return ErrForbidden.WithDetails(map[string]string{
			"actor":      actor.ID,
			"role":       string(actor.Role),
			"capability": c.String(),
		}).Wrap(fmt.Errorf("role %s cannot %s", actor.Role, c))
	}
	return nil
}
