package editgrant

import (
	"strings"
	"time"

	"github.com/rpggio/freightline/internal/apperr"
)

var errActorRequired = apperr.New(apperr.KindValidation, "ACTOR_REQUIRED", "actor is required")

// Request opens a new grant for requester. It is allowed only when no grant
// exists or the previous one was consumed.
func Request(current *Grant, requester string, now time.Time) (*Grant, error) {
	if strings.TrimSpace(requester) == "" {
		return nil, errActorRequired
	}
	switch StateOf(current) {
	case StateRequested:
		return nil, ErrRequestPending
	case StateApproved:
		return nil, ErrGrantOutstanding
	}
	return &Grant{RequestedBy: requester, RequestedAt: now.UTC()}, nil
}

// Approve records approver's decision on a pending request.
func Approve(current *Grant, approver string, now time.Time) (*Grant, error) {
	if strings.TrimSpace(approver) == "" {
		return nil, errActorRequired
	}
	switch StateOf(current) {
	case StateNone, StateConsumed:
		return nil, ErrNoRequest
	case StateApproved:
		return nil, ErrAlreadyApproved
	}
	at := now.UTC()
	next := *current
	next.ApprovedBy = &approver
	next.ApprovedAt = &at
	next.Used = false
	next.UsedAt = nil
	return &next, nil
}

// Reject discards a pending request. The result is always nil.
func Reject(current *Grant) (*Grant, error) {
	switch StateOf(current) {
	case StateNone, StateConsumed:
		return nil, ErrNoRequest
	case StateApproved:
		return nil, ErrAlreadyApproved
	}
	return nil, nil
}

// Consume marks an approved grant used by actor. Only the original requester
// may consume it, and only once.
func Consume(current *Grant, actor string, now time.Time) (*Grant, error) {
	switch StateOf(current) {
	case StateNone:
		return nil, ErrNoGrant
	case StateRequested:
		return nil, ErrGrantNotApproved
	case StateConsumed:
		return nil, ErrGrantUsed
	}
	if actor != current.RequestedBy {
		return nil, ErrWrongActor.WithDetails(map[string]string{"actor": actor})
	}
	at := now.UTC()
	next := *current
	next.Used = true
	next.UsedAt = &at
	return &next, nil
}
