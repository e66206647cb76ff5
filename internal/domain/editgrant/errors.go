package editgrant

import "github.com/rpggio/freightline/internal/apperr"

var (
	// ErrRequestPending indicates a request is already awaiting a decision.
	ErrRequestPending = apperr.New(apperr.KindConflict, "EDIT_REQUEST_PENDING", "an edit request is already pending")
	// ErrGrantOutstanding indicates an approved grant has not been used yet.
	ErrGrantOutstanding = apperr.New(apperr.KindConflict, "EDIT_GRANT_OUTSTANDING", "an approved edit grant has not been used")
	// ErrNoRequest indicates there is no pending request to decide on.
	ErrNoRequest = apperr.New(apperr.KindConflict, "NO_EDIT_REQUEST", "no pending edit request")
	// ErrAlreadyApproved indicates the request was already approved.
	ErrAlreadyApproved = apperr.New(apperr.KindConflict, "EDIT_ALREADY_APPROVED", "edit request already approved")
	// ErrNoGrant indicates an edit without any grant.
	ErrNoGrant = apperr.New(apperr.KindConflict, "NO_EDIT_GRANT", "no edit grant exists")
	// ErrGrantNotApproved indicates an edit against a grant still awaiting approval.
	ErrGrantNotApproved = apperr.New(apperr.KindConflict, "EDIT_GRANT_NOT_APPROVED", "edit grant is not approved")
	// ErrGrantUsed indicates an edit against a grant that was already consumed.
	ErrGrantUsed = apperr.New(apperr.KindConflict, "EDIT_GRANT_USED", "edit grant already used")
	// ErrWrongActor indicates an edit by someone other than the grant's requester.
	ErrWrongActor = apperr.New(apperr.KindPermission, "EDIT_GRANT_WRONG_ACTOR", "edit grant belongs to another actor")
	// ErrConcurrentUpdate indicates the entity changed between read and write.
	ErrConcurrentUpdate = apperr.New(apperr.KindConflict, "CONCURRENT_UPDATE", "entity was modified concurrently; re-read and retry")
	// ErrUnknownEntity indicates an entity type with no edit target registered.
	ErrUnknownEntity = apperr.New(apperr.KindValidation, "UNKNOWN_ENTITY_TYPE", "entity type does not support edit grants")
	// ErrNoChanges indicates an edit that changes nothing.
	ErrNoChanges = apperr.New(apperr.KindValidation, "NO_CHANGES", "at least one field change is required")
	// ErrUneditableField indicates a change to a field that cannot be edited.
	ErrUneditableField = apperr.New(apperr.KindValidation, "UNEDITABLE_FIELD", "field cannot be edited")
)
