package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `freightline tracks freight-forwarding jobs from creation to delivery.

Core concepts:
- Job: a shipment identified as {mode}-{trade}-{yy}-{nnnnn} (for example SEA-EX-25-00001).
  It moves through 10 fixed stages; stage 1 completes on creation.
- Required documents: a job cannot advance while any required document is neither confirmed
  nor completed. advance_stage reports the outstanding names when it refuses.
- Quote: a priced proposal with its own Q- identifier. Approving it creates the job.
- Edit grant: non-privileged staff may edit a job or quote once per approval:
  request_edit, then a manager calls approve_edit, then the requester calls apply_edit.
- Audit trail: every transition is recorded; read it with audit_trail or actor_activity.

Rules of engagement:
1) Start with list_jobs or get_job; prefer summaries over full jobs when browsing.
2) Confirm documents before calling advance_stage.
3) On a CONCURRENT_UPDATE error, re-read the entity and retry the operation.
4) Edits always go through the grant workflow; there is no direct field update.

Docs:
- freightline://docs/index
- freightline://docs/lifecycle
- freightline://docs/edit-grants
- freightline://docs/errors
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "freightline://docs/index",
		Name:        "docs_index",
		Title:       "freightline docs index",
		Description: "Entry point: what each doc covers and when to read it.",
		Content: `# freightline: Agent Docs Index

## Quick start

- Create work: create_job (manual) or create_quote then approve_quote.
- Track work: confirm_document, advance_stage, get_job.
- Change work: request_edit, approve_edit, apply_edit.

## Read next

- freightline://docs/lifecycle: stages, documents and the advance gate.
- freightline://docs/edit-grants: the one-time edit permission workflow.
- freightline://docs/errors: error kinds and what to do about each.
`,
	},
	{
		URI:         "freightline://docs/lifecycle",
		Name:        "docs_lifecycle",
		Title:       "Job lifecycle",
		Description: "Stages, required documents and the stage advance gate.",
		Content: `# Job lifecycle

## Stages

1. Job Created
2. Documents Collected
3. Booking Confirmed
4. Cargo Received
5. Export Customs Cleared
6. Departed Origin
7. In Transit
8. Arrived at Destination
9. Import Customs Cleared
10. Delivered

A new job is initialized with stage 1 completed and current stage 2. Entering stage 10
completes the job. Advancing a completed job changes nothing.

## Documents

Each transport mode has a default set of required documents. A document is satisfied when it
is confirmed or marked completed. Confirming a name the job does not list adds it.

## Gate

advance_stage succeeds only when every required document is satisfied. Otherwise it fails with
DOCUMENTS_OUTSTANDING and details.unsatisfied lists the blocking names.
`,
	},
	{
		URI:         "freightline://docs/edit-grants",
		Name:        "docs_edit_grants",
		Title:       "Edit grants",
		Description: "How a single approved edit is requested, approved and consumed.",
		Content: `# Edit grants

States: NONE -> REQUESTED -> APPROVED -> CONSUMED.

- request_edit opens a request. A second request while one is pending or approved fails.
- approve_edit and reject_edit require the approve_edits capability.
- apply_edit must be called by the actor who requested the edit. It writes the changes and
  consumes the grant in one update; a consumed grant cannot be reused.
- After CONSUMED a new request may be opened.

Editable job fields: shipper, consignee, origin, destination, cargo_description, client_name,
client_email, notes. Quotes also accept amount and currency.
`,
	},
	{
		URI:         "freightline://docs/errors",
		Name:        "docs_errors",
		Title:       "Errors",
		Description: "Error kinds returned by tools and the recovery for each.",
		Content: `# Errors

Failed tools return {kind, code, message, details}.

| kind | meaning | recovery |
|---|---|---|
| validation | malformed input | fix the arguments |
| not_found | entity does not exist | check the identifier |
| conflict | state forbids the operation or a concurrent write won | re-read, then retry or stop |
| permission | the caller lacks the capability or is the wrong actor | ask a privileged actor |
| internal | unexpected failure | retry later |
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
