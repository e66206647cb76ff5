package mcp

import (
	"context"
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/freightline/internal/domain/access"
)

func registerTools(server *sdkmcp.Server, h *Handler) {
	// Jobs
	addTool[AllocateJobIdentifierParams](server, h, "allocate_job_identifier",
		"Allocate the next job identifier ({mode}-{trade}-{yy}-{nnnnn}) without creating a job")
	addTool[CreateJobParams](server, h, "create_job",
		"Create a job with a fresh identifier and initialize its stages and required documents")
	addTool[InitializeJobParams](server, h, "initialize_job",
		"Apply the stage template and required documents to a job that is still new")
	addTool[JobIDParams](server, h, "get_job",
		"Get a job with its stages, documents and edit grant")
	addTool[ListJobsParams](server, h, "list_jobs",
		"List jobs, most recently updated first, optionally filtered by status and mode")
	addTool[ConfirmDocumentParams](server, h, "confirm_document",
		"Mark a required document as confirmed; unknown names are added to the job")
	addTool[JobIDParams](server, h, "advance_stage",
		"Complete the current stage and move to the next one once every required document is satisfied")
	addTool[JobIDParams](server, h, "delete_job",
		"Permanently delete a job (requires delete_jobs)")

	// Quotes
	addTool[CreateQuoteParams](server, h, "create_quote",
		"Create a draft quote with its own Q- identifier")
	addTool[QuoteIDParams](server, h, "get_quote",
		"Get a quote")
	addTool[QuoteIDParams](server, h, "approve_quote",
		"Approve a draft quote and create the job it describes (requires approve_quotes)")

	// Edit authorization
	addTool[EntityParams](server, h, "request_edit",
		"Request one-time permission to edit a job or quote")
	addTool[EntityParams](server, h, "approve_edit",
		"Approve the pending edit request on a job or quote (requires approve_edits)")
	addTool[RejectEditParams](server, h, "reject_edit",
		"Reject the pending edit request on a job or quote (requires approve_edits)")
	addTool[ApplyEditParams](server, h, "apply_edit",
		"Apply field changes using the caller's approved edit grant; the grant is consumed")

	// Audit
	addTool[RecordAuditParams](server, h, "record_audit",
		"Append an entry to an entity's audit trail on behalf of the caller or the system")
	addTool[EntityParams](server, h, "audit_trail",
		"List the audit trail of a job or quote, oldest first")
	addTool[ActorActivityParams](server, h, "actor_activity",
		"List recent audit entries performed by an actor, newest first")
}

// addTool registers a tool whose typed input is forwarded to the handler.
func addTool[In any](server *sdkmcp.Server, h *Handler, name, description string) {
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        name,
		Description: description,
	}, func(ctx context.Context, _ *sdkmcp.CallToolRequest, in In) (*sdkmcp.CallToolResult, any, error) {
		actor, ok := ActorFromContext(ctx)
		if !ok {
			return errorResult(access.ErrUnknownActor), nil, nil
		}
		params, err := json.Marshal(in)
		if err != nil {
			return errorResult(err), nil, nil
		}
		result, err := h.Handle(ctx, actor, name, params)
		if err != nil {
			return errorResult(err), nil, nil
		}
		return textResult(result)
	})
}

func textResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResult(err), nil, nil
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}

func errorResult(err error) *sdkmcp.CallToolResult {
	data, marshalErr := json.Marshal(MapError(err))
	if marshalErr != nil {
		data = []byte(`{"kind":"internal","code":"INTERNAL","message":"error payload could not be encoded"}`)
	}
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
