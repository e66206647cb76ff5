package mcp_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/freightline/internal/apperr"
	"github.com/rpggio/freightline/internal/domain/access"
	"github.com/rpggio/freightline/internal/domain/editgrant"
	"github.com/rpggio/freightline/internal/notify"
	"github.com/rpggio/freightline/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	clerk   = access.Actor{ID: "clerk-1", Name: "Dana", Email: "dana@freightline.test", Role: access.RoleOperator}
	manager = access.Actor{ID: "mgr-1", Name: "Sam", Email: "sam@freightline.test", Role: access.RoleManager}
	admin   = access.Actor{ID: "admin-1", Role: access.RoleAdmin}
)

type jobView struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	CurrentStage int    `json:"current_stage"`
	Documents    []struct {
		Name      string `json:"name"`
		Confirmed bool   `json:"confirmed"`
	} `json:"documents"`
	Fields struct {
		Origin     string `json:"origin"`
		ClientName string `json:"client_name"`
	} `json:"fields"`
}

func decode[T any](t *testing.T, data json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestServer_ListsToolsAndDocs(t *testing.T) {
	ts := testserver.New(t)
	client := ts.ConnectAs(t, clerk)
	ctx := context.Background()

	tools, err := client.Session.ListTools(ctx, nil)
	require.NoError(t, err)
	names := make(map[string]bool, len(tools.Tools))
	for _, tool := range tools.Tools {
		names[tool.Name] = true
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
	for _, name := range []string{
		"allocate_job_identifier", "create_job", "initialize_job", "get_job", "list_jobs",
		"confirm_document", "advance_stage", "delete_job", "create_quote", "get_quote",
		"approve_quote", "request_edit", "approve_edit", "reject_edit", "apply_edit",
		"record_audit", "audit_trail", "actor_activity",
	} {
		assert.True(t, names[name], "missing tool %s", name)
	}

	read, err := client.Session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "freightline://docs/lifecycle"})
	require.NoError(t, err)
	require.NotEmpty(t, read.Contents)
	assert.Equal(t, "text/markdown", read.Contents[0].MIMEType)
	assert.Contains(t, read.Contents[0].Text, "Delivered")
}

func TestServer_StageGateOverMCP(t *testing.T) {
	ts := testserver.New(t)
	client := ts.ConnectAs(t, clerk)

	created := decode[jobView](t, client.MustCall(t, "create_job", map[string]any{
		"mode":      "sea",
		"trade":     "export",
		"year":      2025,
		"documents": []string{"Commercial Invoice", "Packing List"},
	}))
	assert.Equal(t, "SEA-EX-25-00001", created.ID)
	assert.Equal(t, 2, created.CurrentStage)

	client.MustCall(t, "confirm_document", map[string]any{"job_id": created.ID, "document": "Commercial Invoice"})

	_, apiErr := client.Call(t, "advance_stage", map[string]any{"job_id": created.ID})
	require.NotNil(t, apiErr)
	assert.Equal(t, apperr.KindConflict, apiErr.Kind)
	assert.Equal(t, "DOCUMENTS_OUTSTANDING", apiErr.Code)
	details := apiErr.Details.(map[string]any)
	assert.Equal(t, []any{"Packing List"}, details["unsatisfied"])

	client.MustCall(t, "confirm_document", map[string]any{"job_id": created.ID, "document": "Packing List"})
	advanced := decode[jobView](t, client.MustCall(t, "advance_stage", map[string]any{"job_id": created.ID}))
	assert.Equal(t, 3, advanced.CurrentStage)

	trail := decode[struct {
		Entries []struct {
			Action      string  `json:"action"`
			PerformedBy *string `json:"performed_by"`
		} `json:"entries"`
	}](t, client.MustCall(t, "audit_trail", map[string]any{"entity_type": "job", "entity_id": created.ID}))
	actions := make([]string, 0, len(trail.Entries))
	for _, e := range trail.Entries {
		actions = append(actions, e.Action)
		require.NotNil(t, e.PerformedBy)
		assert.Equal(t, clerk.ID, *e.PerformedBy)
	}
	assert.Equal(t, []string{"job_created", "job_initialized", "document_confirmed", "document_confirmed", "stage_advanced"}, actions)
}

func TestServer_EditGrantCycle(t *testing.T) {
	ts := testserver.New(t)
	ts.AddActor(t, clerk)
	clerkClient := ts.ConnectAs(t, clerk)
	managerClient := ts.ConnectAs(t, manager)

	created := decode[jobView](t, clerkClient.MustCall(t, "create_job", map[string]any{"trade": "IM", "year": 25}))
	ref := map[string]any{"entity_type": "job", "entity_id": created.ID}
	edit := map[string]any{"entity_type": "job", "entity_id": created.ID, "changes": map[string]string{"origin": "Rotterdam"}}

	_, apiErr := clerkClient.Call(t, "apply_edit", edit)
	require.NotNil(t, apiErr)
	assert.Equal(t, editgrant.ErrNoGrant.Code, apiErr.Code)

	requested := decode[struct {
		State string `json:"state"`
	}](t, clerkClient.MustCall(t, "request_edit", ref))
	assert.Equal(t, "REQUESTED", requested.State)

	_, apiErr = clerkClient.Call(t, "approve_edit", ref)
	require.NotNil(t, apiErr)
	assert.Equal(t, apperr.KindPermission, apiErr.Kind)

	approved := decode[struct {
		State string `json:"state"`
	}](t, managerClient.MustCall(t, "approve_edit", ref))
	assert.Equal(t, "APPROVED", approved.State)

	_, apiErr = managerClient.Call(t, "apply_edit", edit)
	require.NotNil(t, apiErr)
	assert.Equal(t, editgrant.ErrWrongActor.Code, apiErr.Code)

	applied := decode[struct {
		Entity jobView `json:"entity"`
	}](t, clerkClient.MustCall(t, "apply_edit", edit))
	assert.Equal(t, "Rotterdam", applied.Entity.Fields.Origin)

	_, apiErr = clerkClient.Call(t, "apply_edit", edit)
	require.NotNil(t, apiErr)
	assert.Equal(t, editgrant.ErrGrantUsed.Code, apiErr.Code)

	var events []notify.Event
	for _, msg := range ts.Outbox.Messages() {
		events = append(events, msg.Event)
	}
	assert.Equal(t, []notify.Event{notify.EventEditRequested, notify.EventEditApproved}, events)
	messages := ts.Outbox.Messages()
	assert.Equal(t, testserver.ApproverEmail, messages[0].Recipient)
	assert.Equal(t, clerk.Email, messages[1].Recipient)
}

func TestServer_QuoteApprovalOverMCP(t *testing.T) {
	ts := testserver.New(t)
	clerkClient := ts.ConnectAs(t, clerk)
	managerClient := ts.ConnectAs(t, manager)

	q := decode[struct {
		ID string `json:"id"`
	}](t, clerkClient.MustCall(t, "create_quote", map[string]any{
		"mode":     "air",
		"trade":    "EX",
		"year":     25,
		"fields":   map[string]any{"client_name": "Acme"},
		"amount":   "1250",
		"currency": "usd",
	}))
	assert.Equal(t, "Q-AIR-EX-25-00001", q.ID)

	approved := decode[struct {
		Quote struct {
			Status string `json:"status"`
			JobID  string `json:"job_id"`
		} `json:"quote"`
		Job jobView `json:"job"`
	}](t, managerClient.MustCall(t, "approve_quote", map[string]any{"quote_id": q.ID}))
	assert.Equal(t, "approved", approved.Quote.Status)
	assert.Equal(t, "AIR-EX-25-00001", approved.Job.ID)
	assert.Equal(t, approved.Job.ID, approved.Quote.JobID)
	assert.Equal(t, "Acme", approved.Job.Fields.ClientName)

	_, apiErr := managerClient.Call(t, "delete_job", map[string]any{"job_id": approved.Job.ID})
	require.NotNil(t, apiErr)
	assert.Equal(t, apperr.KindPermission, apiErr.Kind)

	adminClient := ts.ConnectAs(t, admin)
	adminClient.MustCall(t, "delete_job", map[string]any{"job_id": approved.Job.ID})
	_, apiErr = clerkClient.Call(t, "get_job", map[string]any{"job_id": approved.Job.ID})
	require.NotNil(t, apiErr)
	assert.Equal(t, apperr.KindNotFound, apiErr.Kind)
}

func TestServer_ConcurrentCreatesOverMCP(t *testing.T) {
	ts := testserver.New(t)
	client := ts.ConnectAs(t, clerk)

	const workers = 10
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data := client.MustCall(t, "allocate_job_identifier", map[string]any{"mode": "ROAD", "trade": "CT", "year": 25})
			ids[i] = decode[struct {
				Identifier string `json:"identifier"`
			}](t, data).Identifier
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, workers)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate identifier %s", id)
		seen[id] = true
	}
	assert.True(t, seen["ROAD-CT-25-00010"])
}

func TestServer_HTTPAuthentication(t *testing.T) {
	ts := testserver.New(t)
	token := ts.AddActor(t, clerk)

	_, err := ts.ConnectHTTP(t, "fl_not-a-key")
	require.Error(t, err)

	client, err := ts.ConnectHTTP(t, token)
	require.NoError(t, err)

	created := decode[jobView](t, client.MustCall(t, "create_job", map[string]any{"mode": "RAIL", "trade": "IM", "year": 25}))
	assert.Equal(t, "RAIL-IM-25-00001", created.ID)

	activity := decode[struct {
		Entries []struct {
			EntityID string `json:"entity_id"`
		} `json:"entries"`
	}](t, client.MustCall(t, "actor_activity", map[string]any{}))
	require.NotEmpty(t, activity.Entries)
	assert.Equal(t, created.ID, activity.Entries[0].EntityID)
}
