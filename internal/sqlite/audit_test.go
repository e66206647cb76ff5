package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/freightline/internal/domain/audit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditRepository_AppendAndTrail(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewAuditRepository(db)

	actor := "clerk-1"
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	entries := []*audit.Entry{
		{ID: "e1", EntityType: audit.EntityJob, EntityID: "SEA-EX-25-00001", Action: audit.ActionJobCreated, Description: "created", PerformedBy: &actor, CreatedAt: at},
		{ID: "e2", EntityType: audit.EntityJob, EntityID: "SEA-EX-25-00001", Action: audit.ActionStageAdvanced, Description: "advanced", CreatedAt: at, Meta: map[string]any{"newStage": 3}},
		{ID: "e3", EntityType: audit.EntityJob, EntityID: "SEA-EX-25-00002", Action: audit.ActionJobCreated, Description: "created", PerformedBy: &actor, CreatedAt: at.Add(time.Second)},
	}
	for _, e := range entries {
		require.NoError(t, repo.Append(ctx, e))
		assert.NotZero(t, e.Seq)
	}

	trail, err := repo.ListByEntity(ctx, audit.EntityJob, "SEA-EX-25-00001")
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "e1", trail[0].ID, "same timestamp falls back to insertion order")
	assert.Equal(t, "e2", trail[1].ID)
	assert.Nil(t, trail[1].PerformedBy)
	assert.Equal(t, float64(3), trail[1].Meta["newStage"])

	empty, err := repo.ListByEntity(ctx, audit.EntityQuote, "SEA-EX-25-00001")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAuditRepository_ListByActor(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewAuditRepository(db)

	actor := "mgr-1"
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Append(ctx, &audit.Entry{
			ID:          id,
			EntityType:  audit.EntityJob,
			EntityID:    "SEA-EX-25-00001",
			Action:      audit.ActionEditApproved,
			Description: "approved",
			PerformedBy: &actor,
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := repo.ListByActor(ctx, actor, audit.ActorListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].ID)
	assert.Equal(t, "b", recent[1].ID)
}

func TestAuditRepository_EntriesAreNotReplaced(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewAuditRepository(db)

	entry := &audit.Entry{ID: "dup", EntityType: audit.EntityJob, EntityID: "x", Action: audit.ActionJobCreated, Description: "first"}
	require.NoError(t, repo.Append(ctx, entry))
	require.Error(t, repo.Append(ctx, &audit.Entry{ID: "dup", EntityType: audit.EntityJob, EntityID: "x", Action: audit.ActionJobDeleted, Description: "second"}))

	trail, err := repo.ListByEntity(ctx, audit.EntityJob, "x")
	require.NoError(t, err)
	require.Len(t, trail, 1)
	assert.Equal(t, "first", trail[0].Description)
}
