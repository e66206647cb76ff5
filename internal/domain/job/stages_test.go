package job_test

import (
	"testing"
	"time"

	"github.com/rpggio/freightline/internal/apperr"
	"github.com/rpggio/freightline/internal/domain/job"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC)

func initialized(t *testing.T, docs ...string) *job.Job {
	t.Helper()
	j := &job.Job{ID: "SEA-EX-25-00001", Status: job.StatusNew}
	require.NoError(t, job.Initialize(j, docs, t0))
	return j
}

func TestInitialize(t *testing.T) {
	j := initialized(t, "Invoice", " Packing List ", "Invoice")

	assert.Equal(t, job.StatusActive, j.Status)
	assert.Equal(t, 2, j.CurrentStage)
	require.Len(t, j.Stages, job.FinalStage)
	assert.True(t, j.Stages[0].Completed)
	assert.Equal(t, "Job Created", j.Stages[0].Name)
	for _, s := range j.Stages[1:] {
		assert.False(t, s.Completed, s.Name)
	}
	assert.Equal(t, "Delivered", j.Stages[9].Name)

	require.Len(t, j.Documents, 2)
	assert.Equal(t, "Packing List", j.Documents[1].Name)
	assert.False(t, j.Documents[0].Confirmed)

	err := job.Initialize(&job.Job{}, []string{"Invoice", "  "}, t0)
	require.ErrorIs(t, err, job.ErrInvalidDocument)
}

func TestAdvance_GateBlocksUntilDocumentsSatisfied(t *testing.T) {
	j := initialized(t, "Invoice", "Packing List")

	_, err := job.ConfirmDocument(j, "Invoice", nil, t0)
	require.NoError(t, err)
	assert.False(t, job.CanAdvance(j))

	_, err = job.Advance(j, t0)
	var gate *job.GateError
	require.ErrorAs(t, err, &gate)
	assert.Equal(t, []string{"Packing List"}, gate.Unsatisfied)
	assert.Equal(t, 2, gate.CurrentStage)
	require.ErrorIs(t, err, job.ErrGateUnmet)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, 2, j.CurrentStage)

	j.Documents[1].IsCompleted = true
	assert.True(t, job.CanAdvance(j))

	advanced, err := job.Advance(j, t0)
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.Equal(t, 3, j.CurrentStage)
	assert.True(t, j.Stages[1].Completed)
}

func TestAdvance_ToFinalStageCompletesJob(t *testing.T) {
	j := initialized(t)

	for want := 3; want <= job.FinalStage; want++ {
		advanced, err := job.Advance(j, t0)
		require.NoError(t, err)
		require.True(t, advanced)
		require.Equal(t, want, j.CurrentStage)
	}

	assert.Equal(t, job.StatusCompleted, j.Status)
	for _, s := range j.Stages {
		assert.True(t, s.Completed, s.Name)
	}
	assert.False(t, job.CanAdvance(j))

	advanced, err := job.Advance(j, t0)
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, job.FinalStage, j.CurrentStage)
}

func TestAdvance_RequiresInitialization(t *testing.T) {
	_, err := job.Advance(&job.Job{Status: job.StatusNew}, t0)
	require.ErrorIs(t, err, job.ErrNotInitialized)
}

func TestConfirmDocument(t *testing.T) {
	j := initialized(t, "Invoice")
	actor := "clerk-1"

	doc, err := job.ConfirmDocument(j, "Invoice", &actor, t0)
	require.NoError(t, err)
	assert.True(t, doc.Confirmed)
	require.NotNil(t, doc.ConfirmedAt)
	assert.Equal(t, &actor, doc.ConfirmedBy)

	later := t0.Add(time.Hour)
	again, err := job.ConfirmDocument(j, "Invoice", nil, later)
	require.NoError(t, err)
	assert.Equal(t, t0, *again.ConfirmedAt, "first confirmation is kept")

	added, err := job.ConfirmDocument(j, "Insurance Certificate", nil, t0)
	require.NoError(t, err)
	assert.True(t, added.Confirmed)
	assert.Len(t, j.Documents, 2)
	assert.Equal(t, 2, j.CurrentStage, "confirmation never advances")

	_, err = job.ConfirmDocument(j, " ", nil, t0)
	require.ErrorIs(t, err, job.ErrInvalidDocument)
}

func TestDocument_Satisfied(t *testing.T) {
	assert.False(t, job.Document{}.Satisfied())
	assert.True(t, job.Document{Confirmed: true}.Satisfied())
	assert.True(t, job.Document{IsCompleted: true}.Satisfied())
}
