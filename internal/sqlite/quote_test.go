package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/freightline/internal/domain/job"
	"github.com/rpggio/freightline/internal/domain/quote"
	"github.com/rpggio/freightline/internal/domain/sequence"
	"github.com/rpggio/freightline/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteRepository_RoundTrip(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewQuoteRepository(db)

	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	q := &quote.Quote{
		ID:     "Q-SEA-EX-25-00001",
		Mode:   sequence.ModeSea,
		Trade:  sequence.TradeExport,
		Status: quote.StatusDraft,
		Fields: quote.Fields{
			Fields:   job.Fields{ClientName: "Globex", Origin: "Rotterdam"},
			Amount:   "1250.00",
			Currency: "EUR",
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.Create(ctx, q))

	got, err := repo.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, q.Fields, got.Fields)
	assert.Nil(t, got.JobID)

	jobID := "SEA-EX-25-00001"
	got.Status = quote.StatusApproved
	got.JobID = &jobID
	got.Version = 2
	require.NoError(t, repo.Update(ctx, got, 1))
	require.ErrorIs(t, repo.Update(ctx, got, 1), repository.ErrConflict)

	got, err = repo.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, quote.StatusApproved, got.Status)
	require.NotNil(t, got.JobID)
	assert.Equal(t, jobID, *got.JobID)

	_, err = repo.Get(ctx, "Q-SEA-EX-25-00404")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.ErrorIs(t, repo.UpdateGrant(ctx, "Q-SEA-EX-25-00404", nil, 1), repository.ErrNotFound)
}
