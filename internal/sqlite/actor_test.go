package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/freightline/internal/domain/access"
	"github.com/rpggio/freightline/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActorRepository_KeyLifecycle(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewActorRepository(db)

	token, err := GenerateKey()
	require.NoError(t, err)
	assert.NotEqual(t, token, HashKey(token))

	added, err := repo.AddKey(ctx, token, access.Actor{Name: "Mia", Email: "mia@example.com", Role: access.RoleManager})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)

	resolved, err := repo.ResolveToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, added, resolved)

	_, err = repo.ResolveToken(ctx, "wrong")
	require.ErrorIs(t, err, repository.ErrNotFound)

	found, err := repo.LookupActor(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "mia@example.com", found.Email)

	_, err = repo.LookupActor(ctx, "nobody")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.AddKey(ctx, token, access.Actor{ID: "x", Role: access.RoleViewer})
	require.ErrorIs(t, err, repository.ErrDuplicate)
}
