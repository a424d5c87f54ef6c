package notes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepository_DelegatesToStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := NewRepository(setupTestStore(t))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, <-list)

	id, err := repo.Save(ctx, Note{Title: "t", Body: "b", CreatedAt: 1, UpdatedAt: 1})
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "t", got.Title)
	waitForSnapshot(t, list, func(n []Note) bool { return len(n) == 1 })

	require.NoError(t, repo.Archive(ctx, id))
	waitForSnapshot(t, list, func(n []Note) bool { return len(n) == 0 })

	archived, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, archived.Archived)

	require.NoError(t, repo.Delete(ctx, archived))
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, ErrNoteNotFound)
}
