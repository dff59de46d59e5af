package storage

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestMemory_SaveAndFind(t *testing.T) {
	repo := NewMemory()
	ctx := context.Background()
	id := uuid.New()

	rec := &MatchRecord{ID: id, Code: "ABC123", Status: "waiting", Winner: -1, Round: 1}
	require.NoError(t, repo.Save(ctx, rec))
	created := rec.CreatedAt
	require.False(t, created.IsZero())

	rec.Status = "active"
	rec.Round = 3
	require.NoError(t, repo.Save(ctx, rec))

	got, err := repo.Find(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "active", got.Status)
	require.Equal(t, 3, got.Round)
	require.Equal(t, created, got.CreatedAt, "creation time survives updates")
	require.False(t, got.UpdatedAt.Before(created))
}

func TestMemory_FindUnknown(t *testing.T) {
	repo := NewMemory()
	_, err := repo.Find(context.Background(), uuid.New())
	require.ErrorIs(t, err, ErrNotFound)
}
