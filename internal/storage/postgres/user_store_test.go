package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"curvefund/internal/domain"
	"curvefund/internal/storage"
)

func TestUserStore_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewUserStore(pool)
	ctx := context.Background()

	created, err := store.Create(ctx, &domain.User{
		ID:            "u1",
		WalletAddress: "WalletAAA",
		Username:      "alice",
	})
	require.NoError(t, err)
	require.False(t, created.CreatedAt.IsZero())

	got, err := store.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, "WalletAAA", got.WalletAddress)

	_, err = store.Create(ctx, &domain.User{ID: "u1"})
	require.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = store.GetByID(ctx, "nonexistent")
	require.ErrorIs(t, err, storage.ErrNotFound)
}
