package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"gastobot/internal/database"
)

func TestUserRepository(t *testing.T) {
	pool := database.TestDB(t)
	database.CleanupTables(t, pool)
	repo := NewUserRepository(pool)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		user, err := repo.Create(ctx, "tg-100")
		require.NoError(t, err)
		require.NotZero(t, user.ID)
		require.Equal(t, "tg-100", user.TelegramID)
		require.False(t, user.CreatedAt.IsZero())

		got, err := repo.GetByTelegramID(ctx, "tg-100")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("get unknown user returns nil", func(t *testing.T) {
		got, err := repo.GetByTelegramID(ctx, "tg-unknown")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("exists", func(t *testing.T) {
		exists, err := repo.Exists(ctx, "tg-100")
		require.NoError(t, err)
		require.True(t, exists)

		exists, err = repo.Exists(ctx, "tg-unknown")
		require.NoError(t, err)
		require.False(t, exists)
	})

	t.Run("duplicate create is rejected by uniqueness constraint", func(t *testing.T) {
		_, err := repo.Create(ctx, "tg-100")
		require.Error(t, err)
	})
}
