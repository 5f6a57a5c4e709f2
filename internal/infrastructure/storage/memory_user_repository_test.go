package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"aqua-vision/internal/domain/entity"
)

func TestMemoryUserRepository_GetCreatesUser(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, user.State)
	require.Equal(t, int64(10), user.ChatID)
}

func TestMemoryUserRepository_SaveAndUpdate(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	user, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)

	// изменение копии не видно до Save
	user.SetState(entity.StateProcessing)
	stored, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, stored.State)

	require.NoError(t, repo.Save(ctx, user))
	stored, err = repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, stored.State)

	require.NoError(t, repo.UpdateState(ctx, 1, entity.StateAwaitingSample))
	stored, err = repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingSample, stored.State)

	// неизвестный пользователь игнорируется
	require.NoError(t, repo.UpdateState(ctx, 99, entity.StateProcessing))
}

func TestMemoryUserRepository_Concurrent(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := int64(0); i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			u, err := repo.Get(ctx, id%5, id)
			require.NoError(t, err)
			u.SetState(entity.StateProcessing)
			require.NoError(t, repo.Save(ctx, u))
		}(i)
	}
	wg.Wait()

	for id := int64(0); id < 5; id++ {
		u, err := repo.Get(ctx, id, 0)
		require.NoError(t, err)
		require.Equal(t, entity.StateProcessing, u.State)
	}
}
