package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_IDsNeverReused(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	first, err := repo.CreateItem(ctx, "Widget", 9.99)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteItem(ctx, first.ID))

	second, err := repo.CreateItem(ctx, "Gadget", 1.5)
	require.NoError(t, err)
	assert.Equal(t, first.ID+1, second.ID)

	_, err = repo.GetItem(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_CreateOrderRequiresUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.CreateOrder(ctx, 1, 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)

	u, err := repo.CreateUser(ctx, "Ann", "ann@x.com")
	require.NoError(t, err)
	o, err := repo.CreateOrder(ctx, u.ID, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, o.ID)

	orders, err := repo.ListOrdersForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestMemoryRepository_RunAtomicRollsBack(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	boom := errors.New("boom")
	err := repo.RunAtomic(ctx, func(ctx context.Context) error {
		u, err := repo.CreateUser(ctx, "Ann", "ann@x.com")
		if err != nil {
			return err
		}
		if _, err := repo.CreateItem(ctx, "Widget", 9.99); err != nil {
			return err
		}
		if _, err := repo.CreateOrder(ctx, u.ID, 1, 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	users, _ := repo.ListUsers(ctx)
	items, _ := repo.ListItems(ctx)
	assert.Empty(t, users)
	assert.Empty(t, items)

	// The counters roll back with the rows.
	u, err := repo.CreateUser(ctx, "Bob", "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
}

func TestMemoryRepository_UpdateMissingLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	_, err := repo.CreateItem(ctx, "Widget", 9.99)
	require.NoError(t, err)

	_, err = repo.UpdateItem(ctx, 2, "Other", 1)
	assert.ErrorIs(t, err, ErrNotFound)

	items, _ := repo.ListItems(ctx)
	assert.Equal(t, "Widget", items[0].Name)
	assert.Equal(t, 9.99, items[0].Price)
}

func TestMemoryRepository_ConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = repo.RunAtomic(ctx, func(ctx context.Context) error {
				_, err := repo.CreateItem(ctx, "Widget", 1)
				return err
			})
		}()
	}
	wg.Wait()

	items, err := repo.ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 50)
	seen := map[int]bool{}
	for _, it := range items {
		assert.False(t, seen[it.ID])
		seen[it.ID] = true
	}
}
