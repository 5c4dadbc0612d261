package service

import (
	"context"
	"sync"

	"fsanano/catalog/internal/model"
	"fsanano/catalog/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockItemReader struct {
	mock.Mock
}

func (m *MockItemReader) GetItem(ctx context.Context, id int) (model.Item, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Item), args.Error(1)
}

type MockItemCache struct {
	mock.Mock
}

func (m *MockItemCache) Get(ctx context.Context, id int) (model.Item, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Item), args.Bool(1), args.Error(2)
}

func (m *MockItemCache) Set(ctx context.Context, item model.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemCache) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mapItemCache is an in-process ItemCache for tests that check what ends up cached.
type mapItemCache struct {
	mu    sync.Mutex
	items map[int]model.Item
}

func newMapItemCache() *mapItemCache {
	return &mapItemCache{items: map[int]model.Item{}}
}

func (c *mapItemCache) Get(_ context.Context, id int) (model.Item, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[id]
	return it, ok, nil
}

func (c *mapItemCache) Set(_ context.Context, item model.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
	return nil
}

func (c *mapItemCache) Delete(_ context.Context, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	return nil
}

// pausingStore stops the first GetItemForShare after the row is read until resume
// is closed.
type pausingStore struct {
	*repository.MemoryRepository
	once   sync.Once
	read   chan struct{}
	resume chan struct{}
}

func newPausingStore() *pausingStore {
	return &pausingStore{
		MemoryRepository: repository.NewMemoryRepository(),
		read:             make(chan struct{}),
		resume:           make(chan struct{}),
	}
}

func (p *pausingStore) GetItemForShare(ctx context.Context, id int) (model.Item, error) {
	it, err := p.MemoryRepository.GetItemForShare(ctx, id)
	p.once.Do(func() {
		close(p.read)
		<-p.resume
	})
	return it, err
}
