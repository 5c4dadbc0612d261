package service

import (
	"context"
	"errors"

	"fsanano/catalog/internal/cache"
	"fsanano/catalog/internal/logger"
	"fsanano/catalog/internal/model"
	"fsanano/catalog/internal/repository"
)

type CatalogStore interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
	GetItemForShare(ctx context.Context, id int) (model.Item, error)
	ListItems(ctx context.Context) ([]model.Item, error)
	CreateItem(ctx context.Context, name string, price float64) (model.Item, error)
	UpdateItem(ctx context.Context, id int, name string, price float64) (model.Item, error)
	DeleteItem(ctx context.Context, id int) error
}

type CatalogService struct {
	store CatalogStore
	cache cache.ItemCache
	log   *logger.Logger
}

func NewCatalogService(store CatalogStore, itemCache cache.ItemCache, log *logger.Logger) *CatalogService {
	if itemCache == nil {
		itemCache = cache.NopItemCache{}
	}
	return &CatalogService{store: store, cache: itemCache, log: log.With("service", "CatalogService")}
}

func (s *CatalogService) ListItems(ctx context.Context) ([]model.Item, error) {
	return s.store.ListItems(ctx)
}

// GetItem reads through the item cache. On a miss the row is read and cached
// under a share lock, so an update or delete of the same row commits, and clears
// the key, only after the fill.
func (s *CatalogService) GetItem(ctx context.Context, id int) (model.Item, error) {
	cached, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.log.Warn("item cache read failed", "item_id", id, "error", err)
	} else if ok {
		return cached, nil
	}

	var it model.Item
	err = s.store.RunAtomic(ctx, func(ctx context.Context) error {
		var err error
		if it, err = s.store.GetItemForShare(ctx, id); err != nil {
			return err
		}
		if err := s.cache.Set(ctx, it); err != nil {
			s.log.Warn("item cache write failed", "item_id", id, "error", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Item{}, ErrItemNotFound
		}
		return model.Item{}, err
	}
	return it, nil
}

func (s *CatalogService) CreateItem(ctx context.Context, name string, price float64) (int, error) {
	if err := validateItem(name, price); err != nil {
		return 0, err
	}

	var created model.Item
	err := s.store.RunAtomic(ctx, func(ctx context.Context) error {
		var err error
		created, err = s.store.CreateItem(ctx, name, price)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.log.Info("item created", "item_id", created.ID)
	return created.ID, nil
}

func (s *CatalogService) UpdateItem(ctx context.Context, id int, name string, price float64) (model.Item, error) {
	if err := validateItem(name, price); err != nil {
		return model.Item{}, err
	}

	var updated model.Item
	err := s.store.RunAtomic(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.store.UpdateItem(ctx, id, name, price)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Item{}, ErrItemNotFound
		}
		return model.Item{}, err
	}

	s.invalidate(ctx, id)
	return updated, nil
}

// DeleteItem removes the item even if orders still reference it.
func (s *CatalogService) DeleteItem(ctx context.Context, id int) error {
	err := s.store.RunAtomic(ctx, func(ctx context.Context) error {
		return s.store.DeleteItem(ctx, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrItemNotFound
		}
		return err
	}

	s.invalidate(ctx, id)
	s.log.Info("item deleted", "item_id", id)
	return nil
}

func (s *CatalogService) invalidate(ctx context.Context, id int) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.log.Warn("item cache invalidation failed", "item_id", id, "error", err)
	}
}

func validateItem(name string, price float64) error {
	if isFalsyString(name) || tooLong(name) || isFalsyNumber(price) || price < 0 {
		return ErrInvalidInput
	}
	return nil
}
