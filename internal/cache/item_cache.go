package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"fsanano/catalog/internal/model"

	"github.com/redis/go-redis/v9"
)

// ItemCache caches catalog items by id. A miss is reported with ok == false and a
// nil error.
type ItemCache interface {
	Get(ctx context.Context, id int) (item model.Item, ok bool, err error)
	Set(ctx context.Context, item model.Item) error
	Delete(ctx context.Context, id int) error
}

type RedisItemCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisItemCache(client redis.Cmdable, ttl time.Duration) *RedisItemCache {
	return &RedisItemCache{client: client, ttl: ttl}
}

func itemKey(id int) string {
	return "catalog:item:" + strconv.Itoa(id)
}

func (c *RedisItemCache) Get(ctx context.Context, id int) (model.Item, bool, error) {
	data, err := c.client.Get(ctx, itemKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Item{}, false, nil
		}
		return model.Item{}, false, fmt.Errorf("failed to read cached item: %w", err)
	}

	var it model.Item
	if err := json.Unmarshal(data, &it); err != nil {
		return model.Item{}, false, fmt.Errorf("failed to decode cached item: %w", err)
	}
	return it, true, nil
}

func (c *RedisItemCache) Set(ctx context.Context, item model.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, itemKey(item.ID), data, c.ttl).Err()
}

func (c *RedisItemCache) Delete(ctx context.Context, id int) error {
	return c.client.Del(ctx, itemKey(id)).Err()
}

// NopItemCache never stores anything; every Get is a miss.
type NopItemCache struct{}

func (NopItemCache) Get(context.Context, int) (model.Item, bool, error) { return model.Item{}, false, nil }
func (NopItemCache) Set(context.Context, model.Item) error               { return nil }
func (NopItemCache) Delete(context.Context, int) error                   { return nil }
