package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// FeedRedisCache stores the serialized approved feed per project slug.
type FeedRedisCache struct {
	rdb        *redis.Client
	dataExpiry time.Duration
}

func (c *FeedRedisCache) GetBySlug(ctx context.Context, slug string) (string, error) {
	return c.rdb.GetEx(ctx, slug, c.dataExpiry).Result()
}

func (c *FeedRedisCache) Update(ctx context.Context, slug string, data string) error {
	return c.rdb.Set(ctx, slug, data, c.dataExpiry).Err()
}

func (c *FeedRedisCache) Invalidate(ctx context.Context, slug string) error {
	return c.rdb.Del(ctx, slug).Err()
}

func NewFeedRedisCache(rdb *redis.Client, dataExpiry time.Duration) *FeedRedisCache {
	return &FeedRedisCache{
		rdb:        rdb,
		dataExpiry: dataExpiry,
	}
}
