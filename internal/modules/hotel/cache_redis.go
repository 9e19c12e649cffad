package hotel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "concierge:hotels:"

// RedisCache shares search results between API replicas. Values are whole JSON
// documents written with SET ... EX, so concurrent writers replace rather than merge.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]RawOffer, bool, error) {
	data, err := c.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var offers []RawOffer
	if err := json.Unmarshal(data, &offers); err != nil {
		// a corrupt entry is treated as a miss and overwritten by the next search
		return nil, false, nil
	}
	return offers, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, offers []RawOffer) error {
	data, err := json.Marshal(offers)
	if err != nil {
		return fmt.Errorf("marshal offers: %w", err)
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
