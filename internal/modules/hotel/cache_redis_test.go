package hotel

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestRedisCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("CONCIERGE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CONCIERGE_TEST_REDIS_ADDR not set; skipping redis integration test")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	cache := NewRedisCache(rdb, 2*time.Second)
	key := CacheKey("Kotor", "2026-03-10", 2, "EUR") + "-test"
	t.Cleanup(func() { rdb.Del(context.Background(), redisKeyPrefix+key) })

	if _, hit, err := cache.Get(ctx, key); err != nil || hit {
		t.Fatalf("expected miss, hit=%v err=%v", hit, err)
	}
	if err := cache.Set(ctx, key, sevenOffers()); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, hit, err := cache.Get(ctx, key)
	if err != nil || !hit || len(got) != 7 {
		t.Fatalf("get: hit=%v len=%d err=%v", hit, len(got), err)
	}
	ttl := rdb.TTL(ctx, redisKeyPrefix+key).Val()
	if ttl <= 0 || ttl > 2*time.Second {
		t.Errorf("unexpected ttl %v", ttl)
	}
}
