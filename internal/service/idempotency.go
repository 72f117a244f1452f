package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisIdempotency remembers submitted idempotency keys for a fixed TTL.
type RedisIdempotency struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotency(rdb *redis.Client, ttl time.Duration) *RedisIdempotency {
	return &RedisIdempotency{rdb: rdb, ttl: ttl}
}

func idempotencyRedisKey(key string) string {
	return fmt.Sprintf("idempotent-key:%s", key)
}

// Acquire reports false when the key was already claimed.
func (g *RedisIdempotency) Acquire(ctx context.Context, key string) (bool, error) {
	return g.rdb.SetNX(ctx, idempotencyRedisKey(key), "exists", g.ttl).Result()
}

func (g *RedisIdempotency) Release(ctx context.Context, key string) error {
	return g.rdb.Del(ctx, idempotencyRedisKey(key)).Err()
}
