package query

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// cacheTTL bounds how long a read-through entry survives. Query results are
// derived from in-memory projection state that changes as the projection
// engine applies new events, so the TTL is short: a cache hit may be a few
// seconds stale, never minutes.
const cacheTTL = 10 * time.Second

// readThrough fetches key from redis, unmarshalling into dst on a hit. A
// miss or any redis error falls through to load, whose result is written
// back to redis (best-effort) and returned. Mirrors the cache pattern in
// the public-api-service SDK handler: redis errors degrade to the
// uncached path rather than failing the request.
func readThrough[T any](ctx context.Context, rdb *redis.Client, log *zap.Logger, key string, load func() (T, bool)) (T, bool) {
	var zero T
	if rdb != nil {
		raw, err := rdb.Get(ctx, key).Result()
		if err == nil {
			var cached T
			if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
				return cached, true
			}
		} else if err != redis.Nil {
			log.Warn("redis GET failed, falling through to projection state", zap.String("key", key), zap.Error(err))
		}
	}

	value, ok := load()
	if !ok {
		return zero, false
	}
	if rdb != nil {
		if encoded, err := json.Marshal(value); err == nil {
			if err := rdb.Set(ctx, key, encoded, cacheTTL).Err(); err != nil {
				log.Warn("redis SET failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
	return value, true
}
