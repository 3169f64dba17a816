package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"avalia_backend/platform/logger"

	"github.com/redis/go-redis/v9"
)

const reverseKeyPrefix = "geocode:reverse:"

// RedisCache keeps reverse lookups keyed by the position's geohash, so
// marker drops inside the same cell share one upstream call.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl, log: log}
}

func (c *RedisCache) Get(ctx context.Context, at Coordinate) (Place, bool) {
	key := reverseKeyPrefix + Geohash(at)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.StorageError("get", key, err)
		}
		return Place{}, false
	}

	var place Place
	if err := json.Unmarshal(raw, &place); err != nil {
		c.log.StorageError("decode", key, err)
		return Place{}, false
	}
	return place, true
}

func (c *RedisCache) Set(ctx context.Context, at Coordinate, place Place) {
	key := reverseKeyPrefix + Geohash(at)
	raw, err := json.Marshal(place)
	if err != nil {
		c.log.StorageError("encode", key, err)
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.log.StorageError("set", key, err)
	}
}

var _ ReverseCache = (*RedisCache)(nil)
