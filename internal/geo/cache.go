package geo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"easyrent/internal/domain/models"
	"easyrent/internal/utils"
)

// KV is the subset of redis.Cmdable the cache needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// DistanceCache memoizes driving distances in Redis. Geocoding calls pass
// straight through. Only successful lookups are stored.
type DistanceCache struct {
	Provider
	kv  KV
	ttl time.Duration
}

func NewDistanceCache(p Provider, kv KV, ttl time.Duration) *DistanceCache {
	return &DistanceCache{Provider: p, kv: kv, ttl: ttl}
}

func distanceKey(from, to models.LocationPoint) string {
	return fmt.Sprintf("geo:dist:%.5f,%.5f->%.5f,%.5f", from.Lat, from.Lng, to.Lat, to.Lng)
}

func (c *DistanceCache) DrivingDistanceKm(ctx context.Context, from, to models.LocationPoint) (float64, error) {
	key := distanceKey(from, to)

	raw, err := c.kv.Get(ctx, key).Result()
	switch {
	case err == nil:
		if km, perr := strconv.ParseFloat(raw, 64); perr == nil && km > 0 {
			return km, nil
		}
	case !errors.Is(err, redis.Nil):
		utils.LogEvent(utils.RequestIDFrom(ctx), "geo", "cache_get", "error", err)
	}

	km, err := c.Provider.DrivingDistanceKm(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if km > 0 {
		if err := c.kv.Set(ctx, key, strconv.FormatFloat(km, 'f', -1, 64), c.ttl).Err(); err != nil {
			utils.LogEvent(utils.RequestIDFrom(ctx), "geo", "cache_set", "error", err)
		}
	}
	return km, nil
}
