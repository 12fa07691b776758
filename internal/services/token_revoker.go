package services

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevokerClient is the subset of redis.Cmdable the revoker uses.
type RevokerClient interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisRevoker keeps revoked token ids in Redis with the token's remaining
// lifetime as TTL, so the set never outgrows the live tokens.
type RedisRevoker struct {
	Client RevokerClient
	Now    func() time.Time
}

func revokedKey(tokenID string) string { return "auth:revoked:" + tokenID }

func (r RedisRevoker) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	ttl := until.Sub(now)
	if ttl <= 0 {
		return nil
	}
	return r.Client.Set(ctx, revokedKey(tokenID), 1, ttl).Err()
}

func (r RedisRevoker) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.Client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
