package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"easyrent/internal/domain"
)

// SessionStore holds transient workflow sessions. Nothing here reaches the
// relational store.
type SessionStore interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// AcquireSubmitLock reports false when a submission for the session is
	// already in flight.
	AcquireSubmitLock(ctx context.Context, id string) (bool, error)
	ReleaseSubmitLock(ctx context.Context, id string) error
	// SubmitInFlight reports whether the submit lock is currently held.
	SubmitInFlight(ctx context.Context, id string) (bool, error)
}

// RedisClient is the subset of redis.Cmdable the store uses.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisStore struct {
	Client  RedisClient
	TTL     time.Duration
	LockTTL time.Duration
}

func NewRedisStore(client RedisClient, ttl, lockTTL time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl, LockTTL: lockTTL}
}

func sessionKey(id string) string { return "booking:session:" + id }

func lockKey(id string) string { return "booking:session:" + id + ":submit" }

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	raw, err := r.Client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.NotFoundError{Resource: "booking session"}
	}
	if err != nil {
		return nil, domain.PersistenceError{Op: "load booking session", Err: err}
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, domain.PersistenceError{Op: "decode booking session", Err: err}
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return domain.PersistenceError{Op: "encode booking session", Err: err}
	}
	if err := r.Client.Set(ctx, sessionKey(s.ID), raw, r.TTL).Err(); err != nil {
		return domain.PersistenceError{Op: "save booking session", Err: err}
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.Client.Del(ctx, sessionKey(id), lockKey(id)).Err(); err != nil {
		return domain.PersistenceError{Op: "delete booking session", Err: err}
	}
	return nil
}

func (r *RedisStore) AcquireSubmitLock(ctx context.Context, id string) (bool, error) {
	ok, err := r.Client.SetNX(ctx, lockKey(id), 1, r.LockTTL).Result()
	if err != nil {
		return false, domain.PersistenceError{Op: "lock booking session", Err: err}
	}
	return ok, nil
}

func (r *RedisStore) ReleaseSubmitLock(ctx context.Context, id string) error {
	if err := r.Client.Del(ctx, lockKey(id)).Err(); err != nil {
		return domain.PersistenceError{Op: "unlock booking session", Err: err}
	}
	return nil
}

func (r *RedisStore) SubmitInFlight(ctx context.Context, id string) (bool, error) {
	n, err := r.Client.Exists(ctx, lockKey(id)).Result()
	if err != nil {
		return false, domain.PersistenceError{Op: "check booking session lock", Err: err}
	}
	return n > 0, nil
}
