package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"easyrent/internal/domain"
)

type fakeRedis struct {
	data map[string]string
	ttls map[string]time.Duration
	fail error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.fail != nil {
		return redis.NewStringResult("", f.fail)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	default:
		f.data[key] = fmt.Sprint(v)
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) SetNX(_ context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := f.data[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.data[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeRedis) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	if f.fail != nil {
		return redis.NewIntResult(0, f.fail)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := newFakeRedis()
	store := NewRedisStore(client, 2*time.Hour, 30*time.Second)

	if _, err := store.Load(ctx, "missing"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	s := &Session{ID: "abc", UserID: 1, State: StateCaptchaPending, Captcha: "X1Y2Z3"}
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	if client.ttls["booking:session:abc"] != 2*time.Hour {
		t.Fatalf("ttl not applied: %v", client.ttls)
	}
	got, err := store.Load(ctx, "abc")
	if err != nil || got.Captcha != "X1Y2Z3" || got.State != StateCaptchaPending {
		t.Fatalf("load: %+v %v", got, err)
	}

	if busy, _ := store.SubmitInFlight(ctx, "abc"); busy {
		t.Fatalf("no submit should be in flight yet")
	}
	ok, _ := store.AcquireSubmitLock(ctx, "abc")
	again, _ := store.AcquireSubmitLock(ctx, "abc")
	if !ok || again {
		t.Fatalf("lock semantics: first=%v second=%v", ok, again)
	}
	if busy, _ := store.SubmitInFlight(ctx, "abc"); !busy {
		t.Fatalf("held lock not reported as in flight")
	}
	if err := store.ReleaseSubmitLock(ctx, "abc"); err != nil {
		t.Fatalf("release: %v", err)
	}
	if busy, _ := store.SubmitInFlight(ctx, "abc"); busy {
		t.Fatalf("released lock still reported as in flight")
	}
	if ok, _ := store.AcquireSubmitLock(ctx, "abc"); !ok {
		t.Fatalf("lock not released")
	}

	if err := store.Delete(ctx, "abc"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(client.data) != 0 {
		t.Fatalf("keys left behind: %v", client.data)
	}

	client.fail = errors.New("connection refused")
	if _, err := store.Load(ctx, "abc"); !domain.IsPersistence(err) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}
