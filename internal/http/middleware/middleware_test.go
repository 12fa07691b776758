package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"easyrent/internal/domain"
	"easyrent/internal/utils"
)

type stubResolver struct {
	err error
}

func (s stubResolver) Identify(_ context.Context, token string) (domain.Identity, error) {
	if s.err != nil {
		return domain.Identity{}, s.err
	}
	return domain.Identity{UserID: 3, TokenID: token}, nil
}

type memKV struct {
	data map[string]string
	sets int
}

func (m *memKV) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memKV) Set(ctx context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.sets++
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func init() { gin.SetMode(gin.TestMode) }

func TestRequestIDReachesContext(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	var fromCtx, fromGin string
	r.GET("/x", func(c *gin.Context) {
		fromCtx = utils.RequestIDFrom(c.Request.Context())
		fromGin = GetRequestID(c)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if fromCtx == "" || fromCtx != fromGin || w.Header().Get("X-Request-ID") != fromCtx {
		t.Fatalf("ctx=%q gin=%q header=%q", fromCtx, fromGin, w.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "client-id")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if fromGin != "client-id" {
		t.Fatalf("client id not kept: %q", fromGin)
	}
}

func TestRequireIdentity(t *testing.T) {
	cases := []struct {
		name   string
		setup  func(*http.Request)
		err    error
		status int
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, nil, http.StatusOK},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc"}) }, nil, http.StatusOK},
		{"missing", func(*http.Request) {}, nil, http.StatusUnauthorized},
		{"revoked", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"store down", func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }, domain.PersistenceError{Op: "check token"}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", RequireIdentity(stubResolver{err: tc.err}), func(c *gin.Context) {
				id := GetIdentity(c)
				if id.UserID != 3 || id.TokenID != "abc" {
					t.Errorf("identity = %+v", id)
				}
				c.Status(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tc.setup(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.status {
				t.Fatalf("status %d", w.Code)
			}
		})
	}
}

func TestIdempotencyReplaysPerUser(t *testing.T) {
	kv := &memKV{data: map[string]string{}}
	calls := 0

	newEngine := func(user int64) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			c.Set(identityKey, domain.Identity{UserID: user})
		})
		r.POST("/api/bookings", Idempotency(kv), func(c *gin.Context) {
			calls++
			c.JSON(http.StatusCreated, gin.H{"bookingId": calls})
		})
		return r
	}
	post := func(r *gin.Engine, key string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/bookings", strings.NewReader(`{}`))
		if key != "" {
			req.Header.Set("Idempotency-Key", key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	alice := newEngine(1)
	first := post(alice, "k1")
	second := post(alice, "k1")
	if calls != 1 {
		t.Fatalf("handler ran %d times", calls)
	}
	if second.Code != http.StatusCreated || second.Body.String() != first.Body.String() {
		t.Fatalf("replay = %d %s, want %d %s", second.Code, second.Body.String(), first.Code, first.Body.String())
	}
	if second.Header().Get("Idempotent-Replayed") != "true" {
		t.Fatal("replay header missing")
	}

	// Same key from another user is a different request.
	post(newEngine(2), "k1")
	if calls != 2 {
		t.Fatalf("other user's key collided, calls=%d", calls)
	}

	post(alice, "")
	post(alice, "")
	if calls != 4 {
		t.Fatalf("requests without a key must not be cached, calls=%d", calls)
	}
}

func TestIdempotencySkipsServerErrors(t *testing.T) {
	kv := &memKV{data: map[string]string{}}
	r := gin.New()
	r.POST("/x", Idempotency(kv), func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "boom"})
	})
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "k")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if kv.sets != 0 {
		t.Fatalf("5xx response was cached")
	}
}
