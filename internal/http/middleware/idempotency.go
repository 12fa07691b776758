package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"easyrent/internal/utils"
)

const (
	idempotencyHeader = "Idempotency-Key"
	idempotencyTTL    = 24 * time.Hour
)

// IdempotencyStore is the subset of redis.Cmdable replayed responses need.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type cachedResponse struct {
	StatusCode  int             `json:"status_code"`
	Body        json.RawMessage `json:"body"`
	ContentType string          `json:"content_type"`
}

type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a client retries a mutating
// request with the same Idempotency-Key. Keys are scoped to the caller, so it
// must run after RequireIdentity. Redis failures fall through to the handler.
func Idempotency(store IdempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut {
			c.Next()
			return
		}
		key := c.GetHeader(idempotencyHeader)
		if key == "" || len(key) > 128 || store == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := fmt.Sprintf("idempotency:%d:%s %s:%s", GetIdentity(c).UserID, c.Request.Method, c.FullPath(), key)

		raw, err := store.Get(ctx, cacheKey).Bytes()
		switch {
		case err == nil:
			var cached cachedResponse
			if jerr := json.Unmarshal(raw, &cached); jerr == nil {
				ct := cached.ContentType
				if ct == "" {
					ct = "application/json; charset=utf-8"
				}
				c.Header("Idempotent-Replayed", "true")
				c.Data(cached.StatusCode, ct, cached.Body)
				c.Abort()
				return
			}
		case !errors.Is(err, redis.Nil):
			utils.LogEvent(GetRequestID(c), "idempotency", "get", "error", err)
			c.Next()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w
		c.Next()

		// Server errors are not cached so the client can retry.
		status := w.Status()
		if status < 200 || status >= 500 {
			return
		}
		payload, err := json.Marshal(cachedResponse{
			StatusCode:  status,
			Body:        w.body.Bytes(),
			ContentType: w.Header().Get("Content-Type"),
		})
		if err != nil {
			return
		}
		if err := store.Set(ctx, cacheKey, payload, idempotencyTTL).Err(); err != nil {
			utils.LogEvent(GetRequestID(c), "idempotency", "set", "error", err)
		}
	}
}
