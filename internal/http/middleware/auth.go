package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"easyrent/internal/domain"
)

const (
	identityKey = "identity"
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "easyrent_session"
)

type IdentityResolver interface {
	Identify(ctx context.Context, token string) (domain.Identity, error)
}

// RequireIdentity resolves the session token from the Authorization header
// or the session cookie and aborts with 401 when it is missing or invalid.
func RequireIdentity(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			abortUnauthorized(c, "please login first")
			return
		}
		id, err := resolver.Identify(c.Request.Context(), token)
		if err != nil {
			if domain.IsPersistence(err) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"message":    "session check unavailable",
					"code":       "session_unavailable",
					"request_id": GetRequestID(c),
				})
				return
			}
			msg := "please login first"
			var aerr domain.AuthorizationError
			if errors.As(err, &aerr) && aerr.Msg != "" {
				msg = aerr.Msg
			}
			abortUnauthorized(c, msg)
			return
		}
		c.Set(identityKey, id)
		c.Next()
	}
}

// GetIdentity returns the identity set by RequireIdentity, or an anonymous one.
func GetIdentity(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Identity{}
}

func tokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	if v, err := c.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"message":    msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
	})
}
