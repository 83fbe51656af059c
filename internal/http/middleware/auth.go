package middleware

import (
	"net/http"
	"strings"

	"articledesk/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	roleKey     = "userRole"
)

// TokenVerifier is satisfied by services.Tokens.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}

// Auth requires a valid bearer token and stores the identity on the context.
func Auth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		id, err := v.Verify(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		c.Set(identityKey, id)
		c.Set(roleKey, string(id.Role))
		c.Next()
	}
}

// RequireRoles lets the request through only for the listed roles. Auth
// must run first.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[string(r)] = struct{}{}
	}
	return func(c *gin.Context) {
		role := c.GetString(roleKey)
		if role == "" {
			abortUnauthorized(c, "role missing from context")
			return
		}
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "forbidden",
				"code":       domain.CodeForbidden,
				"message":    "role not allowed",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

// GetIdentity returns the identity Auth stored; the zero identity otherwise.
func GetIdentity(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(domain.Identity); ok {
			return id
		}
	}
	return domain.Identity{}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":      "unauthorized",
		"code":       domain.CodeUnauthorized,
		"message":    msg,
		"request_id": GetRequestID(c),
	})
}
