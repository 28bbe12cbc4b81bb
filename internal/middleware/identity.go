package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"booking/internal/domain"
)

const (
	// HeaderUserID carries the caller's user ID, stamped by the gateway after token verification.
	HeaderUserID = "X-User-Id"
	// HeaderUserRole carries the caller's role: RIDER, DRIVER or ADMIN.
	HeaderUserRole = "X-User-Role"

	identityKey = "identity"
)

// Identity reads the trusted caller identity headers. A missing user ID is rejected with 401.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			abortWithError(c, http.StatusUnauthorized, domain.ErrMissingIdentity.Message)
			return
		}

		id := domain.Identity{
			UserID: userID,
			Role:   domain.ParseRole(c.GetHeader(HeaderUserRole)),
		}
		c.Set(identityKey, id)
		c.Set("user_id", id.UserID)

		c.Next()
	}
}

// RequireRole rejects callers whose role is not one of roles with 403.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	denied := "Access denied. Required role: " + strings.Join(names, " or ")

	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, domain.ErrMissingIdentity.Message)
			return
		}

		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, denied)
	}
}

// IdentityFrom returns the identity stored by Identity.
func IdentityFrom(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok
}

// abortWithError writes the same error body as the handlers.
func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"timestamp": time.Now().UTC(),
		"status":    status,
		"error":     http.StatusText(status),
		"message":   message,
	})
}
