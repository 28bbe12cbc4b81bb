package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicIdentity tags the current New Relic transaction with the caller identity.
// It must run after nrgin.Middleware and Identity; without a transaction it is a no-op.
func NewRelicIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		if id, ok := IdentityFrom(c); ok {
			txn.AddAttribute("user_id", id.UserID)
			txn.AddAttribute("user_role", string(id.Role))
		}
		if requestID := c.GetString(requestIDKey); requestID != "" {
			txn.AddAttribute("request_id", requestID)
		}

		c.Next()

		// Record error if present.
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
	}
}
