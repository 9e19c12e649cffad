// README: Bearer-token auth middleware backed by infra.TokenVerifier (Firebase in production).
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"concierge/internal/infra"
)

const (
	ctxKeyUID   = "auth.uid"
	ctxKeyEmail = "auth.email"
)

// Auth verifies the Authorization bearer token and stores the caller uid on the context.
// A nil verifier disables authentication; handlers then see an empty CallerUID.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		id, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ctxKeyUID, id.UID)
		c.Set(ctxKeyEmail, id.Email)
		c.Next()
	}
}

// CallerUID returns the authenticated uid, or "" when auth is disabled.
func CallerUID(c *gin.Context) string {
	return c.GetString(ctxKeyUID)
}

func CallerEmail(c *gin.Context) string {
	return c.GetString(ctxKeyEmail)
}
