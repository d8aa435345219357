package middleware

import (
	"net/http"
	"strings"

	"taskboard/internal/auth"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "token"

// Context keys set by Auth for downstream handlers.
const (
	ContextUserID    = "user_id"
	ContextUserEmail = "user_email"
)

// Auth verifies the session token and attaches the caller's identity to the
// request context. The cookie wins over the Authorization header. Every
// verification failure produces the same 401 body; the reason stays
// server-side.
func Auth(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := c.Cookie(SessionCookie)
		if tokenString == "" {
			header := c.GetHeader("Authorization")
			tokenString = strings.TrimPrefix(header, "Bearer ")
			if tokenString == header {
				tokenString = ""
			}
		}

		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		identity, err := tokens.Verify(tokenString)
		if err != nil {
			AuthFailures.Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(ContextUserID, identity.UserID)
		c.Set(ContextUserEmail, identity.Email)
		c.Next()
	}
}
