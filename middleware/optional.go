package middleware

import (
	"strings"

	"emergency-alert-service/database"

	"github.com/gin-gonic/gin"
)

// OptionalAuth resolves the account when a valid bearer token is present
// and silently continues anonymously otherwise. Used on intake routes that
// accept both identified and anonymous submissions.
func OptionalAuth(secret string, db *database.Database) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		accountID, err := parseSubject(tokenString, key)
		if err != nil {
			c.Next()
			return
		}
		account, err := db.GetAdmin(c.Request.Context(), accountID)
		if err != nil || !account.Active {
			c.Next()
			return
		}

		c.Set(ContextAdminKey, account)
		c.Set(ContextTokenKey, tokenString)
		c.Next()
	}
}
