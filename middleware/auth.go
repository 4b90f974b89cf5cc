package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"emergency-alert-service/database"
	"emergency-alert-service/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set by AuthMiddleware.
const (
	ContextAdminKey = "admin"
	ContextTokenKey = "bearer_token"
)

// AuthMiddleware validates the bearer JWT and loads the account it names.
// The account must exist and be active; it is stored on the gin context for
// the handlers.
func AuthMiddleware(secret string, db *database.Database) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Warnf("Request without Authorization header from %s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			log.Warnf("Invalid Authorization header format from %s", c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		accountID, err := parseSubject(tokenString, key)
		if err != nil {
			log.Warnf("Token validation failed from %s: %v", c.ClientIP(), err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		account, err := db.GetAdmin(c.Request.Context(), accountID)
		if err != nil {
			log.Warnf("Unknown account %s from %s", accountID, c.ClientIP())
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}
		if !account.Active {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Account is deactivated"})
			c.Abort()
			return
		}

		c.Set(ContextAdminKey, account)
		c.Set(ContextTokenKey, tokenString)
		c.Next()
	}
}

// parseSubject validates the HMAC signature and extracts the account ID
// from the sub claim.
func parseSubject(tokenString string, key []byte) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("token has no subject")
	}
	return sub, nil
}

// RequireRoles rejects requests whose authenticated account is not one of
// the given roles. Must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *gin.Context) {
		account := AccountFromContext(c)
		if account == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		if !allowed[account.Role] {
			c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient role"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AccountFromContext returns the authenticated account, or nil when the
// request was not authenticated.
func AccountFromContext(c *gin.Context) *models.Admin {
	value, exists := c.Get(ContextAdminKey)
	if !exists {
		return nil
	}
	account, ok := value.(*models.Admin)
	if !ok {
		return nil
	}
	return account
}
