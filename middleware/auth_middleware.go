package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/princinho/storecatalog/utils"
)

// Context keys set by AuthMiddleware.
const (
	KeyUserID  = "userID"
	KeyEmail   = "email"
	KeyRole    = "role"
	KeyStoreID = "storeID"
)

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims, err := utils.ValidateToken(tokenStr, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		if claims.StoreID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is not attached to a store"})
			return
		}

		c.Set(KeyUserID, claims.UserID)
		c.Set(KeyEmail, claims.Email)
		c.Set(KeyRole, claims.Role)
		c.Set(KeyStoreID, claims.StoreID)
		c.Next()
	}
}

// StoreID is the store of the authenticated caller, or "" outside the
// authenticated group.
func StoreID(c *gin.Context) string {
	return c.GetString(KeyStoreID)
}
