package middleware

import (
	"net/http"
	"strings"

	"github.com/AtRiskMedia/sunset-go/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

// OperatorAuthMiddleware guards the admin surface. It validates the bearer
// token against the site's JWT secret and exposes the operator ID to
// downstream handlers.
func OperatorAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		siteCtx, exists := GetSiteContext(c)
		if !exists {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "site context not found"})
			c.Abort()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Websocket clients cannot set headers from the browser API
			authHeader = "Bearer " + c.Query("token")
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" || tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			c.Abort()
			return
		}

		claims, err := security.ValidateJWT(tokenString, siteCtx.Config.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		operatorID, ok := security.OperatorIDFromClaims(claims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		c.Set("operatorId", operatorID)
		c.Next()
	}
}

// GetOperatorID retrieves the authenticated operator ID from gin context.
func GetOperatorID(c *gin.Context) (string, bool) {
	operatorID, exists := c.Get("operatorId")
	if !exists {
		return "", false
	}
	id, ok := operatorID.(string)
	return id, ok
}
