package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "user_id"

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-User-ID")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

// IdentityMiddleware reads the caller identity from the X-User-ID header.
// The id is stored in the gin context for handlers; routes that require a
// known caller use RequireIdentity on top of this.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := strings.TrimSpace(c.GetHeader("X-User-ID")); id != "" {
			c.Set(identityKey, id)
		}
		c.Next()
	}
}

func RequireIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID(c) == "" {
			Error(c, http.StatusUnauthorized, "missing X-User-ID header", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}
