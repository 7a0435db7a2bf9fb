package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKeyHeader carries the bridge's shared key
const APIKeyHeader = "X-API-Key"

// APIKey rejects requests whose X-API-Key does not match key
func APIKey(key string) gin.HandlerFunc {
	expected := []byte(key)
	return func(c *gin.Context) {
		provided := c.GetHeader(APIKeyHeader)
		if provided == "" || len(expected) == 0 ||
			subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Unauthorized",
				"message": "Invalid or missing API key",
			})
			return
		}
		c.Next()
	}
}
