package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tallysync/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// BodyLimit rejects requests whose declared length exceeds limit with 413.
// Bodies of unknown length are capped while the handler reads them.
// A non-positive limit disables the check.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		if declared := c.Request.ContentLength; declared > limit {
			logger.GetGinLogger(c).Warn("Request body over limit",
				zap.String("path", c.Request.URL.Path),
				zap.Int64("content_length", declared),
				zap.Int64("limit", limit),
			)
			c.Header("Connection", "close")
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Request body too large"})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
