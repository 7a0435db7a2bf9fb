package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tallysync/backend/internal/infrastructure/telemetry"
)

// Profiling attaches Pyroscope labels for the route and method to the
// request. Health checks are skipped.
func Profiling(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || strings.HasPrefix(route, "/api/health") || route == "/health" {
			c.Next()
			return
		}

		labels := map[string]string{
			telemetry.ProfilingLabelRoute:  route,
			telemetry.ProfilingLabelMethod: c.Request.Method,
			telemetry.ProfilingLabelKind:   c.Param("kind"),
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
