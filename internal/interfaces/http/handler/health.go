package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tallysync/backend/internal/infrastructure/logger"
)

// Pinger checks that the database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and database checks the portal polls
type HealthHandler struct {
	BaseHandler
	db          Pinger
	environment string
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger, environment string) *HealthHandler {
	return &HealthHandler{db: db, environment: environment}
}

// Health godoc
// @ID           getHealth
// @Summary      Liveness check
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]any
// @Router       /api/health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "OK",
		"message":     "Backend is running successfully",
		"timestamp":   time.Now().UTC().Format(time.RFC3339Nano),
		"environment": h.environment,
	})
}

// Database godoc
// @ID           getHealthDB
// @Summary      Database connectivity check
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]any
// @Failure      500 {object} map[string]any
// @Router       /api/health/db [get]
func (h *HealthHandler) Database(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		logger.GetGinLogger(c).Error("Database health check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":   "ERROR",
			"database": "Connection failed",
			"error":    err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "OK",
		"database": "Connected successfully",
		"test":     1,
	})
}
