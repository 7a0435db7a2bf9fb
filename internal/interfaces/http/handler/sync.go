package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	syncapp "github.com/tallysync/backend/internal/application/sync"
	"github.com/tallysync/backend/internal/infrastructure/logger"
	"github.com/tallysync/backend/internal/infrastructure/tally"
)

// KindAll selects a customers run followed by an items run
const KindAll = "all"

// SyncService is the part of syncapp.Service the handler needs
type SyncService interface {
	Sync(ctx context.Context, kind tally.Kind) syncapp.Result
	SyncAll(ctx context.Context) syncapp.AllResult
	Ping(ctx context.Context) (*tally.PingResult, *syncapp.Failure)
	LastResults(ctx context.Context) (map[tally.Kind]*syncapp.Result, error)
}

// SyncHandler triggers sync runs and reports their status
type SyncHandler struct {
	BaseHandler
	sync SyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(sync SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// Run godoc
// @ID           runSync
// @Summary      Run a sync pass
// @Description  Pulls customers, items or both from Tally and inserts the
// @Description  records the database does not have yet. A run that could not
// @Description  reach Tally answers 502 with the run summary.
// @Tags         sync
// @Security     BearerAuth
// @Produce      json
// @Param        kind path string true "customers, items or all"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /api/v1/sync/{kind} [post]
func (h *SyncHandler) Run(c *gin.Context) {
	ctx := c.Request.Context()
	raw := c.Param("kind")

	if raw == KindAll {
		result := h.sync.SyncAll(ctx)
		if result.Failed() {
			failure := result.Customers.Failure
			if failure == nil {
				failure = result.Items.Failure
			}
			h.upstreamFailure(c, failure, result)
			return
		}
		h.Success(c, result)
		return
	}

	kind, err := tally.ParseKind(raw)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result := h.sync.Sync(ctx, kind)
	if result.Failed() {
		h.upstreamFailure(c, result.Failure, result)
		return
	}
	h.Success(c, result)
}

// Status godoc
// @ID           getSyncStatus
// @Summary      Last run of each kind
// @Tags         sync
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} dto.Response
// @Router       /api/v1/sync/status [get]
func (h *SyncHandler) Status(c *gin.Context) {
	results, err := h.sync.LastResults(c.Request.Context())
	if err != nil {
		logger.GetGinLogger(c).Error("Failed to read sync status", zap.Error(err))
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, results)
}

// Ping godoc
// @ID           pingTally
// @Summary      Test the connection to Tally
// @Tags         sync
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Router       /api/v1/sync/tally/ping [get]
func (h *SyncHandler) Ping(c *gin.Context) {
	result, failure := h.sync.Ping(c.Request.Context())
	if failure != nil {
		h.upstreamFailure(c, failure, failure)
		return
	}
	h.Success(c, result)
}

// upstreamFailure answers 502 carrying both the failure and the body
func (h *SyncHandler) upstreamFailure(c *gin.Context, failure *syncapp.Failure, body any) {
	logger.GetGinLogger(c).Warn("Tally unreachable",
		zap.String("cause", string(failure.Cause)),
		zap.String("code", failure.Code),
	)
	h.BadGateway(c, failure.Message, body)
}
