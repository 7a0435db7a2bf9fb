package handler

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tallysync/backend/internal/infrastructure/logger"
	"github.com/tallysync/backend/internal/infrastructure/tally"
)

// BridgePingTimeout bounds the /test-tally company request
const BridgePingTimeout = 10 * time.Second

// Relayer forwards export requests to the local Tally instance
type Relayer interface {
	Relay(ctx context.Context, kind tally.Kind) ([]byte, error)
	Ping(ctx context.Context) (*tally.PingResult, error)
	Company() string
}

// BridgeHandler exposes a Tally instance that is only reachable from the
// machine it runs on. Bodies keep the shapes BridgeClient parses.
type BridgeHandler struct {
	tally Relayer
}

// NewBridgeHandler creates a new BridgeHandler
func NewBridgeHandler(tally Relayer) *BridgeHandler {
	return &BridgeHandler{tally: tally}
}

// Health reports the bridge is up. It does not contact Tally.
func (h *BridgeHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"service":        "tally-bridge",
		"tallyConnected": true,
		"company":        h.tally.Company(),
		"timestamp":      time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// TestTally sends a company request to Tally
func (h *BridgeHandler) TestTally(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), BridgePingTimeout)
	defer cancel()

	result, err := h.tally.Ping(ctx)
	if err != nil {
		logger.GetGinLogger(c).Error("Tally connection test failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to connect to Tally",
			"details": err.Error(),
			"code":    errorCode(err),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Tally connection successful",
		"status":     result.Status,
		"dataLength": result.DataLength,
	})
}

// Customers relays the ledger export
func (h *BridgeHandler) Customers(c *gin.Context) {
	h.relay(c, tally.KindCustomers)
}

// Items relays the stock item export
func (h *BridgeHandler) Items(c *gin.Context) {
	h.relay(c, tally.KindItems)
}

func (h *BridgeHandler) relay(c *gin.Context, kind tally.Kind) {
	log := logger.GetGinLogger(c).With(zap.String("kind", string(kind)))
	log.Info("Bridge: fetching export from Tally")

	data, err := h.tally.Relay(c.Request.Context(), kind)
	if err != nil {
		log.Error("Bridge: export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to fetch from Tally",
			"details": err.Error(),
			"code":    errorCode(err),
		})
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Empty response from Tally"})
		return
	}

	log.Info("Bridge: export relayed", zap.Int("bytes", len(data)))
	c.Data(http.StatusOK, "application/xml", data)
}

func errorCode(err error) string {
	return tally.ClassifyError(err).Code()
}
