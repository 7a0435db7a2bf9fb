package bootstrap

import (
	"errors"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"

	syncapp "github.com/tallysync/backend/internal/application/sync"
	"github.com/tallysync/backend/internal/infrastructure/cache"
	"github.com/tallysync/backend/internal/infrastructure/capture"
	"github.com/tallysync/backend/internal/infrastructure/config"
	"github.com/tallysync/backend/internal/infrastructure/persistence"
	"github.com/tallysync/backend/internal/infrastructure/tally"
	"github.com/tallysync/backend/internal/infrastructure/telemetry"
)

// NewTallyClient returns a bridge client when a bridge URL is configured,
// otherwise a client talking to Tally directly
func NewTallyClient(cfg *config.TallyConfig, log *zap.Logger) tally.Fetcher {
	opts := []tally.ClientOption{
		tally.WithTimeouts(cfg.ExportTimeout, cfg.PingTimeout),
		tally.WithLogger(log.Named("tally")),
	}
	if cfg.UsesBridge() {
		log.Info("Fetching Tally exports through the bridge", zap.String("bridge_url", cfg.BridgeURL))
		return tally.NewBridgeClient(cfg.BridgeURL, cfg.BridgeAPIKey, cfg.Company, opts...)
	}
	return tally.NewDirectClient(cfg.URL, cfg.Company, opts...)
}

// SyncDeps are the pieces a sync Service is assembled from
type SyncDeps struct {
	Config *config.Config
	DB     *persistence.Database // may be nil for a dry run
	Logger *zap.Logger
	Meter  metric.Meter // nil disables sync metrics
	DryRun bool
}

// NewSyncService wires the sync Service with its repositories, capture sink,
// status store and metrics
func NewSyncService(deps SyncDeps) (*syncapp.Service, error) {
	cfg := deps.Config
	log := deps.Logger

	var db *gorm.DB
	switch {
	case deps.DB != nil:
		db = deps.DB.DB
	case !deps.DryRun:
		return nil, errors.New("a database is required unless running dry")
	}

	sink, err := capture.NewSink(&cfg.Capture, &cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewStatusStoreFactory(cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		return nil, err
	}

	opts := []syncapp.Option{
		syncapp.WithCapture(sink),
		syncapp.WithStatusStore(store),
		syncapp.WithLogger(log.Named("sync")),
		syncapp.WithCompany(cfg.Tally.Company),
		syncapp.WithDryRun(deps.DryRun),
	}
	if deps.Meter != nil {
		metrics, err := telemetry.NewSyncMetrics(deps.Meter)
		if err != nil {
			return nil, err
		}
		opts = append(opts, syncapp.WithMetrics(metrics))
	}

	return syncapp.NewService(
		NewTallyClient(&cfg.Tally, log),
		persistence.NewGormCustomerRepository(db),
		persistence.NewGormStockItemRepository(db),
		opts...,
	), nil
}
