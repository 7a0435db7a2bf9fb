package bootstrap

import (
	"go.uber.org/zap"

	"github.com/tallysync/backend/internal/infrastructure/config"
	"github.com/tallysync/backend/internal/infrastructure/logger"
	"github.com/tallysync/backend/internal/infrastructure/persistence"
	"github.com/tallysync/backend/internal/infrastructure/telemetry"
)

// OpenDatabase connects to the configured database with zap logging and,
// when enabled, otelgorm tracing. Tables are auto-migrated on request.
func OpenDatabase(cfg *config.Config, log *zap.Logger) (*persistence.Database, error) {
	opts := []persistence.Option{
		persistence.WithLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))),
	}
	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:    cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		DBSystem:   cfg.Database.Driver,
		LogFullSQL: cfg.Telemetry.DBLogFullSQL,
	})
	if plugin != nil {
		opts = append(opts, persistence.WithPlugins(plugin))
	}

	db, err := persistence.NewDatabase(&cfg.Database, opts...)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		log.Info("Database tables auto-migrated", zap.String("driver", cfg.Database.Driver))
	}
	return db, nil
}
