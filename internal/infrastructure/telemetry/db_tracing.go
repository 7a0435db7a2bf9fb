package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/gorm"
)

// DBTracingConfig controls SQL span generation
type DBTracingConfig struct {
	Enabled    bool
	DBSystem   string // postgres, mysql, sqlite
	LogFullSQL bool   // include bound variables; development only
}

// NewDBTracingPlugin returns the otelgorm plugin for the config, or nil
// when database tracing is off. Pass it to persistence.WithPlugins.
func NewDBTracingPlugin(cfg DBTracingConfig) gorm.Plugin {
	if !cfg.Enabled {
		return nil
	}
	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBSystem)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	return otelgorm.NewPlugin(opts...)
}
