// Package bootstrap builds the shared dependencies of the tallysync binaries
// from configuration.
package bootstrap

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/tallysync/backend/internal/infrastructure/config"
	"github.com/tallysync/backend/internal/infrastructure/logger"
	"github.com/tallysync/backend/internal/infrastructure/telemetry"
)

// Telemetry owns the OpenTelemetry providers and the profiler of a process
type Telemetry struct {
	Tracer   *telemetry.TracerProvider
	Meters   *telemetry.MeterProvider
	Logs     *telemetry.LoggerProvider
	Profiler *telemetry.Profiler
}

// NewLogger builds the zap logger of cfg.Log. When log export is enabled
// it also returns the OTLP provider the extra zap core writes to.
func NewLogger(ctx context.Context, cfg *config.Config) (*zap.Logger, *telemetry.LoggerProvider, error) {
	logCfg := &logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	base, err := logger.New(logCfg)
	if err != nil {
		return nil, nil, err
	}
	if !cfg.Telemetry.LogsEnabled {
		return base, nil, nil
	}

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           true,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, base)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(logCfg, telemetry.NewZapOTELCore(lp, logger.ParseLevel(cfg.Log.Level)))
	if err != nil {
		return nil, nil, err
	}
	return log, lp, nil
}

// StartTelemetry starts tracing, metrics and profiling as configured
func StartTelemetry(ctx context.Context, cfg *config.TelemetryConfig, logs *telemetry.LoggerProvider, log *zap.Logger) (*Telemetry, error) {
	t := &Telemetry{Logs: logs}

	var err error
	t.Tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Enabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		SamplingRatio:     cfg.SamplingRatio,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, log)
	if err != nil {
		return nil, err
	}

	t.Meters, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.MetricsEnabled,
		CollectorEndpoint: cfg.CollectorEndpoint,
		ExportInterval:    cfg.MetricsInterval,
		ServiceName:       cfg.ServiceName,
		Insecure:          cfg.Insecure,
	}, log)
	if err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}

	t.Profiler, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.ProfilingEnabled,
		ServerAddress:   cfg.ProfilingServer,
		ApplicationName: cfg.ServiceName,
	}, log)
	if err != nil {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}

	if cfg.SpanProfiles && t.Profiler.IsEnabled() {
		if err := t.Tracer.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to enable span profiles", zap.Error(err))
		}
	}
	return t, nil
}

// Meter returns a named meter; it is a no-op meter when metrics are off
func (t *Telemetry) Meter(name string) metric.Meter {
	if t == nil {
		return nil
	}
	return t.Meters.Meter(name)
}

// Shutdown flushes and stops every started provider
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.Profiler != nil {
		errs = append(errs, t.Profiler.Stop())
	}
	if t.Meters != nil {
		errs = append(errs, t.Meters.Shutdown(ctx))
	}
	if t.Tracer != nil {
		errs = append(errs, t.Tracer.Shutdown(ctx))
	}
	if t.Logs != nil {
		errs = append(errs, t.Logs.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
