// Command bridge runs next to Tally and relays export requests from the API
// server to the Tally XML server, which only listens locally.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tallysync/backend/internal/bootstrap"
	"github.com/tallysync/backend/internal/infrastructure/config"
	"github.com/tallysync/backend/internal/infrastructure/tally"
	"github.com/tallysync/backend/internal/interfaces/http/handler"
	"github.com/tallysync/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()
	log, logs, err := bootstrap.NewLogger(ctx, cfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	tel, err := bootstrap.StartTelemetry(ctx, &cfg.Telemetry, logs, log)
	if err != nil {
		log.Fatal("Failed to start telemetry", zap.Error(err))
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	if cfg.Bridge.APIKey == "" {
		log.Warn("Bridge API key is not set; every Tally request will be rejected")
	}

	client := tally.NewDirectClient(cfg.Tally.URL, cfg.Tally.Company,
		tally.WithTimeouts(cfg.Tally.ExportTimeout, cfg.Tally.PingTimeout),
		tally.WithLogger(log.Named("tally")),
	)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.NewBridgeEngine(router.BridgeConfig{
		Logger: log,
		APIKey: cfg.Bridge.APIKey,
		Bridge: handler.NewBridgeHandler(client),
		Observability: router.Observability{
			ServiceName: cfg.Telemetry.ServiceName + "-bridge",
			Tracing:     cfg.Telemetry.Enabled,
			Profiling:   cfg.Telemetry.ProfilingEnabled,
			Meter:       tel.Meter(cfg.Telemetry.ServiceName + "-bridge"),
		},
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Bridge.Port,
		Handler: engine,
		// relay requests wait on Tally for up to the export timeout
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.Tally.ExportTimeout + 5*time.Second,
	}

	go func() {
		log.Info("Tally bridge starting",
			zap.String("addr", srv.Addr),
			zap.String("tally_url", cfg.Tally.URL),
			zap.String("company", cfg.Tally.Company),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start bridge", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down bridge...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Bridge forced to shutdown", zap.Error(err))
	}
}
