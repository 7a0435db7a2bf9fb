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

	identityapp "github.com/tallysync/backend/internal/application/identity"
	"github.com/tallysync/backend/internal/bootstrap"
	"github.com/tallysync/backend/internal/infrastructure/auth"
	"github.com/tallysync/backend/internal/infrastructure/config"
	"github.com/tallysync/backend/internal/infrastructure/persistence"
	"github.com/tallysync/backend/internal/interfaces/http/handler"
	"github.com/tallysync/backend/internal/interfaces/http/router"
)

//	@title			tallysync API
//	@version		1.0
//	@description	Imports customers and stock items from Tally into the portal database.

//	@host		localhost:8080
//	@BasePath	/

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Identity token. Format: "Bearer {token}"

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

	log.Info("Starting tallysync API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	tel, err := bootstrap.StartTelemetry(ctx, &cfg.Telemetry, logs, log)
	if err != nil {
		log.Fatal("Failed to start telemetry", zap.Error(err))
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	db, err := bootstrap.OpenDatabase(cfg, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected", zap.String("driver", db.Driver))

	meter := tel.Meter(cfg.Telemetry.ServiceName)

	syncService, err := bootstrap.NewSyncService(bootstrap.SyncDeps{
		Config: cfg,
		DB:     db,
		Logger: log,
		Meter:  meter,
	})
	if err != nil {
		log.Fatal("Failed to create sync service", zap.Error(err))
	}

	trigger, err := bootstrap.StartScheduledSync(ctx, &cfg.Tally, syncService, log)
	if err != nil {
		log.Fatal("Failed to start scheduled sync", zap.Error(err))
	}
	if trigger != nil {
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Tally.ExportTimeout)
			defer cancel()
			if err := trigger.Stop(stopCtx); err != nil {
				log.Error("Error stopping scheduled sync", zap.Error(err))
			}
		}()
	}

	verifier, err := auth.NewVerifier(&cfg.Identity, log)
	if err != nil {
		log.Fatal("Failed to create token verifier", zap.Error(err))
	}

	adminService := identityapp.NewAdminService(persistence.NewGormAdminRepository(db.DB), log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.NewAPIEngine(router.APIConfig{
		Logger:         log,
		AllowedOrigins: cfg.HTTP.AllowedOrigins(),
		Verifier:       verifier,
		Health:         handler.NewHealthHandler(db, cfg.App.Env),
		Admin:          handler.NewAdminHandler(adminService),
		Sync:           handler.NewSyncHandler(syncService),
		Observability: router.Observability{
			ServiceName: cfg.Telemetry.ServiceName,
			Tracing:     cfg.Telemetry.Enabled,
			Profiling:   cfg.Telemetry.ProfilingEnabled,
			Meter:       meter,
		},
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}
	serve(srv, log)
}

// serve runs srv until SIGINT or SIGTERM, then drains it
func serve(srv *http.Server, log *zap.Logger) {
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	log.Info("Server exited gracefully")
}
