package router

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/tallysync/backend/internal/infrastructure/auth"
	"github.com/tallysync/backend/internal/infrastructure/logger"
	"github.com/tallysync/backend/internal/interfaces/http/handler"
	"github.com/tallysync/backend/internal/interfaces/http/middleware"
)

// maxBodyBytes bounds request bodies; no endpoint takes a large upload
const maxBodyBytes = 1 << 20

// Observability toggles the telemetry middleware
type Observability struct {
	ServiceName string
	Tracing     bool
	Profiling   bool
	Meter       metric.Meter // nil disables HTTP metrics
}

// APIConfig wires the API server
type APIConfig struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	Verifier       auth.TokenVerifier
	Health         *handler.HealthHandler
	Admin          *handler.AdminHandler
	Sync           *handler.SyncHandler
	Observability  Observability
}

// NewAPIEngine builds the API server engine
func NewAPIEngine(cfg APIConfig) *gin.Engine {
	engine := gin.New()
	useCommon(engine, cfg.Logger, cfg.Observability)
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig(cfg.AllowedOrigins)))

	bearer := middleware.BearerAuth(cfg.Verifier)

	engine.GET("/api/health", cfg.Health.Health)
	engine.GET("/api/health/db", cfg.Health.Database)

	engine.GET("/me-admin", bearer, cfg.Admin.Me)
	engine.POST("/login-admin", bearer, cfg.Admin.Login)
	engine.GET("/admins/:id", cfg.Admin.Get)

	syncGroup := NewDomainGroup("/sync").Use(bearer).
		GET("/status", cfg.Sync.Status).
		GET("/tally/ping", cfg.Sync.Ping).
		POST("/:kind", cfg.Sync.Run)

	Mount(engine.Group(APIPrefix), syncGroup)
	return engine
}

// BridgeConfig wires the bridge server
type BridgeConfig struct {
	Logger        *zap.Logger
	APIKey        string
	Bridge        *handler.BridgeHandler
	Observability Observability
}

// NewBridgeEngine builds the bridge server engine
func NewBridgeEngine(cfg BridgeConfig) *gin.Engine {
	engine := gin.New()
	useCommon(engine, cfg.Logger, cfg.Observability)
	engine.Use(middleware.CORSWithConfig(middleware.WildcardCORSConfig()))

	apiKey := middleware.APIKey(cfg.APIKey)

	engine.GET("/health", cfg.Bridge.Health)
	engine.GET("/test-tally", apiKey, cfg.Bridge.TestTally)

	tallyGroup := engine.Group("/api/tally", apiKey)
	tallyGroup.POST("/customers", cfg.Bridge.Customers)
	tallyGroup.POST("/items", cfg.Bridge.Items)
	return engine
}

func useCommon(engine *gin.Engine, log *zap.Logger, obs Observability) {
	if log == nil {
		log = zap.NewNop()
	}
	engine.Use(
		middleware.RequestID(),
		middleware.Tracing(obs.ServiceName, obs.Tracing),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.HTTPMetrics(obs.Meter),
		middleware.Profiling(obs.Profiling),
		middleware.BodyLimit(maxBodyBytes),
	)
}
