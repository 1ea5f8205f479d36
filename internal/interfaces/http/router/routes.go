package router

import (
	"github.com/farmadist/backend/internal/infrastructure/config"
	"github.com/farmadist/backend/internal/infrastructure/logger"
	"github.com/farmadist/backend/internal/infrastructure/telemetry"
	"github.com/farmadist/backend/internal/interfaces/http/handler"
	"github.com/farmadist/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers are the API handlers mounted by New
type Handlers struct {
	SupplyOrders *handler.SupplyOrderHandler
	Sales        *handler.SaleHandler
	Inventory    *handler.InventoryHandler
	// Audit is nil when the audit trail is not persisted
	Audit  *handler.AuditHandler
	Health *handler.HealthHandler
}

// Options carry the cross-cutting dependencies of the engine
type Options struct {
	Config        *config.Config
	Logger        *zap.Logger
	Actor         middleware.ActorConfig
	Idempotency   middleware.IdempotencyConfig
	MeterProvider *telemetry.MeterProvider
}

// New builds the gin engine: global middleware, /health, and the /api/v1 routes.
//
// Global chain order matters: the request id must exist before the request logger,
// and the actor must be resolved before idempotency keys are scoped by it.
func New(h Handlers, opts Options) *gin.Engine {
	cfg := opts.Config
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Invalid trusted proxies, trusting none", zap.Error(err))
			_ = engine.SetTrustedProxies(nil)
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.HTTP.CORSAllowOrigins) > 0 {
		cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	}
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.IsProduction()

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		}),
		logger.GinMiddleware(log),
		middleware.HTTPMetrics(opts.MeterProvider),
		middleware.SecureWithConfig(security),
		middleware.CORSWithConfig(cors),
		middleware.BodyLimit(cfg.HTTP.MaxBodySize),
	)

	engine.GET("/health", h.Health.Health)

	actor := opts.Actor
	if actor.Logger == nil {
		actor.Logger = log
	}
	idempotency := opts.Idempotency
	if idempotency.Logger == nil {
		idempotency.Logger = log
	}

	r := NewRouter(engine, WithMiddleware(
		middleware.Actor(actor),
		middleware.SpanEnricher(),
		middleware.Idempotency(idempotency),
	))
	for _, group := range apiGroups(h) {
		r.Register(group)
	}
	r.Setup()

	return engine
}

func apiGroups(h Handlers) []*DomainGroup {
	groups := []*DomainGroup{
		NewDomainGroup("supply-orders", "/supply-orders").
			POST("", h.SupplyOrders.Create).
			GET("", h.SupplyOrders.List).
			GET("/:id", h.SupplyOrders.GetByID).
			PUT("/:id/status", h.SupplyOrders.AdvanceStatus),
		NewDomainGroup("sales", "/sales").
			POST("", h.Sales.Register).
			GET("", h.Sales.List).
			GET("/:id", h.Sales.GetByID),
		NewDomainGroup("inventory", "/inventory").
			POST("/products/:id/adjust", h.Inventory.Adjust).
			GET("/alerts/low-stock", h.Inventory.LowStock).
			GET("/alerts/expiring", h.Inventory.Expiring),
	}
	if h.Audit != nil {
		groups = append(groups, NewDomainGroup("audit", "/audit-events").GET("", h.Audit.List))
	}
	return groups
}
