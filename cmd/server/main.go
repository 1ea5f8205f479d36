package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auditapp "github.com/farmadist/backend/internal/application/audit"
	inventoryapp "github.com/farmadist/backend/internal/application/inventory"
	tradeapp "github.com/farmadist/backend/internal/application/trade"
	"github.com/farmadist/backend/internal/domain/audit"
	"github.com/farmadist/backend/internal/domain/shared"
	auditsink "github.com/farmadist/backend/internal/infrastructure/audit"
	"github.com/farmadist/backend/internal/infrastructure/auth"
	"github.com/farmadist/backend/internal/infrastructure/cache"
	"github.com/farmadist/backend/internal/infrastructure/config"
	"github.com/farmadist/backend/internal/infrastructure/event"
	"github.com/farmadist/backend/internal/infrastructure/logger"
	"github.com/farmadist/backend/internal/infrastructure/persistence"
	"github.com/farmadist/backend/internal/infrastructure/telemetry"
	"github.com/farmadist/backend/internal/interfaces/http/handler"
	"github.com/farmadist/backend/internal/interfaces/http/middleware"
	"github.com/farmadist/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

// version is overridden at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logCfg := &logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	}
	log, err := logger.New(logCfg)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry providers are no-ops when disabled
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	if lp.IsEnabled() {
		// Rebuild the logger so every entry is also exported to the collector
		log, err = logger.New(logCfg, telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
			ServiceName:    cfg.Telemetry.ServiceName,
			LoggerProvider: lp,
			Level:          logger.ParseLevel(cfg.Log.Level),
		}))
		if err != nil {
			panic("Failed to initialize logger: " + err.Error())
		}
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting pharmacy distribution backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database
	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
	)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogger)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close database connection", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("driver", cfg.Database.Driver),
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.DBName),
	)

	// PostgreSQL schemas are owned by cmd/migrate; the embedded SQLite store is created here
	if db.IsSQLite() {
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Failed to migrate SQLite schema", zap.Error(err))
		}
	}

	dbSystem := "postgresql"
	if db.IsSQLite() {
		dbSystem = "sqlite"
	}
	if err := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL && !cfg.IsProduction(),
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		DBSystem:        dbSystem,
	}, log).RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}

	meter := mp.Meter("farmadist-backend")
	dbMetrics, err := telemetry.NewDBMetrics(meter, telemetry.DBMetricsConfig{
		SlowQueryThreshold: cfg.Telemetry.DBSlowQueryThresh,
	}, log)
	if err != nil {
		log.Fatal("Failed to create database metrics", zap.Error(err))
	}
	if mp.IsEnabled() {
		if err := dbMetrics.Register(db.DB); err != nil {
			log.Fatal("Failed to register database metrics", zap.Error(err))
		}
		dbMetrics.StartPoolStatsCollection(ctx)
	}
	defer dbMetrics.Stop()

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:             meter,
		Logger:            log,
		InventoryProvider: telemetry.NewGormInventoryMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to create business metrics", zap.Error(err))
	}
	if mp.IsEnabled() {
		businessMetrics.StartPeriodicCollection(ctx, cfg.Telemetry.MetricsInterval,
			cfg.Business.LowStockThreshold,
			time.Duration(cfg.Business.ExpiryWarningDays)*24*time.Hour,
		)
	}
	defer businessMetrics.Stop()

	// Audit trail
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	sink, closeSink, err := buildAuditSink(cfg.Audit, auditRepo, log)
	if err != nil {
		log.Fatal("Failed to initialize audit sink", zap.Error(err))
	}
	recorder := auditapp.NewRecorder(sink, log)

	// Domain event bus
	eventBus := event.NewInMemoryEventBus(log)
	lowStockHandler := inventoryapp.NewStockBelowThresholdHandler(log).WithBusinessMetrics(businessMetrics)
	eventBus.Subscribe(lowStockHandler, lowStockHandler.EventTypes()...)
	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Application services
	scope := persistence.NewGormTransactionScope(db.DB)
	catalogRepo := persistence.NewGormCatalogRepository(db.DB)

	ledger := inventoryapp.NewStockLedger(scope, recorder, log)
	ledger.SetEventPublisher(eventBus)
	ledger.SetBusinessMetrics(businessMetrics)
	ledger.SetLowStockThreshold(cfg.Business.LowStockThreshold)

	alertService := inventoryapp.NewAlertService(catalogRepo, cfg.Business.LowStockThreshold, cfg.Business.ExpiryWarningDays)

	supplyOrderService := tradeapp.NewSupplyOrderService(scope, ledger, recorder, log)
	supplyOrderService.SetEventPublisher(eventBus)
	supplyOrderService.SetBusinessMetrics(businessMetrics)

	saleService := tradeapp.NewSaleService(scope, ledger, recorder, cfg.Business.TaxRate, log)
	saleService.SetEventPublisher(eventBus)
	saleService.SetBusinessMetrics(businessMetrics)

	// Idempotency store for replay protection on POST/PUT
	var idempotencyStore shared.IdempotencyStore
	if cfg.Idempotency.Enabled {
		idempotencyStore, err = cache.NewIdempotencyStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(!cfg.IsProduction()),
		).CreateStore()
		if err != nil {
			log.Fatal("Failed to initialize idempotency store", zap.Error(err))
		}
		defer func() {
			if err := idempotencyStore.Close(); err != nil {
				log.Warn("Failed to close idempotency store", zap.Error(err))
			}
		}()
	}

	handlers := router.Handlers{
		SupplyOrders: handler.NewSupplyOrderHandler(supplyOrderService),
		Sales:        handler.NewSaleHandler(saleService),
		Inventory:    handler.NewInventoryHandler(ledger, alertService),
		Health:       handler.NewHealthHandler(db, version, log),
	}
	if cfg.Audit.StoreEnabled {
		handlers.Audit = handler.NewAuditHandler(auditapp.NewQueryService(auditRepo))
	}

	engine := router.New(handlers, router.Options{
		Config: cfg,
		Logger: log,
		Actor: middleware.ActorConfig{
			JWTService:          auth.NewJWTService(cfg.JWT),
			AllowHeaderFallback: !cfg.IsProduction(),
			SkipPaths:           []string{"/health"},
			Logger:              log,
		},
		Idempotency: middleware.IdempotencyConfig{
			Store:  idempotencyStore,
			TTL:    cfg.Idempotency.TTL,
			Logger: log,
		},
		MeterProvider: mp,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// In-flight requests are done; drain queued audit events before the
	// database and exporters go away.
	if err := closeSink(shutdownCtx); err != nil {
		log.Error("Failed to flush audit events", zap.Error(err))
	}
	if err := eventBus.Stop(shutdownCtx); err != nil {
		log.Warn("Failed to stop event bus", zap.Error(err))
	}
	cancel()

	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown meter provider", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown tracer provider", zap.Error(err))
	}
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Failed to shutdown logger provider", zap.Error(err))
	}

	log.Info("Server exited")
}

// buildAuditSink assembles the configured delivery chain: the log sink is
// always present, the audit table and Kafka topic are optional, and a worker
// pool fronts the chain when AsyncWorkers is positive. The returned close
// function flushes and releases whatever was opened.
func buildAuditSink(cfg config.AuditConfig, repo *persistence.GormAuditRepository, log *zap.Logger) (audit.Sink, func(context.Context) error, error) {
	sinks := []audit.Sink{auditsink.NewLogSink(log)}
	if cfg.StoreEnabled {
		sinks = append(sinks, repo)
	}

	var kafkaSink *auditsink.KafkaSink
	if cfg.KafkaEnabled {
		kafkaSink = auditsink.NewKafkaSink(auditsink.NewKafkaWriter(auditsink.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
		}))
		sinks = append(sinks, kafkaSink)
	}

	closeKafka := func() error {
		if kafkaSink == nil {
			return nil
		}
		return kafkaSink.Close()
	}

	var sink audit.Sink = auditsink.NewMultiSink(sinks...)
	if cfg.AsyncWorkers <= 0 {
		return sink, func(context.Context) error { return closeKafka() }, nil
	}

	async, err := auditsink.NewAsyncSink(sink, auditsink.AsyncConfig{
		Workers:   cfg.AsyncWorkers,
		QueueSize: cfg.QueueSize,
	}, log)
	if err != nil {
		_ = closeKafka()
		return nil, nil, err
	}
	return async, func(ctx context.Context) error {
		return errors.Join(async.Close(ctx), closeKafka())
	}, nil
}
