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
	"github.com/joho/godotenv"
	catalogapp "github.com/ledger/backend/internal/application/catalog"
	financeapp "github.com/ledger/backend/internal/application/finance"
	identityapp "github.com/ledger/backend/internal/application/identity"
	partnerapp "github.com/ledger/backend/internal/application/partner"
	reportapp "github.com/ledger/backend/internal/application/report"
	tradeapp "github.com/ledger/backend/internal/application/trade"
	"github.com/ledger/backend/internal/infrastructure/auth"
	"github.com/ledger/backend/internal/infrastructure/cache"
	"github.com/ledger/backend/internal/infrastructure/config"
	"github.com/ledger/backend/internal/infrastructure/logger"
	"github.com/ledger/backend/internal/infrastructure/persistence"
	"github.com/ledger/backend/internal/infrastructure/printing"
	"github.com/ledger/backend/internal/infrastructure/storage"
	"github.com/ledger/backend/internal/infrastructure/telemetry"
	"github.com/ledger/backend/internal/interfaces/http/handler"
	"github.com/ledger/backend/internal/interfaces/http/middleware"
	"github.com/ledger/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/ledger/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Supplier Ledger API
//	@version		1.0
//	@description	Supplier collections, rate history, payments and balances.

//	@contact.name	API Support
//	@contact.url	https://github.com/ledger/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// A missing .env is normal outside local development
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: cfg.Log.TimeFormat,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}

	ctx := context.Background()
	serviceName := cfg.Telemetry.ServiceName

	// Telemetry: traces, metrics, logs bridge and profiling
	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       serviceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       serviceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
		PrometheusEnabled: cfg.Telemetry.PrometheusEnabled,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize meter provider", zap.Error(err))
	}

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       serviceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, baseLog)
	if err != nil {
		baseLog.Fatal("Failed to initialize logger provider", zap.Error(err))
	}
	log := telemetry.BridgeLogger(baseLog, lp, serviceName)
	defer func() {
		_ = log.Sync()
	}()

	profiler, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:         cfg.Telemetry.ProfilingEnabled,
		ServerAddress:   cfg.Telemetry.PyroscopeAddress,
		ApplicationName: serviceName,
	}, log)
	if err != nil {
		log.Warn("Profiler disabled", zap.Error(err))
		profiler, _ = telemetry.NewProfiler(telemetry.ProfilerConfig{}, log)
	}
	if profiler.IsEnabled() {
		if err := tp.EnableSpanProfiles(); err != nil {
			log.Warn("Failed to link spans to profiles", zap.Error(err))
		}
	}

	log.Info("Starting supplier ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	// Database
	db, err := persistence.NewDatabase(&cfg.Database, log, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	dbTracing := telemetry.DefaultDBTracingConfig()
	dbTracing.Enabled = cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled
	dbTracing.LogFullSQL = cfg.App.Debug
	if err := telemetry.NewDBTracingPlugin(dbTracing, log).RegisterOtelGorm(db.DB); err != nil {
		log.Fatal("Failed to register database tracing", zap.Error(err))
	}
	dbMetrics, err := telemetry.RegisterDBMetrics(db.DB, mp, telemetry.DefaultDBMetricsConfig(), log)
	if err != nil {
		log.Fatal("Failed to register database metrics", zap.Error(err))
	}
	if dbMetrics != nil {
		dbMetrics.StartPoolStatsCollection(ctx)
	}

	// Redis-backed stores, or in-memory ones when Redis is off
	stores, err := cache.NewFactory(cfg.Redis, cache.WithLogger(log)).Build(ctx)
	if err != nil {
		log.Fatal("Failed to initialize cache stores", zap.Error(err))
	}
	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if stores.Client != nil {
		blacklist = auth.NewRedisTokenBlacklist(stores.Client)
	}

	// Repositories
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	rateRepo := persistence.NewGormRateRepository(db.DB)
	collectionRepo := persistence.NewGormCollectionRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	reportRepo := persistence.NewGormReportRepository(db.DB)
	tx := persistence.NewTxManager(db.DB)

	seeded, err := identityapp.NewBootstrapService(userRepo, roleRepo, tx, log).Seed(ctx, identityapp.BootstrapInput{
		AdminName:     cfg.Bootstrap.AdminName,
		AdminEmail:    cfg.Bootstrap.AdminEmail,
		AdminPassword: cfg.Bootstrap.AdminPassword,
	})
	if err != nil {
		log.Fatal("Failed to seed roles", zap.Error(err))
	}
	if seeded.AdminCreated {
		log.Warn("Bootstrap administrator created, change its password",
			zap.String("email", cfg.Bootstrap.AdminEmail))
	}

	// PDF rendering and optional S3 archive
	pdf := printing.NewChromedpRenderer(&printing.ChromedpConfig{
		DefaultTimeout: cfg.PDF.Timeout,
		RemoteURL:      cfg.PDF.RemoteURL,
		ExecPath:       cfg.PDF.ChromePath,
		NoSandbox:      true,
		Logger:         log,
	})
	defer func() {
		_ = pdf.Close()
	}()
	templates, err := printing.NewTemplateEngine()
	if err != nil {
		log.Fatal("Failed to parse report templates", zap.Error(err))
	}

	var archive reportapp.Archive
	if cfg.Storage.Enabled {
		s3, err := storage.NewS3ObjectStorage(&cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiry))
		if err != nil {
			log.Fatal("Failed to initialize report storage", zap.Error(err))
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Fatal("Failed to prepare report bucket", zap.Error(err), zap.String("bucket", s3.Bucket()))
		}
		archive = storage.NewReportArchive(s3, cfg.Storage.KeyPrefix, cfg.Storage.PresignExpiry, log)
	}

	// Services
	jwtService := auth.NewJWTService(cfg.JWT)
	rateService := catalogapp.NewRateService(rateRepo, productRepo, stores.Rates, tx, log)
	reportService := reportapp.NewReportService(reportRepo,
		printing.NewReportRenderer(templates, pdf, cfg.App.Name), archive, log)

	businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:          mp.Meter("ledger"),
		Logger:         log,
		LedgerProvider: telemetry.NewGormLedgerMetricsProvider(db.DB),
	})
	if err != nil {
		log.Fatal("Failed to initialize business metrics", zap.Error(err))
	}
	businessMetrics.StartPeriodicCollection(ctx, 0)

	base := handler.NewBaseHandler(businessMetrics)
	handlers := &handler.Handlers{
		Auth:       handler.NewAuthHandler(base, identityapp.NewAuthService(userRepo, roleRepo, jwtService, blacklist, log)),
		Supplier:   handler.NewSupplierHandler(base, partnerapp.NewSupplierService(supplierRepo), reportService),
		Product:    handler.NewProductHandler(base, catalogapp.NewProductService(productRepo, rateRepo), rateService),
		Rate:       handler.NewRateHandler(base, rateService),
		Collection: handler.NewCollectionHandler(base, tradeapp.NewCollectionService(collectionRepo, supplierRepo, productRepo, rateService, tx)),
		Payment:    handler.NewPaymentHandler(base, financeapp.NewPaymentService(paymentRepo, supplierRepo)),
		Role:       handler.NewRoleHandler(base, identityapp.NewRoleService(roleRepo)),
		User:       handler.NewUserHandler(base, identityapp.NewUserService(userRepo, roleRepo, blacklist, cfg.JWT.RefreshTokenExpiration, log)),
		Report:     handler.NewReportHandler(base, reportService),
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID before anything that logs
	// 2. Recovery and request logging
	// 3. Security headers, CORS and the body limit
	// 4. Metrics, tracing and profiling labels
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", middleware.IdempotentReplayedHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: mp,
		Enabled:       mp.IsEnabled(),
		Logger:        log,
	}))
	tracingCfg := middleware.DefaultTracingConfig()
	tracingCfg.ServiceName = serviceName
	tracingCfg.Enabled = tp.IsEnabled()
	engine.Use(middleware.TracingWithConfig(tracingCfg))
	engine.Use(middleware.SpanErrorMarker())
	profilingCfg := middleware.DefaultProfilingConfig()
	profilingCfg.Enabled = profiler.IsEnabled()
	engine.Use(middleware.ProfilingWithConfig(profilingCfg))
	if cfg.HTTP.RequestTimeout > 0 {
		engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	}

	healthChecks := []handler.HealthCheck{
		{Name: "database", Check: func(context.Context) error { return db.Ping() }},
	}
	if stores.Client != nil {
		healthChecks = append(healthChecks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return stores.Client.Ping(ctx).Err() },
		})
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, healthChecks...)
	engine.GET("/health", systemHandler.Health)
	if mp.PrometheusEnabled() {
		engine.GET(cfg.Telemetry.PrometheusEndpoint, gin.WrapH(mp.Handler()))
	}

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.TokenBlacklist = blacklist
	jwtCfg.Logger = log
	jwtCfg.SkipPaths = append(jwtCfg.SkipPaths, cfg.Telemetry.PrometheusEndpoint, "/api/v1/system/ping")
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(jwtCfg)

	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.App.IsProduction(),
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtMiddleware),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	routeOpts := handler.RouteOptions{
		Idempotency: middleware.Idempotency(middleware.IdempotencyConfig{
			Store:  stores.Idempotency,
			TTL:    cfg.HTTP.IdempotencyTTL,
			Logger: log,
		}),
	}
	var authLimiter *middleware.RateLimiter
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter = middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		routeOpts.AuthLimiter = middleware.RateLimit(authLimiter)
		log.Info("Login rate limiting enabled",
			zap.Int("requests", cfg.HTTP.AuthRateLimitRequests),
			zap.Duration("window", cfg.HTTP.AuthRateLimitWindow),
		)
	}

	r := router.NewRouter(engine, router.WithAPIVersion("v1")).
		Use(jwtMiddleware, middleware.TracingAttributeInjector())
	for _, group := range handlers.Groups(routeOpts) {
		r.Register(group)
	}
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	r.Register(systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	if authLimiter != nil {
		authLimiter.Close()
	}
	businessMetrics.Stop()
	if dbMetrics != nil {
		dbMetrics.Stop()
	}
	if err := stores.Close(); err != nil {
		log.Warn("Error closing cache stores", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Error stopping profiler", zap.Error(err))
	}
	if err := mp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down metrics", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down tracing", zap.Error(err))
	}
	if err := lp.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error shutting down log export", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
