package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appsync "github.com/ontiuk/eskimo-sync/internal/application/sync"
	syncdomain "github.com/ontiuk/eskimo-sync/internal/domain/sync"
	"github.com/ontiuk/eskimo-sync/internal/domain/trade"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/cache"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/config"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/eskimo"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/logger"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/persistence"
	"github.com/ontiuk/eskimo-sync/internal/infrastructure/scheduler"
	"github.com/ontiuk/eskimo-sync/internal/interfaces/http/dto"
	"github.com/ontiuk/eskimo-sync/internal/interfaces/http/handler"
	"github.com/ontiuk/eskimo-sync/internal/interfaces/http/middleware"
	"github.com/ontiuk/eskimo-sync/internal/interfaces/http/router"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version),
	)

	db, err := persistence.NewDB(cfg.Database, cfg.Log, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Redis backs the token cache and sync lease when enabled; the in-memory
	// fallbacks only protect a single-instance deployment.
	var tokenCache syncdomain.TokenCache
	var lease syncdomain.Lease
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
		cancel()
		tokenCache = cache.NewRedisTokenCache(redisClient)
		lease = cache.NewRedisLease(redisClient)
		log.Info("Using redis-backed token cache and sync lease", zap.String("addr", cfg.Redis.Addr()))
	} else {
		tokenCache = cache.NewMemoryTokenCache()
		lease = cache.NewMemoryLease()
		log.Warn("Redis disabled, sync lease is process-local")
	}

	session := eskimo.NewSessionProvider(cfg.Eskimo, tokenCache, log)
	gateway := eskimo.NewClient(cfg.Eskimo, session, log)

	categoryRepo := persistence.NewCategoryRepository(db)
	productRepo := persistence.NewProductRepository(db)
	variantRepo := persistence.NewVariantRepository(db)
	customerRepo := persistence.NewCustomerRepository(db)
	orderRepo := persistence.NewOrderRepository(db)

	svc := appsync.NewService(
		gateway,
		lease,
		categoryRepo,
		productRepo,
		variantRepo,
		customerRepo,
		orderRepo,
		appsync.Config{
			WriteBackBatchSize: cfg.Sync.WriteBackBatchSize,
			WriteBackDelay:     cfg.Sync.WriteBackDelay,
			LeaseTTL:           cfg.Sync.LeaseTTL,
			CouponMode:         trade.CouponMode(cfg.Sync.CouponMode),
			OrderExportLimit:   cfg.Sync.OrderExportLimit,
			CustomerPrefix:     cfg.Sync.CustomerPrefix,
			GuestCustomerID:    cfg.Sync.GuestCustomerID,
		},
		log,
	)

	if err := dto.RegisterValidators(); err != nil {
		log.Fatal("Failed to register binding validators", zap.Error(err))
	}

	engine := newEngine(cfg, log)
	router.NewRouter(engine, router.WithAPIVersion("v1")).
		Register(handler.NewCatalogHandler(svc, log)).
		Register(handler.NewTradeHandler(svc, log)).
		Register(handler.NewSystemHandler(gateway, version, log)).
		Setup()

	sched, err := scheduler.New(cfg.Scheduler, svc, log)
	if err != nil {
		log.Fatal("Failed to create scheduler", zap.Error(err))
	}
	sched.Start()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Warn("Scheduler shutdown error", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Info("Shutdown complete")
}

// newEngine builds the gin engine with the middleware chain
func newEngine(cfg *config.Config, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))
	if cfg.HTTP.RateLimitEnabled {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(limiter))
	}

	return engine
}
