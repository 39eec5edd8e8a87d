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

	"github.com/ikkim/cartcore-backend/config"
	"github.com/ikkim/cartcore-backend/internal/app/controller"
	"github.com/ikkim/cartcore-backend/internal/app/repository"
	"github.com/ikkim/cartcore-backend/internal/app/service"
	"github.com/ikkim/cartcore-backend/internal/db"
	"github.com/ikkim/cartcore-backend/internal/metrics"
	"github.com/ikkim/cartcore-backend/internal/middleware"
	"github.com/ikkim/cartcore-backend/internal/router"
	"github.com/ikkim/cartcore-backend/internal/scheduler"
	"github.com/ikkim/cartcore-backend/internal/storage"
	"github.com/ikkim/cartcore-backend/internal/websocket"
	"github.com/ikkim/cartcore-backend/pkg/logger"
	pkgredis "github.com/ikkim/cartcore-backend/pkg/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Server.LogLevel,
		Format:      cfg.Server.LogFormat,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting cartcore backend server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"log_level":   cfg.Server.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Fatal("Server exited with error", err)
	}
	logger.Info("Server stopped successfully")
}

func run(ctx context.Context, cfg *config.Config) (err error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)
	jobMetrics := metrics.NewCronJobMetrics(registry)

	// Initialize database
	if err := db.Initialize(&cfg.Database, db.NewQueryCounter(appMetrics)); err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, db.Close())
	}()

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	conn := db.GetDB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(conn)
	productRepo := repository.NewProductRepository(conn)
	cartRepo := repository.NewCartRepository(conn)
	couponRepo := repository.NewCouponRepository(conn)
	orderRepo := repository.NewOrderRepository(conn)

	hub := websocket.NewHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	var thumbnails []service.ThumbnailResolver
	if cfg.S3.Bucket != "" || cfg.S3.BaseURL != "" {
		s3Storage, err := storage.NewS3Storage(ctx, &cfg.S3)
		if err != nil {
			return err
		}
		thumbnails = append(thumbnails, s3Storage)
	}

	// Initialize services
	pricing := service.PricingPolicy{
		StandardDeliveryFee:   cfg.Pricing.StandardDeliveryFee,
		FreeShippingThreshold: cfg.Pricing.FreeShippingThreshold,
		DeliveryLeadTime:      cfg.Pricing.DeliveryLeadTime,
	}
	cartService := service.NewCartService(cartRepo, productRepo, thumbnails...)
	purchaseService := service.NewPurchaseService(
		db.NewTxManager(conn),
		cartRepo,
		productRepo,
		couponRepo,
		orderRepo,
		userRepo,
		pricing,
		service.WithStockPublisher(hub),
		service.WithPurchaseObserver(appMetrics),
	)
	orderService := service.NewOrderService(orderRepo)

	opts := router.Options{
		Metrics:        appMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		HealthCheck:    db.Ping,
	}

	if cfg.Redis.Enabled {
		redisClient, redisErr := pkgredis.New(ctx, &cfg.Redis)
		if redisErr != nil {
			return redisErr
		}
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
		opts.IdempotencyStore = redisClient
	} else {
		logger.Warn("Redis disabled; Idempotency-Key headers are ignored", nil)
	}

	if cfg.Scheduler.Enabled {
		reports := scheduler.NewStockReportScheduler(
			cfg.Scheduler.StockReportSpec,
			cfg.Scheduler.LowStockThreshold,
			productRepo,
			appMetrics,
			jobMetrics,
		)
		if err := reports.Start(); err != nil {
			return err
		}
		defer reports.Stop()
	}

	r := router.NewRouter(
		controller.NewCartController(cartService),
		controller.NewOrderController(purchaseService, orderService),
		controller.NewStockWSController(hub, cfg.CORS.AllowedOrigins),
		middleware.NewAuthMiddleware(cfg.JWT.Secret, userRepo),
		cfg,
		opts,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server started successfully", map[string]interface{}{
			"address": srv.Addr,
			"pid":     os.Getpid(),
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
