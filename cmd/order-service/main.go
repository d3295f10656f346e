package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/microshop/microshop-backend/api/routes"
	"github.com/microshop/microshop-backend/internal/checkout"
	"github.com/microshop/microshop-backend/internal/cron"
	"github.com/microshop/microshop-backend/internal/orders"
	"github.com/microshop/microshop-backend/pkg/cartapi"
	"github.com/microshop/microshop-backend/pkg/config"
	"github.com/microshop/microshop-backend/pkg/db"
	"github.com/microshop/microshop-backend/pkg/logger"
	"github.com/microshop/microshop-backend/pkg/metrics"
	pkgredis "github.com/microshop/microshop-backend/pkg/redis"
)

const defaultPort = "5003"

func main() {
	logg := logger.New(logger.Options{ServiceName: "order-service"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "order-service",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := db.MaybeAutoMigrate(context.Background(), cfg.DB, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run migrations", err)
		os.Exit(1)
	}

	var redisClient *pkgredis.Client
	var idempotencyStore pkgredis.IdempotencyStore
	if cfg.Redis.Configured() {
		redisClient, err = pkgredis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		idempotencyStore = redisClient
	}

	cartClient, err := cartapi.NewClient(cfg.CartSvc.BaseURL, cartapi.WithTimeout(cfg.CartSvc.Timeout))
	if err != nil {
		logg.Error(context.Background(), "failed to create cart client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	orderService, err := orders.NewService(orders.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	pendingRepo := checkout.NewRepository(dbClient.DB())
	checkoutService, err := checkout.NewService(cartClient, orderService, pendingRepo, cfg.Checkout, logg, checkoutMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	if cfg.Cron.Enabled {
		reconcileJob, err := cron.NewCartClearReconcileJob(pendingRepo, cartClient, checkoutMetrics, cfg.Cron.ReconcileBatch)
		if err != nil {
			logg.Error(context.Background(), "failed to create reconcile job", err)
			os.Exit(1)
		}

		var lock cron.Lock = cron.NoopLock{}
		if redisClient != nil {
			redisLock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cart-clear-reconcile"), 0)
			if err != nil {
				logg.Error(context.Background(), "failed to create cron lock", err)
				os.Exit(1)
			}
			lock = redisLock
		}

		cronService, err := cron.NewService(cron.ServiceParams{
			Logger:   logg,
			Registry: cron.NewRegistry(reconcileJob),
			Lock:     lock,
			Metrics:  metrics.NewCronJobMetrics(registry),
			Interval: cfg.Cron.ReconcileInterval,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to create cron service", err)
			os.Exit(1)
		}
		go func() {
			if err := cronService.Run(context.Background()); err != nil && err != context.Canceled {
				logg.Error(context.Background(), "cron service stopped unexpectedly", err)
			}
		}()
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	if port == "" {
		port = defaultPort
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting order service")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewOrdersRouter(cfg, logg, dbClient, idempotencyStore, registry, checkoutService, orderService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "order service stopped unexpectedly", err)
		os.Exit(1)
	}
}
