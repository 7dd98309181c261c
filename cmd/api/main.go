package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/orderdesk/orderdesk-backend/api/routes"
	"github.com/orderdesk/orderdesk-backend/internal/ledger"
	"github.com/orderdesk/orderdesk-backend/internal/orders"
	"github.com/orderdesk/orderdesk-backend/internal/payments"
	"github.com/orderdesk/orderdesk-backend/internal/pricing"
	"github.com/orderdesk/orderdesk-backend/internal/promo"
	"github.com/orderdesk/orderdesk-backend/pkg/config"
	"github.com/orderdesk/orderdesk-backend/pkg/db"
	"github.com/orderdesk/orderdesk-backend/pkg/logger"
	"github.com/orderdesk/orderdesk-backend/pkg/metrics"
	"github.com/orderdesk/orderdesk-backend/pkg/migrate"
	"github.com/orderdesk/orderdesk-backend/pkg/outbox"
	"github.com/orderdesk/orderdesk-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	lifecycle := metrics.NewLifecycleMetrics(registry)

	outboxSvc := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	ledgerSvc, err := ledger.NewService(dbClient, ledger.NewRepository(dbClient.DB()), outboxSvc, lifecycle)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}
	promoSvc, err := promo.NewService(promo.NewRepository(dbClient.DB()), outboxSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create promo service", err)
		os.Exit(1)
	}
	ordersSvc, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		outboxSvc,
		pricing.NewService(),
		promoSvc,
		ledgerSvc,
		cfg.Wallet,
		lifecycle,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	paymentsSvc, err := payments.NewService(
		payments.NewRepository(dbClient.DB()),
		dbClient,
		outboxSvc,
		ledgerSvc,
		cfg.Bonus,
		lifecycle,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:   cfg,
			Logger:   logg,
			DB:       dbClient,
			Redis:    redisClient,
			Registry: registry,
			Orders:   ordersSvc,
			Payments: paymentsSvc,
			Ledger:   ledgerSvc,
			Promo:    promoSvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
