package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/rvellora/stockline-backend/api/routes"
	itemsvc "github.com/rvellora/stockline-backend/internal/items"
	"github.com/rvellora/stockline-backend/internal/syncer"
	"github.com/rvellora/stockline-backend/pkg/config"
	"github.com/rvellora/stockline-backend/pkg/db"
	"github.com/rvellora/stockline-backend/pkg/logger"
	"github.com/rvellora/stockline-backend/pkg/metrics"
	"github.com/rvellora/stockline-backend/pkg/migrate"
	"github.com/rvellora/stockline-backend/pkg/redis"
	"github.com/rvellora/stockline-backend/pkg/shopify"
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
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	syncMetrics := metrics.NewSyncMetrics(registry)

	itemRepo := itemsvc.NewRepository(dbClient.DB())
	itemService, err := itemsvc.NewService(itemRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create item service", err)
		os.Exit(1)
	}

	storefront := shopify.NewClient(cfg.Shopify, logg)

	syncLock, err := syncer.NewRedisLock(redisClient, redisClient.SyncLockKey(cfg.Shopify.StoreDomain), cfg.Sync.LockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync lock", err)
		os.Exit(1)
	}

	syncState, err := syncer.NewRedisStateStore(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create sync state store", err)
		os.Exit(1)
	}

	syncService, err := syncer.NewService(syncer.ServiceParams{
		Logger:          logg,
		Storefront:      storefront,
		Items:           itemRepo,
		Lock:            syncLock,
		State:           syncState,
		Pacer:           syncer.NewPacer(cfg.Sync.ItemInterval),
		Metrics:         syncMetrics,
		ShopDomain:      cfg.Shopify.StoreDomain,
		PageLimit:       cfg.Sync.PageLimit,
		DefaultLookback: cfg.Sync.DefaultLookback,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sync service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
		"shop":     cfg.Shopify.StoreDomain,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, registry, itemService, syncService),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
