package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/paystream/merchant-analytics/docs"
	"github.com/paystream/merchant-analytics/internal/config"
	"github.com/paystream/merchant-analytics/internal/handler"
	"github.com/paystream/merchant-analytics/internal/ingest"
	"github.com/paystream/merchant-analytics/internal/logger"
	"github.com/paystream/merchant-analytics/internal/repository/clickhouse"
	"github.com/paystream/merchant-analytics/internal/service"
)

// @title Merchant Analytics Service API
// @version 1.0
// @description Read-only analytics over merchant transaction events ingested from CSV
// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.New(cfg.Service.Environment)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer func(log *zap.Logger) {
		err := log.Sync()
		if err != nil {
			log.Error("Failed to sync logger", zap.Error(err))
		}
	}(log)

	log.Info("Starting API service",
		zap.String("environment", cfg.Service.Environment),
		zap.String("port", cfg.Service.APIPort))

	// Configure Swagger host dynamically
	docs.SwaggerInfo.Host = cfg.Service.Host

	ctx := context.Background()

	// Initialize ClickHouse client
	clickhouseClient, err := clickhouse.NewClient(ctx, &cfg.ClickHouse, log)
	if err != nil {
		log.Fatal("Failed to create ClickHouse client", zap.Error(err))
	}
	defer func(clickhouseClient *clickhouse.Client) {
		if err := clickhouseClient.Close(); err != nil {
			log.Error("Failed to close ClickHouse client", zap.Error(err))
		}
	}(clickhouseClient)

	// Initialize repository
	repo := clickhouse.NewRepository(clickhouseClient, log)

	// Initialize schema (create tables if not exist)
	if err := repo.InitSchema(ctx); err != nil {
		log.Fatal("Failed to initialize schema", zap.Error(err))
	}
	log.Info("Database schema initialized")

	// Truncate and reseed before accepting requests
	if cfg.Seed.TruncateOnStart {
		if err := repo.Truncate(ctx); err != nil {
			log.Error("Failed to truncate event store", zap.Error(err))
		} else {
			log.Info("Event store truncated")
		}
	}

	seeder := ingest.NewSeeder(repo, log)
	if err := seeder.SeedFromDir(ctx, cfg.Seed.DataDir); err != nil {
		log.Error("Startup seeding failed", zap.Error(err))
	} else {
		log.Info("Startup seeding completed")
	}

	// Initialize analytics service
	analyticsService := service.NewAnalyticsService(repo, log)

	// Initialize handler
	h := handler.NewHandler(analyticsService, log)

	addr := fmt.Sprintf(":%s", cfg.Service.APIPort)
	log.Info("API server starting", zap.String("address", addr))

	if err := http.ListenAndServe(addr, h); err != nil {
		log.Fatal("Failed to start API server", zap.Error(err))
	}
}
