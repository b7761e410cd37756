package main

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"recipe-finder/internal/auth"
	"recipe-finder/internal/catalog"
	"recipe-finder/internal/clipper"
	"recipe-finder/internal/config"
	"recipe-finder/internal/database"
	"recipe-finder/internal/favorites"
	"recipe-finder/internal/mealplan"
	"recipe-finder/internal/metrics"
	"recipe-finder/internal/user"
	"recipe-finder/internal/web"
)

const (
	cacheTTL = 24 * time.Hour

	// Catalog call metrics are kept for a month and pruned daily.
	metricsRetentionDays   = 30
	metricsCleanupInterval = 24 * time.Hour
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.NewFromEnv()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := database.Open(cfg.CacheDBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()

	users, err := user.NewDirectory(cfg.DataDir)
	if err != nil {
		logger.Fatal("failed to initialize user directory", zap.Error(err))
	}
	favs, err := favorites.NewStore(filepath.Join(cfg.DataDir, "favorites"))
	if err != nil {
		logger.Fatal("failed to initialize favorites store", zap.Error(err))
	}
	plans, err := mealplan.NewStore(filepath.Join(cfg.DataDir, "mealplans"))
	if err != nil {
		logger.Fatal("failed to initialize meal plan store", zap.Error(err))
	}

	metricsStore := metrics.NewStore(db)
	go metricsStore.CleanupLoop(context.Background(), metricsCleanupInterval, metricsRetentionDays, logger)

	catalogClient := catalog.NewClient(
		cfg.CatalogBaseURL,
		catalog.NewCache(db, cacheTTL),
		metricsStore,
		logger,
	)

	server := web.New(
		logger,
		users,
		favs,
		plans,
		catalogClient,
		clipper.New(nil),
		metricsStore,
		auth.NewTokenManager(cfg.SessionSecret, cfg.SessionTTL),
	)

	logger.Info("starting server", zap.String("addr", cfg.ListenAddr))
	if err := server.Listen(cfg.ListenAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
