package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/api"
	"github.com/atolyeshop/etsysync/internal/config"
	"github.com/atolyeshop/etsysync/internal/etsy"
	"github.com/atolyeshop/etsysync/internal/repository/postgres"
	"github.com/atolyeshop/etsysync/internal/service"
	"github.com/atolyeshop/etsysync/internal/shipentegra"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	var logger *zap.Logger
	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	// External clients
	tokens := shipentegra.NewTokenProvider(cfg.ShipEntegra, logger)
	carrier := shipentegra.NewClient(cfg.ShipEntegra, tokens, logger)
	notifier := etsy.NewMessageNotifier(logger)

	newEtsy := func(accessToken string) service.EtsyAPI {
		return etsy.NewClient(cfg.Etsy, accessToken, logger)
	}

	syncSvc := service.NewSyncService(repos, newEtsy, carrier, notifier, cfg.Sync.WindowDays, cfg.Sync.PageSize, logger)
	orderSvc := service.NewOrderService(repos, logger)

	router := api.NewRouter(cfg, repos, syncSvc, orderSvc, logger)

	logger.Info("Starting server", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
