package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/config"
	"github.com/atolyeshop/etsysync/internal/etsy"
	"github.com/atolyeshop/etsysync/internal/repository/postgres"
	"github.com/atolyeshop/etsysync/internal/service"
	"github.com/atolyeshop/etsysync/internal/shipentegra"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/sync-orders/main.go <account-id>")
		os.Exit(1)
	}

	accountID, err := uuid.Parse(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid account ID: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	repos := postgres.NewRepositories(db, logger)

	tokens := shipentegra.NewTokenProvider(cfg.ShipEntegra, logger)
	carrier := shipentegra.NewClient(cfg.ShipEntegra, tokens, logger)
	notifier := etsy.NewMessageNotifier(logger)

	newEtsy := func(accessToken string) service.EtsyAPI {
		return etsy.NewClient(cfg.Etsy, accessToken, logger)
	}

	syncSvc := service.NewSyncService(repos, newEtsy, carrier, notifier, cfg.Sync.WindowDays, cfg.Sync.PageSize, logger)

	total, err := syncSvc.SyncOrders(context.Background(), accountID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Order sync failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Synced %d orders\n", total)
}
