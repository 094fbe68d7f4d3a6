package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/atolyeshop/etsysync/internal/config"
	"github.com/atolyeshop/etsysync/internal/domain"
	"github.com/atolyeshop/etsysync/internal/repository/postgres"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: go run cmd/create-account/main.go <name> <api-key> <etsy-access-token> [etsy-user-id]")
		fmt.Println("Example: go run cmd/create-account/main.go \"Atolye Shop\" \"atolye-api-key-12345\" \"etsy-oauth-token\" 987654321")
		os.Exit(1)
	}

	name := os.Args[1]
	apiKey := os.Args[2]
	accessToken := os.Args[3]

	var etsyUserID *int64
	if len(os.Args) > 4 {
		id, err := strconv.ParseInt(os.Args[4], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid etsy user ID: %v\n", err)
			os.Exit(1)
		}
		etsyUserID = &id
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

	// Hash the API key
	apiKeyHash, err := bcrypt.GenerateFromPassword([]byte(apiKey), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash API key: %v\n", err)
		os.Exit(1)
	}

	repos := postgres.NewRepositories(db, logger)

	account := &domain.Account{
		Name:        name,
		APIKeyHash:  string(apiKeyHash),
		EtsyUserID:  etsyUserID,
		AccessToken: accessToken,
		IsActive:    true,
	}

	if err := repos.Account.Create(context.Background(), account); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create account: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Account created successfully!\n\n")
	fmt.Printf("Account ID: %s\n", account.ID.String())
	fmt.Printf("Account Name: %s\n", account.Name)
	fmt.Printf("API Key: %s\n", apiKey)
	fmt.Printf("\nIMPORTANT: Save this API key securely! You won't be able to see it again.\n")
	fmt.Printf("\nUse this API key in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", apiKey)
}
