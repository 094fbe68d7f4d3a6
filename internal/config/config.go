package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	Database    DatabaseConfig
	Etsy        EtsyConfig
	ShipEntegra ShipEntegraConfig
	Sync        SyncConfig
	LogLevel    string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type EtsyConfig struct {
	BaseURL      string
	ClientID     string
	SharedSecret string
}

type ShipEntegraConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
}

type SyncConfig struct {
	WindowDays int
	PageSize   int
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("SYNC_WINDOW_DAYS", "30")
	viper.SetDefault("SYNC_PAGE_SIZE", "50")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "etsysync"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Etsy: EtsyConfig{
			BaseURL:      getEnvOrViper("ETSY_BASE_URL", "https://api.etsy.com/v3/application"),
			ClientID:     getEnvOrViper("ETSY_CLIENT_ID", ""),
			SharedSecret: getEnvOrViper("ETSY_SHARED_SECRET", ""),
		},
		ShipEntegra: ShipEntegraConfig{
			BaseURL:      getEnvOrViper("SHIPENTEGRA_BASE_URL", "https://apiv2.shipentegra.com"),
			ClientID:     getEnvOrViper("SHIPENTEGRA_CLIENT_ID", ""),
			ClientSecret: getEnvOrViper("SHIPENTEGRA_CLIENT_SECRET", ""),
		},
		Sync: SyncConfig{
			WindowDays: viper.GetInt("SYNC_WINDOW_DAYS"),
			PageSize:   viper.GetInt("SYNC_PAGE_SIZE"),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	if cfg.Sync.WindowDays <= 0 {
		cfg.Sync.WindowDays = 30
	}
	if cfg.Sync.PageSize <= 0 {
		cfg.Sync.PageSize = 50
	}

	// Validate required fields
	if cfg.Etsy.ClientID == "" {
		return nil, fmt.Errorf("ETSY_CLIENT_ID is required")
	}
	if cfg.Etsy.SharedSecret == "" {
		return nil, fmt.Errorf("ETSY_SHARED_SECRET is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
