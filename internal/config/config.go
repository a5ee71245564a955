package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Billing  BillingConfig
	JWT      JWTConfig
}

type ServerConfig struct {
	Port        string
	Environment string
	BaseURL     string
}

type DatabaseConfig struct {
	URL            string
	SQLitePath     string
	MigrationsPath string
}

type BillingConfig struct {
	StripeSecret  string
	WebhookSecret string
	PriceIDs      []string
}

type JWTConfig struct {
	Secret string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			SQLitePath:     getEnv("SQLITE_PATH", "sealog.db"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		},
		Billing: BillingConfig{
			StripeSecret:  getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			PriceIDs:      splitList(getEnv("STRIPE_PRICE_IDS", "")),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
	}

	if cfg.Billing.StripeSecret == "" {
		log.Fatal("STRIPE_SECRET_KEY environment variable not set")
	}
	if cfg.Billing.WebhookSecret == "" {
		log.Fatal("STRIPE_WEBHOOK_SECRET environment variable not set")
	}

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}

	var out []string
	for _, item := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
