package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds all configuration for the application.
type AppConfig struct {
	TelegramToken string
	DatabaseURL   string
	// RedisURL is optional; when set, conversation sessions are kept in
	// Redis instead of process memory.
	RedisURL string
	// AdminChannelID is the channel new applications are forwarded to and
	// admin accept/reject decisions arrive from.
	AdminChannelID int64
	// CountryCallingCode is prefixed to bare 9-digit phone numbers.
	CountryCallingCode    string
	LogLevel              string
	Environment           string
	CronSpecPendingDigest string
	// Optional reference data files loaded at startup.
	RegionsJSONPath   string
	DistrictsJSONPath string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Attempt to load .env file. Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	adminChannelStr := os.Getenv("ADMIN_CHANNEL_ID")
	if adminChannelStr == "" {
		return nil, fmt.Errorf("ADMIN_CHANNEL_ID is not set")
	}
	cfg.AdminChannelID, err = strconv.ParseInt(adminChannelStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_CHANNEL_ID: %w", err)
	}

	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.CountryCallingCode = os.Getenv("COUNTRY_CALLING_CODE")
	if cfg.CountryCallingCode == "" {
		cfg.CountryCallingCode = "+998"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.CronSpecPendingDigest = os.Getenv("CRON_SPEC_PENDING_DIGEST")
	if cfg.CronSpecPendingDigest == "" {
		cfg.CronSpecPendingDigest = "0 9 * * *" // Default: 9 AM daily
	}

	cfg.RegionsJSONPath = os.Getenv("REGIONS_JSON_PATH")
	cfg.DistrictsJSONPath = os.Getenv("DISTRICTS_JSON_PATH")

	return cfg, nil
}
