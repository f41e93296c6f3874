package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/pricepulse/glitchradar/models"
)

// Config holds all application configuration
type Config struct {
	LogLevel string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisAddr     string
	RedisPassword string
	HistoryLimit  int

	ValidatorURL   string
	RequestTimeout int // seconds

	ThresholdsFile string
	RankOverfetch  int

	FreeTierDelayMin    int
	StarterTierDelayMin int
	ProTierDelayMin     int
}

// Load initializes configuration from environment variables
func Load() (*Config, error) {
	// Load environment variables from .env file if present
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, relying on actual environment variables")
	}

	var cfg Config

	cfg.LogLevel = getEnvWithDefault("LOG_LEVEL", "info")

	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = getEnvWithDefault("DB_PORT", "5432")
	cfg.DBUser = getEnvWithDefault("DB_USER", "postgres")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = getEnvWithDefault("DB_NAME", "glitchradar")
	cfg.DBSSLMode = getEnvWithDefault("DB_SSLMODE", "disable")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.HistoryLimit = getEnvIntWithDefault("HISTORY_LIMIT", 30)

	cfg.ValidatorURL = os.Getenv("VALIDATOR_URL")
	cfg.RequestTimeout = getEnvIntWithDefault("REQUEST_TIMEOUT", 30)

	cfg.ThresholdsFile = os.Getenv("CATEGORY_THRESHOLDS_FILE")
	cfg.RankOverfetch = getEnvIntWithDefault("RANK_OVERFETCH", 2)

	cfg.FreeTierDelayMin = getEnvIntWithDefault("FREE_TIER_DELAY_MIN", 60)
	cfg.StarterTierDelayMin = getEnvIntWithDefault("STARTER_TIER_DELAY_MIN", 30)
	cfg.ProTierDelayMin = getEnvIntWithDefault("PRO_TIER_DELAY_MIN", 0)

	return &cfg, nil
}

// TierDelays builds the ranker delay table from the configured minutes.
func (c *Config) TierDelays() map[models.SubscriptionTier]time.Duration {
	return map[models.SubscriptionTier]time.Duration{
		models.TierFree:    time.Duration(c.FreeTierDelayMin) * time.Minute,
		models.TierStarter: time.Duration(c.StarterTierDelayMin) * time.Minute,
		models.TierPro:     time.Duration(c.ProTierDelayMin) * time.Minute,
	}
}

// Helper functions for environment variable handling
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
