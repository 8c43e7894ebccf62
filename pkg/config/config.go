package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	devJWTSecret = "supersecretjwtkey"
)

type Config struct {
	Port           string
	Env            string
	MongoURI       string
	MongoDatabase  string
	StorageDriver  string
	JWTSecret      string
	JWTTTL         time.Duration
	LogLevel       string
	MetricsEnabled bool
}

// Load reads the configuration from the environment, after loading a .env
// file when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "72h"))
	if err != nil {
		return nil, fmt.Errorf("JWT_TTL: %w", err)
	}
	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("METRICS_ENABLED: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		MongoURI:       getEnv("MONGO_URI", ""),
		MongoDatabase:  getEnv("MONGO_DATABASE", "blog_db"),
		StorageDriver:  getEnv("STORAGE_DRIVER", StorageMongo),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTTTL:         ttl,
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MetricsEnabled: metricsEnabled,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, nil
}

// Validate checks settings that must be fixed before the server starts.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMongo:
		if c.MongoURI == "" {
			return errors.New("MONGO_URI environment variable not set")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
