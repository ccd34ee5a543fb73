package config

import (
	"os"
	"strconv"
	"time"

	"stockcast/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Forecast ForecastConfig
	Scan     ScanConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

// ForecastConfig holds forecasting defaults
type ForecastConfig struct {
	HorizonDays     int
	HistoryDays     int
	ConfidenceLevel float64
}

// ScanConfig holds shortage scan defaults
type ScanConfig struct {
	DaysAhead int
	// Workers bounds the parallel demand-item fan-out during a scan.
	Workers int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvIntOrDefault("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvIntOrDefault("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDurationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Server: ServerConfig{
			Port:            getEnvOrDefault("PORT", "8080"),
			ShutdownTimeout: getEnvDurationOrDefault("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Forecast: ForecastConfig{
			HorizonDays:     getEnvIntOrDefault("FORECAST_HORIZON_DAYS", 30),
			HistoryDays:     getEnvIntOrDefault("FORECAST_HISTORY_DAYS", 90),
			ConfidenceLevel: getEnvFloatOrDefault("FORECAST_CONFIDENCE", 95),
		},
		Scan: ScanConfig{
			DaysAhead: getEnvIntOrDefault("SCAN_DAYS_AHEAD", 30),
			Workers:   getEnvIntOrDefault("SCAN_WORKERS", 4),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if cfg.Forecast.HorizonDays <= 0 {
		return errors.ConfigInvalid("FORECAST_HORIZON_DAYS must be positive")
	}
	if cfg.Forecast.HistoryDays <= 0 {
		return errors.ConfigInvalid("FORECAST_HISTORY_DAYS must be positive")
	}
	if cfg.Scan.Workers <= 0 {
		return errors.ConfigInvalid("SCAN_WORKERS must be positive")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
