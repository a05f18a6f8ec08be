// Package common provides shared utilities for the DCM engine
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for the DCM engine
type Config struct {
	Environment string           `toml:"environment"`
	Server      ServerConfig     `toml:"server"`
	Storage     StorageConfig    `toml:"storage"`
	Portfolio   PortfolioConfig  `toml:"portfolio"`
	Constraints ConstraintConfig `toml:"constraints"`
	Logging     LoggingConfig    `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
	// RateLimit is the per-client request rate (requests/second). Zero disables limiting.
	RateLimit float64 `toml:"rate_limit"`
}

// StorageConfig holds storage configuration for strategy persistence.
type StorageConfig struct {
	Path string `toml:"path"`
}

// PortfolioConfig identifies the managed portfolio.
type PortfolioConfig struct {
	ID       string `toml:"id"`
	Currency string `toml:"currency"`
}

// ConstraintConfig holds the bank policy bounds as a flat key set.
// Loaded here and handed to the engine as models.ConstraintSet — the engine
// itself never reads config.
type ConstraintConfig struct {
	MinCashBalance    float64 `toml:"min_cash_balance"`
	MaxSinglePosition float64 `toml:"max_single_position"`
	MaxSectorExposure float64 `toml:"max_sector_exposure"`
	MinBondAllocation float64 `toml:"min_bond_allocation"`
	MaxBondAllocation float64 `toml:"max_bond_allocation"`
	MaxPositionSize   float64 `toml:"max_position_size"`
	MinPositionSize   float64 `toml:"min_position_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// IsProduction reports whether the config is for a production environment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host:      "0.0.0.0",
			Port:      8080,
			RateLimit: 20,
		},
		Storage: StorageConfig{
			Path: "data/strategies",
		},
		Portfolio: PortfolioConfig{
			Currency: "USD",
		},
		Constraints: ConstraintConfig{
			MinCashBalance:    0.05,
			MaxSinglePosition: 0.25,
			MaxSectorExposure: 0.40,
			MinBondAllocation: 0.15,
			MaxBondAllocation: 0.30,
			MaxPositionSize:   0.40,
			MinPositionSize:   0.10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides.
// Later files override earlier ones; missing files are skipped.
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DCM_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("DCM_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("DCM_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("DCM_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("DCM_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if currency := os.Getenv("DCM_CURRENCY"); currency != "" {
		config.Portfolio.Currency = strings.ToUpper(currency)
	}
}
