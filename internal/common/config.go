// Package common provides shared utilities for Coinfolio
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Coinfolio
type Config struct {
	Environment string        `toml:"environment"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Clients     ClientsConfig `toml:"clients"`
	Logging     LoggingConfig `toml:"logging"`
	Auth        AuthConfig    `toml:"auth"`
	Jobs        JobsConfig    `toml:"jobs"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds paths for the two storage areas.
type StorageConfig struct {
	Internal AreaConfig `toml:"internal"` // User accounts + system KV (BadgerHold)
	User     AreaConfig `toml:"user"`     // User domain data: ledger, keys, alerts, snapshots (BadgerHold)
}

// AreaConfig holds path configuration for a storage area.
type AreaConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Binance   BinanceConfig   `toml:"binance"`
	CoinGecko CoinGeckoConfig `toml:"coingecko"`
}

// BinanceConfig holds Binance API configuration
type BinanceConfig struct {
	BaseURL   string   `toml:"base_url"`
	RateLimit int      `toml:"rate_limit"`
	Timeout   string   `toml:"timeout"`
	Pairs     []string `toml:"pairs"` // trading pairs scanned for trade history
}

// GetTimeout parses and returns the timeout duration
func (c *BinanceConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// CoinGeckoConfig holds CoinGecko API configuration
type CoinGeckoConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *CoinGeckoConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// AuthConfig holds authentication and secret-handling configuration.
type AuthConfig struct {
	JWTSecret     string `toml:"jwt_secret"`
	TokenExpiry   string `toml:"token_expiry"`   // duration string, default "24h"
	EncryptionKey string `toml:"encryption_key"` // 32-byte key for exchange secret encryption (AES-256-GCM)
}

// GetTokenExpiry parses and returns the token expiry duration.
func (c *AuthConfig) GetTokenExpiry() time.Duration {
	d, err := time.ParseDuration(c.TokenExpiry)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// JobsConfig holds background job intervals.
type JobsConfig struct {
	SnapshotInterval string `toml:"snapshot_interval"` // portfolio snapshots, default "60s"
	AlertInterval    string `toml:"alert_interval"`    // price alert checks, default "60s"
}

// GetSnapshotInterval parses and returns the snapshot interval.
func (c *JobsConfig) GetSnapshotInterval() time.Duration {
	d, err := time.ParseDuration(c.SnapshotInterval)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// GetAlertInterval parses and returns the alert check interval.
func (c *JobsConfig) GetAlertInterval() time.Duration {
	d, err := time.ParseDuration(c.AlertInterval)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Internal: AreaConfig{Path: "data/internal"},
			User:     AreaConfig{Path: "data/user"},
		},
		Clients: ClientsConfig{
			Binance: BinanceConfig{
				BaseURL:   "https://api.binance.com",
				RateLimit: 10,
				Timeout:   "30s",
				Pairs:     []string{"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT"},
			},
			CoinGecko: CoinGeckoConfig{
				BaseURL:   "https://api.coingecko.com/api/v3",
				RateLimit: 5,
				Timeout:   "30s",
			},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Auth: AuthConfig{
			TokenExpiry: "24h",
		},
		Jobs: JobsConfig{
			SnapshotInterval: "60s",
			AlertInterval:    "60s",
		},
	}
}

// LoadConfig loads configuration from a TOML file, applying defaults for
// missing values and environment variable overrides on top.
func LoadConfig(path string) (*Config, error) {
	config := NewDefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			// Missing file is fine; defaults plus env overrides apply.
		} else if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies COINFOLIO_* environment variables over file values.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("COINFOLIO_ENVIRONMENT"); v != "" {
		config.Environment = v
	}
	if v := os.Getenv("COINFOLIO_SERVER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("COINFOLIO_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("COINFOLIO_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("COINFOLIO_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
	if v := os.Getenv("COINFOLIO_ENCRYPTION_KEY"); v != "" {
		config.Auth.EncryptionKey = v
	}
	if v := os.Getenv("COINFOLIO_BINANCE_BASE_URL"); v != "" {
		config.Clients.Binance.BaseURL = v
	}
	if v := os.Getenv("COINFOLIO_BINANCE_PAIRS"); v != "" {
		pairs := strings.Split(v, ",")
		for i := range pairs {
			pairs[i] = strings.ToUpper(strings.TrimSpace(pairs[i]))
		}
		config.Clients.Binance.Pairs = pairs
	}
	if v := os.Getenv("COINFOLIO_COINGECKO_BASE_URL"); v != "" {
		config.Clients.CoinGecko.BaseURL = v
	}
}

// Validate checks configuration invariants that would otherwise surface as
// confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Auth.EncryptionKey != "" && len(c.Auth.EncryptionKey) != 32 {
		return fmt.Errorf("auth.encryption_key must be exactly 32 bytes, got %d", len(c.Auth.EncryptionKey))
	}
	for _, pair := range c.Clients.Binance.Pairs {
		if !strings.HasSuffix(pair, "USDT") {
			return fmt.Errorf("unsupported trading pair %q: only USDT-quoted pairs are supported", pair)
		}
	}
	return nil
}
