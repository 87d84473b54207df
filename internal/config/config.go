// Package config loads scanner settings from an optional YAML file, a .env
// file and environment variables, in that order of precedence (last wins).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ingredient-scanner/internal/wordlist"
)

// Config holds all configuration for the scanner.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Store  StoreConfig  `yaml:"store"`
	OCR    OCRConfig    `yaml:"ocr"`
	Server ServerConfig `yaml:"server"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

// StoreConfig selects where the word lists are persisted.
type StoreConfig struct {
	Driver   string `yaml:"driver"` // file, memory, redis or postgres
	Path     string `yaml:"path"`
	Watch    bool   `yaml:"watch"`
	RedisURL string `yaml:"redis_url"`
	Prefix   string `yaml:"prefix"`
	DSN      string `yaml:"dsn"`
}

// OCRConfig holds recognizer settings.
type OCRConfig struct {
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr             string        `yaml:"addr"`
	MaxUploadBytes   int64         `yaml:"max_upload_bytes"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// Store drivers.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// Load reads .env (if present), then the YAML file at path (if non-empty),
// then applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	// Missing .env is normal.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Store: StoreConfig{
			Driver: DriverFile,
			Path:   wordlist.DefaultFilePath(),
			Prefix: "ingredient-scanner:",
		},
		OCR: OCRConfig{
			Language: "eng",
			Timeout:  60 * time.Second,
		},
		Server: ServerConfig{
			Addr:             "127.0.0.1:8086",
			MaxUploadBytes:   20 << 20,
			SessionTTL:       30 * time.Minute,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s", c.Log.Format)
	}

	switch c.Store.Driver {
	case DriverFile:
		if c.Store.Path == "" {
			return fmt.Errorf("store path is required for the file driver")
		}
	case DriverMemory:
	case DriverRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("redis_url is required for the redis driver")
		}
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid store driver: %s", c.Store.Driver)
	}

	if c.OCR.Language == "" {
		return fmt.Errorf("ocr language is required")
	}
	if c.OCR.Timeout < 0 {
		return fmt.Errorf("ocr timeout must not be negative")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive")
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SCANNER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("SCANNER_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	if v := os.Getenv("SCANNER_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = strings.ToLower(v)
	}

	if v := os.Getenv("SCANNER_STORE_PATH"); v != "" {
		cfg.Store.Path = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Store.RedisURL = v
		if os.Getenv("SCANNER_STORE_DRIVER") == "" {
			cfg.Store.Driver = DriverRedis
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.DSN = v
		if os.Getenv("SCANNER_STORE_DRIVER") == "" {
			cfg.Store.Driver = DriverPostgres
		}
	}

	if v := os.Getenv("SCANNER_HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	if v := os.Getenv("SCANNER_OCR_LANGUAGE"); v != "" {
		cfg.OCR.Language = v
	}

	if v := os.Getenv("SCANNER_OCR_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.OCR.Timeout = d
		}
	}
}
