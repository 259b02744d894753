// Package config loads and finalizes the service configuration from TOML
// files and environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/mlavergne/stratify/pkg/database"
	"github.com/mlavergne/stratify/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvStratifyEnv             = "STRATIFY_ENV"
	EnvStratifyShutdownTimeout = "STRATIFY_SHUTDOWN_TIMEOUT"
	EnvStratifyVersion         = "STRATIFY_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "STRATIFY_DB_HOST",
	Port:            "STRATIFY_DB_PORT",
	Name:            "STRATIFY_DB_NAME",
	User:            "STRATIFY_DB_USER",
	Password:        "STRATIFY_DB_PASSWORD",
	SSLMode:         "STRATIFY_DB_SSL_MODE",
	MaxOpenConns:    "STRATIFY_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "STRATIFY_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "STRATIFY_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "STRATIFY_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ConnectionString: "STRATIFY_STORAGE_CONNECTION_STRING",
	BronzeContainer:  "STRATIFY_STORAGE_BRONZE_CONTAINER",
	SilverContainer:  "STRATIFY_STORAGE_SILVER_CONTAINER",
	GoldContainer:    "STRATIFY_STORAGE_GOLD_CONTAINER",
}

// Config is the root configuration for the stratify service and pipeline.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Pipeline        PipelineConfig  `toml:"pipeline"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the STRATIFY_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvStratifyEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Pipeline.Merge(&overlay.Pipeline)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvStratifyShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvStratifyVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func overlayPath() string {
	env := os.Getenv(EnvStratifyEnv)
	if env == "" {
		return ""
	}

	path := fmt.Sprintf(OverlayConfigPattern, env)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}
