package storage

import (
	"fmt"
	"os"
)

// Config holds Azure Blob Storage connection parameters and zone container names.
type Config struct {
	ConnectionString string `toml:"connection_string"`
	BronzeContainer  string `toml:"bronze_container"`
	SilverContainer  string `toml:"silver_container"`
	GoldContainer    string `toml:"gold_container"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ConnectionString string
	BronzeContainer  string
	SilverContainer  string
	GoldContainer    string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.BronzeContainer != "" {
		c.BronzeContainer = overlay.BronzeContainer
	}
	if overlay.SilverContainer != "" {
		c.SilverContainer = overlay.SilverContainer
	}
	if overlay.GoldContainer != "" {
		c.GoldContainer = overlay.GoldContainer
	}
}

func (c *Config) loadDefaults() {
	if c.BronzeContainer == "" {
		c.BronzeContainer = "bronze"
	}
	if c.SilverContainer == "" {
		c.SilverContainer = "silver"
	}
	if c.GoldContainer == "" {
		c.GoldContainer = "gold"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.BronzeContainer != "" {
		if v := os.Getenv(env.BronzeContainer); v != "" {
			c.BronzeContainer = v
		}
	}
	if env.SilverContainer != "" {
		if v := os.Getenv(env.SilverContainer); v != "" {
			c.SilverContainer = v
		}
	}
	if env.GoldContainer != "" {
		if v := os.Getenv(env.GoldContainer); v != "" {
			c.GoldContainer = v
		}
	}
}

func (c *Config) validate() error {
	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required")
	}
	seen := map[string]bool{}
	for _, name := range []string{c.BronzeContainer, c.SilverContainer, c.GoldContainer} {
		if name == "" {
			return fmt.Errorf("zone container names required")
		}
		if seen[name] {
			return fmt.Errorf("zone containers must be distinct: %s", name)
		}
		seen[name] = true
	}
	return nil
}
