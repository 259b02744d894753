package config

import (
	"fmt"
	"os"
	"time"
)

const (
	EnvPipelineClientsObject   = "STRATIFY_PIPELINE_CLIENTS_OBJECT"
	EnvPipelinePurchasesObject = "STRATIFY_PIPELINE_PURCHASES_OBJECT"
	EnvPipelineRetryDelay      = "STRATIFY_PIPELINE_RETRY_DELAY"
)

// PipelineConfig holds pipeline run parameters: the required silver object
// names and the transient I/O retry delay.
type PipelineConfig struct {
	ClientsObject   string `toml:"clients_object"`
	PurchasesObject string `toml:"purchases_object"`
	RetryDelay      string `toml:"retry_delay"`
}

// RetryDelayDuration returns RetryDelay as a time.Duration.
func (c *PipelineConfig) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.ClientsObject != "" {
		c.ClientsObject = overlay.ClientsObject
	}
	if overlay.PurchasesObject != "" {
		c.PurchasesObject = overlay.PurchasesObject
	}
	if overlay.RetryDelay != "" {
		c.RetryDelay = overlay.RetryDelay
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.ClientsObject == "" {
		c.ClientsObject = "clients.csv"
	}
	if c.PurchasesObject == "" {
		c.PurchasesObject = "achats.csv"
	}
	if c.RetryDelay == "" {
		c.RetryDelay = "2s"
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineClientsObject); v != "" {
		c.ClientsObject = v
	}
	if v := os.Getenv(EnvPipelinePurchasesObject); v != "" {
		c.PurchasesObject = v
	}
	if v := os.Getenv(EnvPipelineRetryDelay); v != "" {
		c.RetryDelay = v
	}
}

func (c *PipelineConfig) validate() error {
	if _, err := time.ParseDuration(c.RetryDelay); err != nil {
		return fmt.Errorf("invalid retry_delay: %w", err)
	}
	return nil
}
