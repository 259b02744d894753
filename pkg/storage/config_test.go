package storage_test

import (
	"testing"

	"github.com/mlavergne/stratify/pkg/storage"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{ConnectionString: "UseDevelopmentStorage=true"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.BronzeContainer != "bronze" || cfg.SilverContainer != "silver" || cfg.GoldContainer != "gold" {
		t.Errorf("unexpected zone defaults: %+v", cfg)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_STORAGE_CONN", "UseDevelopmentStorage=true")
	t.Setenv("TEST_STORAGE_BRONZE", "raw")

	cfg := storage.Config{}
	env := &storage.Env{
		ConnectionString: "TEST_STORAGE_CONN",
		BronzeContainer:  "TEST_STORAGE_BRONZE",
	}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.ConnectionString != "UseDevelopmentStorage=true" {
		t.Errorf("connection string = %s", cfg.ConnectionString)
	}
	if cfg.BronzeContainer != "raw" {
		t.Errorf("bronze container = %s, want raw", cfg.BronzeContainer)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  storage.Config
	}{
		{"missing connection string", storage.Config{}},
		{"duplicate containers", storage.Config{
			ConnectionString: "UseDevelopmentStorage=true",
			BronzeContainer:  "zone",
			SilverContainer:  "zone",
			GoldContainer:    "gold",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
