package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Host != "http://localhost:9000" {
		t.Errorf("host = %q", cfg.Host)
	}
	if cfg.Retries != 2 {
		t.Errorf("retries = %d", cfg.Retries)
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout())
	}
	if cfg.Workers != 8 {
		t.Errorf("workers = %d", cfg.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	t.Run("file overrides defaults", func(t *testing.T) {
		path := writeConfigFile(t, "host: http://minecraft:9000\nworkers: 4\ntimeout_seconds: 30\n")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Host != "http://minecraft:9000" {
			t.Errorf("host = %q", cfg.Host)
		}
		if cfg.Workers != 4 {
			t.Errorf("workers = %d", cfg.Workers)
		}
		if cfg.Timeout() != 30*time.Second {
			t.Errorf("timeout = %v", cfg.Timeout())
		}
		// Untouched fields keep their defaults.
		if cfg.Retries != 2 {
			t.Errorf("retries = %d", cfg.Retries)
		}
	})

	t.Run("empty path uses defaults", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Host != Default().Host {
			t.Errorf("host = %q", cfg.Host)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeConfigFile(t, "host: [unclosed\n")
		if _, err := Load(path); err == nil {
			t.Error("expected error for malformed yaml")
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := writeConfigFile(t, "host: http://from-file:9000\n")
		t.Setenv("GDMC_HOST", "http://from-env:9000")
		t.Setenv("GDMC_WORKERS", "16")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Host != "http://from-env:9000" {
			t.Errorf("host = %q", cfg.Host)
		}
		if cfg.Workers != 16 {
			t.Errorf("workers = %d", cfg.Workers)
		}
	})

	t.Run("invalid values rejected", func(t *testing.T) {
		path := writeConfigFile(t, "workers: 0\n")
		if _, err := Load(path); err == nil {
			t.Error("expected error for zero workers")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty host", func(c *Config) { c.Host = "" }},
		{"negative retries", func(c *Config) { c.Retries = -1 }},
		{"zero timeout", func(c *Config) { c.TimeoutSeconds = 0 }},
		{"negative buffer limit", func(c *Config) { c.BufferLimit = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
