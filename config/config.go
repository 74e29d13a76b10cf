// Package config loads bridge configuration from YAML files and environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the bridge needs to reach and drive the world
// backend. The zero value is not usable; start from Default().
type Config struct {
	// Host is the base URL of the GDMC HTTP interface.
	Host string `yaml:"host"`

	// Retries is the number of additional attempts after a failed backend
	// request.
	Retries int `yaml:"retries"`

	// TimeoutSeconds bounds each backend request.
	TimeoutSeconds int `yaml:"timeout_seconds"`

	// Workers caps how many backend calls may be in flight at once.
	Workers int `yaml:"workers"`

	// Buffering enables write buffering for the whole session instead of
	// only inside explicit buffered scopes.
	Buffering bool `yaml:"buffering"`

	// BufferLimit is the queued-write count that triggers an automatic
	// flush while buffering.
	BufferLimit int `yaml:"buffer_limit"`

	// JournalPath is the SQLite file recording dispatched operations.
	// Empty disables the journal.
	JournalPath string `yaml:"journal_path"`

	// HTTPAddr is the listen address for the server and http modes.
	HTTPAddr string `yaml:"http_addr"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Host:           "http://localhost:9000",
		Retries:        2,
		TimeoutSeconds: 10,
		Workers:        8,
		Buffering:      false,
		BufferLimit:    1024,
		HTTPAddr:       ":8080",
	}
}

// Load reads cfg from the YAML file at path, applies environment overrides,
// and validates the result. An empty path skips the file and uses defaults
// plus environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("GDMC_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("GDMC_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retries = n
		}
	}
	if v := os.Getenv("GDMC_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("GDMC_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if v := os.Getenv("GDMC_JOURNAL_PATH"); v != "" {
		cfg.JournalPath = v
	}
	if v := os.Getenv("GDMC_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.Retries)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout_seconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.BufferLimit < 0 {
		return fmt.Errorf("buffer_limit must not be negative, got %d", c.BufferLimit)
	}
	return nil
}

// Timeout returns the per-request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
