// Package config provides configuration for the sqltypes command line tool.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arkilian/sqltypes/pkg/backend/columnar"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration of the sqltypes tool.
type Config struct {
	// Backends restricts the matrix and the self-check to these backend IDs.
	// Empty means every backend compiled into the binary.
	Backends []string `json:"backends" yaml:"backends"`

	// Logging configuration
	Log LogConfig `json:"log" yaml:"log"`

	// Columnar chunk configuration
	Columnar ColumnarConfig `json:"columnar" yaml:"columnar"`

	// Self-check configuration
	Check CheckConfig `json:"check" yaml:"check"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `json:"level" yaml:"level"`

	// JSON switches the log formatter from text to JSON
	JSON bool `json:"json" yaml:"json"`
}

// ColumnarConfig holds columnar chunk options.
type ColumnarConfig struct {
	Compression bool `json:"compression" yaml:"compression"`
	Checksum    bool `json:"checksum" yaml:"checksum"`
}

// ChunkOptions converts the configuration into chunk writer options.
func (c ColumnarConfig) ChunkOptions() columnar.ChunkOptions {
	return columnar.ChunkOptions{Compression: c.Compression, Checksum: c.Checksum}
}

// CheckConfig holds self-check configuration.
type CheckConfig struct {
	// Samples is the number of generated values per binding and backend
	Samples int `json:"samples" yaml:"samples"`

	// Seed makes sampling reproducible. Zero picks a seed from the clock.
	Seed int64 `json:"seed" yaml:"seed"`

	// SQLite round-trips samples through a real database as well
	SQLite SQLiteConfig `json:"sqlite" yaml:"sqlite"`

	// Chunks round-trips samples through a columnar chunk as well
	Chunks bool `json:"chunks" yaml:"chunks"`
}

// SQLiteConfig holds the database used by the self-check.
type SQLiteConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Columnar: ColumnarConfig{
			Compression: true,
			Checksum:    true,
		},
		Check: CheckConfig{
			Samples: 100,
			SQLite: SQLiteConfig{
				Enabled: true,
				DSN:     "file:sqltypes_check?mode=memory&cache=shared",
			},
			Chunks: true,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Backends))
	for _, b := range c.Backends {
		if b == "" {
			return fmt.Errorf("backends must not contain empty names")
		}
		if seen[b] {
			return fmt.Errorf("backend %s listed twice", b)
		}
		seen[b] = true
	}

	if !logLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	if c.Check.Samples < 1 || c.Check.Samples > 100000 {
		return fmt.Errorf("check.samples must be between 1 and 100000, got %d", c.Check.Samples)
	}

	if c.Check.SQLite.Enabled && c.Check.SQLite.DSN == "" {
		return fmt.Errorf("check.sqlite.dsn is required when the sqlite check is enabled")
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file. Keys missing
// from the file keep their default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv applies SQLTYPES_* environment overrides to cfg.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SQLTYPES_BACKENDS"); v != "" {
		cfg.Backends = nil
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Backends = append(cfg.Backends, name)
			}
		}
	}

	// Logging configuration
	if v := os.Getenv("SQLTYPES_LOG_LEVEL"); v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SQLTYPES_LOG_JSON"); v != "" {
		cfg.Log.JSON = v == "true" || v == "1"
	}

	// Columnar configuration
	if v := os.Getenv("SQLTYPES_COLUMNAR_COMPRESSION"); v != "" {
		cfg.Columnar.Compression = v == "true" || v == "1"
	}
	if v := os.Getenv("SQLTYPES_COLUMNAR_CHECKSUM"); v != "" {
		cfg.Columnar.Checksum = v == "true" || v == "1"
	}

	// Self-check configuration
	if v := os.Getenv("SQLTYPES_CHECK_SAMPLES"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Check.Samples)
	}
	if v := os.Getenv("SQLTYPES_CHECK_SEED"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Check.Seed)
	}
	if v := os.Getenv("SQLTYPES_CHECK_SQLITE"); v != "" {
		cfg.Check.SQLite.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("SQLTYPES_CHECK_SQLITE_DSN"); v != "" {
		cfg.Check.SQLite.DSN = v
	}
	if v := os.Getenv("SQLTYPES_CHECK_CHUNKS"); v != "" {
		cfg.Check.Chunks = v == "true" || v == "1"
	}
}
