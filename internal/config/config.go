// Package config provides unified configuration for the Meridian service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the configuration for the Meridian service.
type Config struct {
	// DataDir is the base directory for all data files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// HTTP configuration
	HTTP HTTPConfig `json:"http" yaml:"http"`

	// DDL execution configuration
	DDL DDLConfig `json:"ddl" yaml:"ddl"`

	// Snapshot configuration
	Snapshot SnapshotConfig `json:"snapshot" yaml:"snapshot"`

	// Storage configuration
	Storage StorageConfig `json:"storage" yaml:"storage"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	// Addr is the HTTP address for the API server
	Addr string `json:"addr" yaml:"addr"`

	// ReadTimeout is the HTTP read timeout
	ReadTimeout time.Duration `json:"read_timeout" yaml:"read_timeout"`

	// WriteTimeout is the HTTP write timeout
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`

	// IdleTimeout is the HTTP idle timeout
	IdleTimeout time.Duration `json:"idle_timeout" yaml:"idle_timeout"`
}

// DDLConfig holds DDL execution configuration.
type DDLConfig struct {
	// DefaultEngine is assumed for CREATE TABLE statements without an
	// ENGINE clause. Engine-specific column rules key off this value.
	DefaultEngine string `json:"default_engine" yaml:"default_engine"`

	// Concurrency is the number of statements of one batch analyzed in
	// parallel (1-64, default 8)
	Concurrency int `json:"concurrency" yaml:"concurrency"`
}

// SnapshotConfig holds schema snapshot configuration.
type SnapshotConfig struct {
	// Enabled controls whether periodic snapshot export runs
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Interval is the time between snapshot exports
	Interval time.Duration `json:"interval" yaml:"interval"`

	// RestoreOnStart re-registers the latest snapshot at startup
	RestoreOnStart bool `json:"restore_on_start" yaml:"restore_on_start"`
}

// StorageConfig holds storage configuration.
type StorageConfig struct {
	// Type is the storage type: local, s3
	Type string `json:"type" yaml:"type"`

	// Path is the local storage path (for local type)
	Path string `json:"path" yaml:"path"`

	// S3 configuration (for s3 type)
	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config holds S3 storage configuration.
type S3Config struct {
	// Bucket is the S3 bucket name
	Bucket string `json:"bucket" yaml:"bucket"`

	// Region is the AWS region
	Region string `json:"region" yaml:"region"`

	// Endpoint is the S3 endpoint (for S3-compatible storage)
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/meridian",
		HTTP: HTTPConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		DDL: DDLConfig{
			DefaultEngine: "olap",
			Concurrency:   8,
		},
		Snapshot: SnapshotConfig{
			Enabled:        true,
			Interval:       5 * time.Minute,
			RestoreOnStart: false,
		},
		Storage: StorageConfig{
			Type: "local",
			Path: "",
		},
	}
}

// Resolve resolves relative paths and sets defaults based on DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/meridian"
	}

	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(c.DataDir, "storage")
	}
}

// CatalogPath returns the path to the catalog database.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.DataDir, "catalog.db")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Storage.Type != "local" && c.Storage.Type != "s3" {
		return fmt.Errorf("invalid storage type: %s (must be local or s3)", c.Storage.Type)
	}

	if c.Storage.Type == "s3" && c.Storage.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required when storage type is s3")
	}

	if c.DDL.Concurrency < 1 || c.DDL.Concurrency > 64 {
		return fmt.Errorf("ddl.concurrency must be between 1 and 64, got %d", c.DDL.Concurrency)
	}

	if c.Snapshot.Enabled && c.Snapshot.Interval < time.Second {
		return fmt.Errorf("snapshot.interval must be at least 1s, got %s", c.Snapshot.Interval)
	}

	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
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

// LoadDotEnv loads a .env file into the process environment before
// LoadFromEnv is applied. A missing file is not an error.
func LoadDotEnv(paths ...string) {
	_ = godotenv.Load(paths...)
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the MERIDIAN_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("MERIDIAN_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	// HTTP configuration
	if v := os.Getenv("MERIDIAN_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}

	// DDL configuration
	if v := os.Getenv("MERIDIAN_DDL_DEFAULT_ENGINE"); v != "" {
		cfg.DDL.DefaultEngine = v
	}
	if v := os.Getenv("MERIDIAN_DDL_CONCURRENCY"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.DDL.Concurrency)
	}

	// Snapshot configuration
	if v := os.Getenv("MERIDIAN_SNAPSHOT_ENABLED"); v != "" {
		cfg.Snapshot.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("MERIDIAN_SNAPSHOT_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Snapshot.Interval = d
		}
	}
	if v := os.Getenv("MERIDIAN_SNAPSHOT_RESTORE_ON_START"); v != "" {
		cfg.Snapshot.RestoreOnStart = v == "true" || v == "1"
	}

	// Storage configuration
	if v := os.Getenv("MERIDIAN_STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("MERIDIAN_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("MERIDIAN_S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("MERIDIAN_S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("MERIDIAN_S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
}

// EnsureDirectories creates all required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		c.Storage.Path,
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
