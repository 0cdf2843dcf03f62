package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Theme string `yaml:"theme"`
	// Endpoint is the base URL of the catalog server the table picker reads.
	Endpoint string `yaml:"endpoint"`
	// User is sent in the access header so the catalog can filter tables.
	User           string       `yaml:"user,omitempty"`
	RequestTimeout int          `yaml:"request_timeout"` // seconds
	StatePath      string       `yaml:"state_path,omitempty"`
	Log            LogConfig    `yaml:"log"`
	Audit          AuditConfig  `yaml:"audit"`
	Server         ServerConfig `yaml:"server"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Path  string `yaml:"path,omitempty"`
}

// AuditConfig holds audit log settings.
type AuditConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Path      string `yaml:"path,omitempty"`
	MaxSizeMB int    `yaml:"max_size_mb"`
}

// ServerConfig holds settings for the catalog server.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	Driver     string `yaml:"driver"` // sqlite, postgres, mysql, duckdb
	DSN        string `yaml:"dsn,omitempty"`
	UserHeader string `yaml:"user_header"`
	// Access maps a user name to glob patterns over table full names
	// (project:dataset.table). Empty means every table is visible.
	Access map[string][]string `yaml:"access,omitempty"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Theme:          "default",
		Endpoint:       "http://localhost:8088",
		RequestTimeout: 30,
		Log: LogConfig{
			Level: "info",
		},
		Audit: AuditConfig{
			MaxSizeMB: 10,
		},
		Server: ServerConfig{
			Addr:       ":8088",
			Driver:     "sqlite",
			UserHeader: "X-Bqlab-User",
		},
	}
}

// ConfigDir returns the bqlab configuration directory, typically
// ~/.config/bqlab/.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config dir: %w", err)
	}
	return filepath.Join(base, "bqlab"), nil
}

// Load reads a Config from the YAML file at path. If the file does not exist,
// it returns DefaultConfig without error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadDefault loads configuration from ConfigDir()/config.yaml.
func LoadDefault() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return Load(filepath.Join(dir, "config.yaml"))
}

// Save writes the Config to the YAML file at path, creating any necessary
// parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SaveDefault writes the Config to ConfigDir()/config.yaml.
func (c *Config) SaveDefault() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return c.Save(filepath.Join(dir, "config.yaml"))
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// ResolvePath returns p when set, otherwise name inside ConfigDir.
func ResolvePath(p, name string) (string, error) {
	if p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// CatalogDSN returns the server DSN, defaulting to catalog.db in ConfigDir
// for the sqlite driver.
func (c *Config) CatalogDSN() (string, error) {
	if c.Server.DSN != "" {
		return c.Server.DSN, nil
	}
	if c.Server.Driver != "" && c.Server.Driver != "sqlite" {
		return "", fmt.Errorf("config: server.dsn is required for driver %q", c.Server.Driver)
	}
	return ResolvePath("", "catalog.db")
}
