// Package config loads taskboard settings.
//
// Settings come from defaults, then an optional YAML file (JSON and JSONC
// files are accepted too), then environment variables. Command-line flags
// are applied by main on top of the result.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"taskboard/internal/store"
)

// Storage backend names.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
	BackendMySQL  = "mysql"
)

// Config holds all settings for the server.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `yaml:"port"`

	// StaticDir is the directory of built front-end files.
	StaticDir string `yaml:"static_dir"`

	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	// Backend is one of sqlite, memory or mysql.
	Backend string `yaml:"backend"`

	// Path is the SQLite database file.
	Path string `yaml:"path"`

	// DSN is the MySQL data source name.
	DSN string `yaml:"dsn"`

	// Key is the storage key holding the task collection.
	Key string `yaml:"key"`

	// QuotaBytes limits the size of a stored value. Zero disables the limit.
	QuotaBytes int `yaml:"quota_bytes"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Port:      "8080",
		StaticDir: "dist",
		Storage: StorageConfig{
			Backend:    BackendSQLite,
			Path:       "./data/taskboard.db",
			Key:        store.DefaultKey,
			QuotaBytes: store.DefaultQuotaBytes,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the file at path (if
// non-empty) and the process environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnv(os.Getenv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// YAML is a superset of JSON once comments and trailing commas are gone.
		data = jsonc.ToJSON(data)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	setString := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	setString("PORT", &c.Port)
	setString("STATIC_DIR", &c.StaticDir)
	setString("STORAGE_BACKEND", &c.Storage.Backend)
	setString("DB_PATH", &c.Storage.Path)
	setString("MYSQL_DSN", &c.Storage.DSN)
	setString("STORAGE_KEY", &c.Storage.Key)
	setString("LOG_LEVEL", &c.Log.Level)
	setString("LOG_FORMAT", &c.Log.Format)

	if v := getenv("STORAGE_QUOTA_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Storage.QuotaBytes = n
		}
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535, got %q", c.Port)
	}

	switch c.Storage.Backend {
	case BackendSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite backend")
		}
	case BackendMySQL:
		if c.Storage.DSN == "" {
			return errors.New("storage.dsn is required for the mysql backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be 'sqlite', 'memory', or 'mysql', got %q", c.Storage.Backend)
	}

	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage.key is required")
	}
	if c.Storage.QuotaBytes < 0 {
		return errors.New("storage.quota_bytes cannot be negative")
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json', got %q", c.Log.Format)
	}

	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// SlogLevel converts the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level must be debug, info, warn, or error, got %q", l.Level)
	}
	return level, nil
}

// NewLogger builds the process logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := l.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
