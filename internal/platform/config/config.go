// Package config loads settings for the ticket commands.
//
// Values are layered: built-in defaults, then an optional YAML file
// (--config flag or TICKET_CONFIG), then a .env file, then the process
// environment. Later layers win.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/srgjo27/rail_ticket/internal/platform/database"
)

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	// AccountBackend selects where accounts are committed: "file" or
	// "postgres". The postgres backend also reads the catalog from the
	// database.
	AccountBackend string `yaml:"account_backend"`
	AccountsPath   string `yaml:"accounts_path"`
	CatalogPath    string `yaml:"catalog_path"`

	Database database.Config `yaml:"database"`
	Redis    RedisConfig     `yaml:"redis"`

	AuditInterval time.Duration `yaml:"audit_interval"`
	LogLevel      string        `yaml:"log_level"`
}

type RedisConfig struct {
	Enabled bool          `yaml:"enabled"`
	Host    string        `yaml:"host"`
	Port    string        `yaml:"port"`
	TTL     time.Duration `yaml:"ttl"`
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

func Default() *Config {
	return &Config{
		HTTPAddr:       ":8080",
		AccountBackend: BackendFile,
		AccountsPath:   "data/users.json",
		CatalogPath:    "data/trains.json",
		Database: database.Config{
			Host:   "localhost",
			Port:   "5432",
			User:   "postgres",
			DBName: "rail_ticket",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
			TTL:  30 * time.Second,
		},
		AuditInterval: time.Minute,
		LogLevel:      "info",
	}
}

// Load builds the configuration. path may be empty, in which case
// TICKET_CONFIG is consulted; no file at all is fine. envFile is loaded
// when it exists and never overrides variables already set.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if path == "" {
		path = os.Getenv("TICKET_CONFIG")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.AccountBackend, "ACCOUNT_BACKEND")
	setString(&c.AccountsPath, "ACCOUNTS_PATH")
	setString(&c.CatalogPath, "CATALOG_PATH")
	setString(&c.LogLevel, "LOG_LEVEL")

	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.Port, "DB_PORT")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.DBName, "DB_NAME")

	setString(&c.Redis.Host, "REDIS_HOST")
	setString(&c.Redis.Port, "REDIS_PORT")

	if v, ok := os.LookupEnv("CACHE_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("CACHE_ENABLED: %w", err)
		}
		c.Redis.Enabled = enabled
	}

	for name, dst := range map[string]*time.Duration{
		"CACHE_TTL":      &c.Redis.TTL,
		"AUDIT_INTERVAL": &c.AuditInterval,
	} {
		v, ok := os.LookupEnv(name)
		if !ok {
			continue
		}

		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}

	return nil
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

func (c *Config) Validate() error {
	switch c.AccountBackend {
	case BackendFile:
		if c.AccountsPath == "" || c.CatalogPath == "" {
			return errors.New("file backend needs accounts_path and catalog_path")
		}
	case BackendPostgres:
	default:
		return fmt.Errorf("unknown account backend %q", c.AccountBackend)
	}

	if c.AuditInterval <= 0 {
		return fmt.Errorf("audit interval must be positive, got %s", c.AuditInterval)
	}

	if c.Redis.Enabled && c.Redis.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Redis.TTL)
	}

	return nil
}

// Level maps LogLevel onto slog; unknown names fall back to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
