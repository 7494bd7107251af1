package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"

	"github.com/zhmu-100/RationService/internal/tablestore/httpstore"
	"github.com/zhmu-100/RationService/internal/tablestore/sqlstore"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// Prefix is prepended to every variable; each one is also read unprefixed.
const Prefix = "RATION"

// Config holds the configuration for the ration service.
// Example: RATION_PORT=8001 or simply PORT=8001.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	Port int `envconfig:"PORT" default:"8001"`

	// Remote table service
	DBMode           string `envconfig:"DB_MODE" default:"local"`
	DBHost           string `envconfig:"DB_HOST" default:"localhost"`
	DBPort           int    `envconfig:"DB_PORT" default:"8080"`
	DBTimeoutSeconds int    `envconfig:"DB_TIMEOUT_SECONDS" default:"30"`

	// Local table service (ration-service tablestore)
	TableStoreDriver string `envconfig:"TABLESTORE_DRIVER" default:"sqlite"`
	TableStorePort   int    `envconfig:"TABLESTORE_PORT" default:"8080"`
	SQLitePath       string `envconfig:"SQLITE_PATH" default:"data/ration.db"`
	PostgresDSN      string `envconfig:"POSTGRES_DSN" default:""`

	// Activity events
	ActivitySink          string `envconfig:"ACTIVITY_SINK" default:"log"`
	ActivityBuffer        int    `envconfig:"ACTIVITY_BUFFER" default:"1024"`
	RedisHost             string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort             int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword         string `envconfig:"REDIS_PASSWORD" default:""`
	RedisConnectSeconds   int    `envconfig:"REDIS_CONNECT_TIMEOUT_SECONDS" default:"5"`
	LoggerActivityChannel string `envconfig:"LOGGER_ACTIVITY_CHANNEL" default:"logger:activity"`
	LoggerErrorChannel    string `envconfig:"LOGGER_ERROR_CHANNEL" default:"logger:error"`

	// Health & startup
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
	BootstrapTimeoutSeconds   int `envconfig:"BOOTSTRAP_TIMEOUT_SECONDS" default:"10"`

	// Per-client rate limiting; RPS <= 0 disables it.
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"0"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`

	// Derived by ResolveDefaults
	TableStoreURL string `ignored:"true"`
}

// ResolveDefaults normalises enumerations and derives TableStoreURL.
func (c *Config) ResolveDefaults() error {
	c.DBMode = strings.ToLower(strings.TrimSpace(c.DBMode))
	if c.DBMode == "" {
		c.DBMode = string(httpstore.ModeLocal)
	}
	url, err := httpstore.BaseURL(httpstore.Mode(c.DBMode), c.DBHost, c.DBPort)
	if err != nil {
		return fmt.Errorf("unsupported DB_MODE: %s", c.DBMode)
	}
	c.TableStoreURL = url

	d, err := sqlstore.ParseDialect(c.TableStoreDriver)
	if err != nil {
		return fmt.Errorf("unsupported TABLESTORE_DRIVER: %s", c.TableStoreDriver)
	}
	c.TableStoreDriver = string(d)

	c.ActivitySink = strings.ToLower(strings.TrimSpace(c.ActivitySink))
	switch c.ActivitySink {
	case "log", "redis":
	case "":
		c.ActivitySink = "log"
	default:
		return fmt.Errorf("unsupported ACTIVITY_SINK: %s", c.ActivitySink)
	}

	switch c.Environment {
	case EnvDevelopment, EnvTesting, EnvProduction:
	default:
		return fmt.Errorf("unsupported ENVIRONMENT: %s", c.Environment)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT: %d", c.Port)
	}
	if c.DBTimeoutSeconds <= 0 {
		return fmt.Errorf("DB_TIMEOUT_SECONDS must be > 0")
	}
	if c.HealthIntervalSeconds <= 0 || c.HealthProbeTimeoutSeconds <= 0 {
		return fmt.Errorf("health interval and probe timeout must be > 0")
	}
	return nil
}

// LoadDotEnv reads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// New loads .env (if present) and parses the environment.
func New() (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Info().
		Str("environment", string(cfg.Environment)).
		Int("port", cfg.Port).
		Str("db_mode", cfg.DBMode).
		Str("tablestore_url", cfg.TableStoreURL).
		Str("activity_sink", cfg.ActivitySink).
		Bool("rate_limited", cfg.RateLimitRPS > 0).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	cfg := &Config{
		Environment:               EnvTesting,
		LogLevel:                  "debug",
		Port:                      8001,
		DBMode:                    "local",
		DBHost:                    "localhost",
		DBPort:                    8080,
		DBTimeoutSeconds:          5,
		TableStoreDriver:          "sqlite",
		TableStorePort:            8080,
		ActivitySink:              "log",
		ActivityBuffer:            64,
		LoggerActivityChannel:     "logger:activity",
		LoggerErrorChannel:        "logger:error",
		RedisHost:                 "localhost",
		RedisPort:                 6379,
		RedisConnectSeconds:       1,
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
		BootstrapTimeoutSeconds:   5,
		RateLimitBurst:            20,
	}
	_ = cfg.ResolveDefaults()
	return cfg
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

// HTTPAddr returns the API listen address.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// TableStoreAddr returns the listen address of the local table service.
func (c *Config) TableStoreAddr() string {
	return fmt.Sprintf(":%d", c.TableStorePort)
}

func (c *Config) DBTimeout() time.Duration {
	return time.Duration(c.DBTimeoutSeconds) * time.Second
}

func (c *Config) HealthInterval() time.Duration {
	return time.Duration(c.HealthIntervalSeconds) * time.Second
}

func (c *Config) HealthProbeTimeout() time.Duration {
	return time.Duration(c.HealthProbeTimeoutSeconds) * time.Second
}

func (c *Config) BootstrapTimeout() time.Duration {
	return time.Duration(c.BootstrapTimeoutSeconds) * time.Second
}

func (c *Config) RedisConnectTimeout() time.Duration {
	return time.Duration(c.RedisConnectSeconds) * time.Second
}
