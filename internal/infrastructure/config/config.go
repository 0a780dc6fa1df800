package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Tracer  TracerConfig
	Host    HostConfig
	Logging LogConfig
	Metrics MetricsConfig
}

// TracerConfig holds the default modes of a tracing session.
type TracerConfig struct {
	Strict        bool `envconfig:"TRACER_STRICT" default:"true"`
	ForceOutplace bool `envconfig:"TRACER_FORCE_OUTPLACE" default:"false"`
	Provenance    bool `envconfig:"TRACER_PROVENANCE" default:"true"`
	StackDepth    int  `envconfig:"TRACER_STACK_DEPTH" default:"32"`
}

// HostConfig holds JavaScript host configuration.
type HostConfig struct {
	MaxCallStack int           `envconfig:"HOST_MAX_CALL_STACK" default:"1024"`
	PoolSize     int           `envconfig:"HOST_POOL_SIZE" default:"4"`
	Timeout      time.Duration `envconfig:"HOST_TIMEOUT" default:"10s"`

	BreakerTrips    int           `envconfig:"HOST_BREAKER_TRIPS" default:"3"`
	BreakerCooldown time.Duration `envconfig:"HOST_BREAKER_COOLDOWN" default:"30s"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Namespace string `envconfig:"METRICS_NAMESPACE" default:"tracer"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Tracer: TracerConfig{
			Strict:        true,
			ForceOutplace: false,
			Provenance:    true,
			StackDepth:    32,
		},
		Host: HostConfig{
			MaxCallStack: 1024,
			PoolSize:     4,
			Timeout:      10 * time.Second,

			BreakerTrips:    3,
			BreakerCooldown: 30 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Metrics: MetricsConfig{
			Namespace: "tracer",
		},
	}
}
