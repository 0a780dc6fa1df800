package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Tracer config
	assert.True(t, cfg.Tracer.Strict)
	assert.False(t, cfg.Tracer.ForceOutplace)
	assert.True(t, cfg.Tracer.Provenance)
	assert.Equal(t, 32, cfg.Tracer.StackDepth)

	// Host config
	assert.Equal(t, 1024, cfg.Host.MaxCallStack)
	assert.Equal(t, 4, cfg.Host.PoolSize)
	assert.Equal(t, 10*time.Second, cfg.Host.Timeout)
	assert.Equal(t, 3, cfg.Host.BreakerTrips)
	assert.Equal(t, 30*time.Second, cfg.Host.BreakerCooldown)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, "tracer", cfg.Metrics.Namespace)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.True(t, cfg.Tracer.Strict)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"TRACER_STRICT":         "false",
		"TRACER_FORCE_OUTPLACE": "true",
		"TRACER_PROVENANCE":     "false",
		"TRACER_STACK_DEPTH":    "8",
		"HOST_MAX_CALL_STACK":   "256",
		"HOST_POOL_SIZE":        "2",
		"HOST_TIMEOUT":          "3s",
		"HOST_BREAKER_TRIPS":    "1",
		"LOG_LEVEL":             "debug",
		"LOG_DEV":               "true",
		"METRICS_NAMESPACE":     "jit",
	}

	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Tracer.Strict)
	assert.True(t, cfg.Tracer.ForceOutplace)
	assert.False(t, cfg.Tracer.Provenance)
	assert.Equal(t, 8, cfg.Tracer.StackDepth)

	assert.Equal(t, 256, cfg.Host.MaxCallStack)
	assert.Equal(t, 2, cfg.Host.PoolSize)
	assert.Equal(t, 3*time.Second, cfg.Host.Timeout)
	assert.Equal(t, 1, cfg.Host.BreakerTrips)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "jit", cfg.Metrics.Namespace)
}

func TestLoadInvalidBool(t *testing.T) {
	t.Setenv("TRACER_STRICT", "maybe")

	_, err := Load()
	assert.Error(t, err)

	cfg := LoadOrDefault()
	assert.True(t, cfg.Tracer.Strict)
}

func TestLoadIgnoresUnrelatedEnv(t *testing.T) {
	os.Unsetenv("TRACER_STRICT")
	t.Setenv("PORT", "9000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Tracer.Strict)
}
