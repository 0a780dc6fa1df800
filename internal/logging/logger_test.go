package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}

func TestNewBuildsLogger(t *testing.T) {
	logger, err := New(Config{Level: "debug", OutputPaths: []string{"stderr"}})
	require.NoError(t, err)
	assert.NotNil(t, logger.Logger)
}

func TestWrapNil(t *testing.T) {
	logger := Wrap(nil)
	require.NotNil(t, logger)
	logger.Info("discarded")
}

func TestNamedAndFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := Wrap(zap.New(core)).Named("tracer").With(TraceID("trace_1"))

	logger.Debug("node recorded", NodeKind("aten::add"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "tracer", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "trace_1", fields["trace_id"])
	assert.Equal(t, "aten::add", fields["node_kind"])
}

func TestPresetConfigs(t *testing.T) {
	prod := DefaultConfig()
	assert.Equal(t, "info", prod.Level)
	assert.False(t, prod.Development)

	dev := DevelopmentConfig()
	assert.Equal(t, "debug", dev.Level)
	assert.True(t, dev.Development)

	for _, cfg := range []Config{prod, dev} {
		logger, err := New(cfg)
		require.NoError(t, err)
		assert.NotNil(t, logger.Logger)
	}
}

func TestIsDevelopment(t *testing.T) {
	tests := []struct {
		env  string
		want bool
	}{
		{"development", true},
		{"dev", true},
		{"production", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv("TRACER_ENV", tt.env)
			assert.Equal(t, tt.want, IsDevelopment())
		})
	}
}
