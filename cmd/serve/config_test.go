package main

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HEADSHOT_PORT", "HEADSHOT_LOG_LEVEL", "HEADSHOT_CORS_ORIGIN", "HEADSHOT_TIMEOUT",
		"IMAGE_PROVIDER", "OPENAI_API_KEY", "GEMINI_API_KEY", "RUNWARE_API_KEY",
		"GOOGLE_CLOUD_PROJECT", "GOOGLE_CLOUD_LOCATION",
		"RUNWARE_STRENGTH", "RUNWARE_STEPS", "STORAGE_DIR",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "*", cfg.CORSOrigin)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, 15, cfg.RunwareStrength)
	assert.Equal(t, 20, cfg.RunwareSteps)
	assert.Equal(t, "./data/images", cfg.StorageDir)
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gm-test")
	t.Setenv("IMAGE_PROVIDER", "gemini")
	t.Setenv("HEADSHOT_PORT", "9090")
	t.Setenv("HEADSHOT_TIMEOUT", "45s")
	t.Setenv("HEADSHOT_LOG_LEVEL", "debug")
	t.Setenv("RUNWARE_STEPS", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, 20, cfg.RunwareSteps)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{Port: "8000", LogLevel: "info", Timeout: time.Minute, OpenAIKey: "k", RunwareStrength: 15}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"no provider keys", func(c *Config) { c.OpenAIKey = "" }, "at least one"},
		{"bad port", func(c *Config) { c.Port = "http" }, "HEADSHOT_PORT"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "HEADSHOT_TIMEOUT"},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, "unknown log level"},
		{"strength out of range", func(c *Config) { c.RunwareStrength = 80 }, "RUNWARE_STRENGTH"},
		{"zero strength", func(c *Config) { c.RunwareStrength = 0 }, "RUNWARE_STRENGTH"},
	}

	require.NoError(t, valid().Validate())
	vertexOnly := valid()
	vertexOnly.OpenAIKey = ""
	vertexOnly.VertexProject = "my-project"
	require.NoError(t, vertexOnly.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadConfig_ZeroStrengthRejected(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("RUNWARE_STRENGTH", "0")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUNWARE_STRENGTH")
}
