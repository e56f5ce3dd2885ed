package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 4, cfg.Batch.Workers)
	assert.True(t, cfg.Batch.ContinueOnError)
	assert.Equal(t, "eng", cfg.Pipeline.Recognizer.Language)
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"negative port", func(c *Config) { c.Server.Port = -1 }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadMB = 0 }},
		{"zero workers", func(c *Config) { c.Batch.Workers = 0 }},
		{"bad scale factor", func(c *Config) {
			c.Pipeline.Normalize.Scale = true
			c.Pipeline.Normalize.ScaleFactor = 0
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoaderDefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slipscan.yaml")
	data := []byte(`
log_level: debug
output:
  format: yaml
server:
  port: 9090
batch:
  workers: 8
pipeline:
  recognizer:
    language: deu
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := NewLoader().LoadWithFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "yaml", cfg.Output.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Batch.Workers)
	assert.Equal(t, "deu", cfg.Pipeline.Recognizer.Language)

	// Untouched keys keep their defaults.
	assert.Equal(t, 20, cfg.Server.MaxUploadMB)
	assert.True(t, cfg.Pipeline.Normalize.Grayscale)
}

func TestLoadWithFileInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slipscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: loud\n"), 0o600))

	_, err := NewLoader().LoadWithFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoadWithFileMissing(t *testing.T) {
	_, err := NewLoader().LoadWithFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestEnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("SLIPSCAN_SERVER_PORT", "9191")
	t.Setenv("SLIPSCAN_LOG_LEVEL", "warn")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
}
