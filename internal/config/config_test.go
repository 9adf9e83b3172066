package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvWeights, EnvDB, EnvAddr, EnvLogLevel} {
		t.Setenv(k, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
	assert.Equal(t, tensor.RescaleMaxAboveOne, Default().RescalePolicy())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "hyperleaf.yaml")
	body := "model:\n  weights_path: /srv/w.safetensors\n  rescale: none\nserver:\n  addr: 0.0.0.0:9000\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/w.safetensors", cfg.Model.WeightsPath)
	assert.Equal(t, tensor.RescaleNone, cfg.RescalePolicy())
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().Server.MaxMessageBytes, cfg.Server.MaxMessageBytes)
	assert.True(t, cfg.Model.ParallelBranches)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvWeights, "/env/w.safetensors")
	t.Setenv(EnvDB, "/env/h.db")
	t.Setenv(EnvAddr, "127.0.0.1:1")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/env/w.safetensors", cfg.Model.WeightsPath)
	assert.Equal(t, "/env/h.db", cfg.History.DBPath)
	assert.Equal(t, "127.0.0.1:1", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvEmptyKeepsValue(t *testing.T) {
	clearEnv(t)
	cfg := &Config{Server: ServerConfig{Addr: "keep"}}
	cfg.applyEnvOverrides()
	assert.Equal(t, "keep", cfg.Server.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty weights", func(c *Config) { c.Model.WeightsPath = "" }},
		{"unknown rescale", func(c *Config) { c.Model.Rescale = "zscore" }},
		{"zero message size", func(c *Config) { c.Server.MaxMessageBytes = 0 }},
		{"history without db", func(c *Config) { c.History.DBPath = "" }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := Default()
	cfg.History.Enabled = false
	cfg.History.DBPath = ""
	assert.NoError(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "hyperleaf.yaml")
	cfg := Default()
	cfg.Logging.JSON = true
	cfg.Server.MaxMessageBytes = 1024
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
