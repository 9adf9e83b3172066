package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperleaf/hyperleaf-go/internal/tensor"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// #region defaults
// Default returns the settings used when no file is present.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			WeightsPath:      "fusionnet.safetensors",
			Rescale:          string(tensor.RescaleMaxAboveOne),
			ParallelBranches: true,
		},
		Server: ServerConfig{
			Addr:            "localhost:50061",
			MaxMessageBytes: 256 << 20,
		},
		History: HistoryConfig{
			Enabled: true,
			DBPath:  "hyperleaf.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// #endregion defaults

// #region load
// Load reads a YAML file over the defaults. A missing file yields defaults.
// Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config as YAML, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	c.Model.WeightsPath = envOr(EnvWeights, c.Model.WeightsPath)
	c.History.DBPath = envOr(EnvDB, c.History.DBPath)
	c.Server.Addr = envOr(EnvAddr, c.Server.Addr)
	c.Logging.Level = envOr(EnvLogLevel, c.Logging.Level)
}

// #endregion load

// #region validate
// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	if c.Model.WeightsPath == "" {
		return errors.New("model.weights_path is empty")
	}
	if _, err := tensor.ParseRescalePolicy(c.Model.Rescale); err != nil {
		return fmt.Errorf("model.rescale: %w", err)
	}
	if c.Server.MaxMessageBytes <= 0 {
		return fmt.Errorf("server.max_message_bytes must be positive, got %d", c.Server.MaxMessageBytes)
	}
	if c.History.Enabled && c.History.DBPath == "" {
		return errors.New("history.db_path is empty while history is enabled")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}

// RescalePolicy returns the parsed model.rescale setting.
func (c *Config) RescalePolicy() tensor.RescalePolicy {
	p, err := tensor.ParseRescalePolicy(c.Model.Rescale)
	if err != nil {
		return tensor.RescaleMaxAboveOne
	}
	return p
}

// #endregion validate

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
