package config

// #region config
// Config is the top-level settings file for every hyperleaf binary.
type Config struct {
	Model   ModelConfig   `yaml:"model"`
	Server  ServerConfig  `yaml:"server"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
}

// ModelConfig selects the weight file and inference switches.
type ModelConfig struct {
	WeightsPath      string `yaml:"weights_path"`
	Rescale          string `yaml:"rescale"` // "max_above_one" or "none"
	ParallelBranches bool   `yaml:"parallel_branches"`
}

// ServerConfig configures the gRPC listener.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	MaxMessageBytes int    `yaml:"max_message_bytes"`
}

// HistoryConfig configures the prediction store.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// #endregion config

// #region env
// Environment variables that override file values.
const (
	EnvWeights  = "HYPERLEAF_WEIGHTS"
	EnvDB       = "HYPERLEAF_DB"
	EnvAddr     = "HYPERLEAF_ADDR"
	EnvLogLevel = "HYPERLEAF_LOG_LEVEL"
)

// #endregion env
