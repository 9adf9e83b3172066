package logging

// #region config
// Config selects the zap encoder and level.
type Config struct {
	Level string // debug, info, warn, error
	JSON  bool   // production JSON encoder instead of the console encoder
}

// #endregion config
