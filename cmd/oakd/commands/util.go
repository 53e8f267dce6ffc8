package commands

import (
	"fmt"

	"github.com/marmos91/oakd/internal/logger"
	"github.com/marmos91/oakd/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.SetSensitiveLogging(cfg.Logging.LogSensitiveContent)
	return nil
}

// getConfigSource describes where the loaded configuration came from, for
// a startup log line.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}
