package config

import (
	"log/slog"
	"os"
)

// ProjectConfigFile is the config file looked up in the working directory
// when no path is given.
const ProjectConfigFile = "lexgraph.yaml"

// Loader resolves the configuration for a run.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load returns the defaults merged with the file at path. An empty path
// falls back to ProjectConfigFile if it exists. The result is not
// validated; callers apply their overrides first.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		if _, err := os.Stat(ProjectConfigFile); err != nil {
			l.logger.Debug("No project config found")
			return config, nil
		}
		path = ProjectConfigFile
	}

	fileConfig, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("Loaded config", slog.String("path", path))
	return fileConfig, nil
}
