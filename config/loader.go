package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
)

const (
	// ProjectConfigFile is the name of the project-level config file
	ProjectConfigFile = "folio.yaml"
	// UserConfigDir is the directory for user-level config
	UserConfigDir = ".config/folio"
	// UserConfigFile is the name of the user-level config file
	UserConfigFile = "config.yaml"
	// EnvDataDir overrides the data directory
	EnvDataDir = "FOLIO_DATA_DIR"
)

// Loader handles configuration loading with layered precedence
type Loader struct {
	logger *slog.Logger
	home   func() (string, error)
	cwd    func() (string, error)
}

// NewLoader creates a new configuration loader
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger, home: os.UserHomeDir, cwd: os.Getwd}
}

// Load loads configuration with layered precedence, each layer overriding
// only the keys it sets:
// 1. Default config
// 2. User config (~/.config/folio/config.yaml)
// 3. Project config (folio.yaml in the current directory)
// 4. Explicit config file, when path is not empty
// 5. FOLIO_DATA_DIR
//
// A missing explicit file is an error; missing user or project files are not.
func (l *Loader) Load(path string) (*Config, error) {
	config := DefaultConfig()

	for _, candidate := range []string{l.userConfigPath(), l.projectConfigPath()} {
		if candidate == "" {
			continue
		}
		layer := &Config{}
		err := decodeFile(candidate, layer)
		switch {
		case err == nil:
			l.logger.Debug("loaded config", slog.String("path", candidate))
			config.Merge(layer)
		case errors.Is(err, os.ErrNotExist):
		default:
			l.logger.Warn("failed to load config", slog.String("path", candidate), slog.String("error", err.Error()))
		}
	}

	if path != "" {
		layer := &Config{}
		if err := decodeFile(path, layer); err != nil {
			return nil, err
		}
		l.logger.Debug("loaded config", slog.String("path", path))
		config.Merge(layer)
	}

	if dir := os.Getenv(EnvDataDir); dir != "" {
		config.DataDir = dir
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (l *Loader) userConfigPath() string {
	home, err := l.home()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

func (l *Loader) projectConfigPath() string {
	cwd, err := l.cwd()
	if err != nil {
		return ""
	}
	return filepath.Join(cwd, ProjectConfigFile)
}
