// Package config provides configuration loading and management for the folio
// command line.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the complete folio configuration
type Config struct {
	// DataDir holds config.json, clients.json, profiles.json and invoices/.
	DataDir string `yaml:"data_dir" validate:"required"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string       `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Export   ExportConfig `yaml:"export"`
	Audit    AuditConfig  `yaml:"audit"`
}

// ExportConfig configures document export defaults
type ExportConfig struct {
	// Dir is where exports without an explicit path are written (default: cwd)
	Dir string `yaml:"dir"`
	// Format is the document format used when the target has no extension
	Format string `yaml:"format" validate:"omitempty,oneof=pdf xlsx"`
}

// AuditConfig configures the audit trail
type AuditConfig struct {
	// Path is a JSON-lines file receiving audit events (empty = disabled)
	Path string `yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		DataDir:  defaultDataDir(),
		LogLevel: "warn",
		Export: ExportConfig{
			Format: "pdf",
		},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "folio")
	}
	return ".folio"
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to warn.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// LoadFromFile loads configuration from a YAML file over the defaults
func LoadFromFile(path string) (*Config, error) {
	config := DefaultConfig()
	if err := decodeFile(path, config); err != nil {
		return nil, err
	}
	return config, nil
}

// decodeFile unmarshals the YAML file at path into config.
func decodeFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.DataDir != "" {
		c.DataDir = other.DataDir
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}

	// Export
	if other.Export.Dir != "" {
		c.Export.Dir = other.Export.Dir
	}
	if other.Export.Format != "" {
		c.Export.Format = other.Export.Format
	}

	// Audit
	if other.Audit.Path != "" {
		c.Audit.Path = other.Audit.Path
	}
}
