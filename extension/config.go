package extension

import "github.com/xraph/folio/config"

// Config holds the Folio extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.folio" or "folio" keys).
type Config struct {
	// DataDir is the directory backing the file store (default: the
	// user config dir joined with "folio").
	DataDir string `json:"data_dir" mapstructure:"data_dir" yaml:"data_dir"`

	// InMemory keeps every record in process memory instead of DataDir.
	InMemory bool `json:"in_memory" mapstructure:"in_memory" yaml:"in_memory"`

	// DisableMigrate prevents creating the data layout on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// EnableMetrics registers the Prometheus-backed metrics plugin with the
	// default registerer.
	EnableMetrics bool `json:"enable_metrics" mapstructure:"enable_metrics" yaml:"enable_metrics"`

	// RequireConfig requires config to be present in YAML files.
	// If true and no config is found, Register returns an error.
	RequireConfig bool `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataDir: config.DefaultConfig().DataDir,
	}
}
