package extension

import (
	"github.com/xraph/folio"
	"github.com/xraph/folio/plugin"
	"github.com/xraph/folio/store"
)

// Option configures the Folio Forge extension.
type Option func(*Extension)

// WithStore sets the store for the folio engine, bypassing DataDir.
func WithStore(s store.Store) Option {
	return func(e *Extension) {
		e.store = s
	}
}

// WithFolioOption passes a folio.Option through to the underlying engine.
func WithFolioOption(opt folio.Option) Option {
	return func(e *Extension) {
		e.folioOpts = append(e.folioOpts, opt)
	}
}

// WithPlugin registers a folio plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Extension) {
		e.folioOpts = append(e.folioOpts, folio.WithPlugin(p))
	}
}

// WithConfig sets the Forge extension configuration.
func WithConfig(cfg Config) Option {
	return func(e *Extension) { e.config = cfg }
}

// WithDataDir sets the directory backing the file store.
func WithDataDir(dir string) Option {
	return func(e *Extension) { e.config.DataDir = dir }
}

// WithInMemory keeps records in memory.
func WithInMemory() Option {
	return func(e *Extension) { e.config.InMemory = true }
}

// WithDisableMigrate prevents creating the data layout on start.
func WithDisableMigrate() Option {
	return func(e *Extension) { e.config.DisableMigrate = true }
}

// WithMetrics registers the Prometheus metrics plugin.
func WithMetrics() Option {
	return func(e *Extension) { e.config.EnableMetrics = true }
}

// WithRequireConfig requires config to be present in YAML files.
// If true and no config is found, Register returns an error.
func WithRequireConfig(require bool) Option {
	return func(e *Extension) { e.config.RequireConfig = require }
}
