// Package extension provides the Forge extension adapter for Folio.
//
// It implements the forge.Extension interface to integrate Folio
// into a Forge application with DI registration and lifecycle management.
// Both the engine and a bridge.Dispatcher over it are provided to the
// container.
//
// Configuration can be provided programmatically via Option functions
// or via YAML configuration files under "extensions.folio" or "folio" keys.
package extension

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xraph/forge"
	"github.com/xraph/vessel"

	"github.com/xraph/folio"
	"github.com/xraph/folio/bridge"
	"github.com/xraph/folio/observability"
	"github.com/xraph/folio/store"
	"github.com/xraph/folio/store/file"
	"github.com/xraph/folio/store/memory"
)

// ExtensionName is the name registered with Forge.
const ExtensionName = "folio"

// ExtensionDescription is the human-readable description.
const ExtensionDescription = "Invoice documents, address book and export"

// ExtensionVersion is the semantic version.
const ExtensionVersion = "0.1.0"

// Ensure Extension implements forge.Extension at compile time.
var _ forge.Extension = (*Extension)(nil)

// Extension adapts Folio as a Forge extension.
type Extension struct {
	*forge.BaseExtension

	config    Config
	engine    *folio.Folio
	store     store.Store
	folioOpts []folio.Option
}

// New creates a new Folio Forge extension with the given options.
func New(opts ...Option) *Extension {
	e := &Extension{
		BaseExtension: forge.NewBaseExtension(ExtensionName, ExtensionVersion, ExtensionDescription),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Engine returns the underlying Folio instance.
// This is nil until Register is called.
func (e *Extension) Engine() *folio.Folio { return e.engine }

// Register implements [forge.Extension]. It loads configuration,
// initializes the folio engine, and registers it in the DI container.
func (e *Extension) Register(fapp forge.App) error {
	if err := e.BaseExtension.Register(fapp); err != nil {
		return err
	}

	if err := e.loadConfiguration(); err != nil {
		return err
	}

	if e.store == nil {
		e.store = e.buildStore()
	}

	e.engine = folio.New(e.store, e.buildFolioOpts()...)

	if err := vessel.Provide(fapp.Container(), func() (*folio.Folio, error) {
		return e.engine, nil
	}); err != nil {
		return err
	}

	return vessel.Provide(fapp.Container(), func() (*bridge.Dispatcher, error) {
		return bridge.New(e.engine), nil
	})
}

// Start implements [forge.Extension].
func (e *Extension) Start(ctx context.Context) error {
	if e.engine == nil {
		return errors.New("folio: extension not initialized")
	}

	if !e.config.DisableMigrate {
		if err := e.engine.Start(ctx); err != nil {
			return err
		}
	}

	e.MarkStarted()
	return nil
}

// Stop implements [forge.Extension].
func (e *Extension) Stop(_ context.Context) error {
	if e.engine != nil {
		if err := e.engine.Stop(); err != nil {
			e.MarkStopped()
			return err
		}
	}
	e.MarkStopped()
	return nil
}

// Health implements [forge.Extension].
func (e *Extension) Health(ctx context.Context) error {
	if e.store == nil {
		return errors.New("folio: store not initialized")
	}
	return e.store.Ping(ctx)
}

// buildStore picks the backend from the resolved config.
func (e *Extension) buildStore() store.Store {
	if e.config.InMemory {
		return memory.New()
	}
	return file.New(e.config.DataDir)
}

// buildFolioOpts constructs folio.Option values from the resolved config.
func (e *Extension) buildFolioOpts() []folio.Option {
	opts := make([]folio.Option, 0, len(e.folioOpts)+1)

	if e.config.EnableMetrics {
		factory := observability.NewPrometheusFactory(prometheus.DefaultRegisterer)
		opts = append(opts, folio.WithPlugin(observability.NewMetricsExtension(factory)))
	}

	// Append any pass-through folio options.
	opts = append(opts, e.folioOpts...)

	return opts
}

// --- Config Loading ---

// loadConfiguration loads config from YAML files or programmatic sources.
func (e *Extension) loadConfiguration() error {
	programmaticConfig := e.config

	fileConfig, configLoaded := e.tryLoadFromConfigFile()

	if !configLoaded {
		if programmaticConfig.RequireConfig {
			return errors.New("folio: configuration is required but not found in config files; " +
				"ensure 'extensions.folio' or 'folio' key exists in your config")
		}

		e.config = mergeWithDefaults(programmaticConfig)
	} else {
		e.config = mergeConfigurations(fileConfig, programmaticConfig)
	}

	e.Logger().Debug("folio: configuration loaded",
		forge.F("data_dir", e.config.DataDir),
		forge.F("in_memory", e.config.InMemory),
		forge.F("disable_migrate", e.config.DisableMigrate),
		forge.F("enable_metrics", e.config.EnableMetrics),
	)

	return nil
}

// tryLoadFromConfigFile attempts to load config from YAML files.
func (e *Extension) tryLoadFromConfigFile() (Config, bool) {
	cm := e.App().Config()

	for _, key := range []string{"extensions.folio", "folio"} {
		if !cm.IsSet(key) {
			continue
		}
		var cfg Config
		if err := cm.Bind(key, &cfg); err == nil {
			e.Logger().Debug("folio: loaded config from file",
				forge.F("key", key),
			)
			return cfg, true
		}
		e.Logger().Warn("folio: failed to bind config",
			forge.F("key", key),
			forge.F("error", "bind failed"),
		)
	}

	return Config{}, false
}

// mergeWithDefaults fills zero-valued fields with defaults.
func mergeWithDefaults(cfg Config) Config {
	if cfg.DataDir == "" {
		cfg.DataDir = DefaultConfig().DataDir
	}
	return cfg
}

// mergeConfigurations merges YAML config with programmatic options.
// YAML config takes precedence for most fields; programmatic bool flags fill gaps.
func mergeConfigurations(yamlConfig, programmaticConfig Config) Config {
	if programmaticConfig.InMemory {
		yamlConfig.InMemory = true
	}
	if programmaticConfig.DisableMigrate {
		yamlConfig.DisableMigrate = true
	}
	if programmaticConfig.EnableMetrics {
		yamlConfig.EnableMetrics = true
	}

	if yamlConfig.DataDir == "" && programmaticConfig.DataDir != "" {
		yamlConfig.DataDir = programmaticConfig.DataDir
	}

	return mergeWithDefaults(yamlConfig)
}
