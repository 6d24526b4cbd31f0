package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"

	"github.com/xraph/folio/contact"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/settings"
)

// HookTimeout bounds every plugin call.
const HookTimeout = 5 * time.Second

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger
	timeout time.Duration

	// Type-cached plugin lists for efficient dispatch
	onInit                []OnInit
	onShutdown            []OnShutdown
	onInvoiceSaved        []OnInvoiceSaved
	onInvoiceDeleted      []OnInvoiceDeleted
	onInvoiceDuplicated   []OnInvoiceDuplicated
	onInvoiceExported     []OnInvoiceExported
	onInvoiceNumberIssued []OnInvoiceNumberIssued
	onContactSaved        []OnContactSaved
	onContactDeleted      []OnContactDeleted
	onSettingsSaved       []OnSettingsSaved
	invoiceFormatters     map[string]InvoiceFormatter
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:            slog.Default(),
		timeout:           HookTimeout,
		invoiceFormatters: make(map[string]InvoiceFormatter),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// WithTimeout overrides HookTimeout.
func (r *Registry) WithTimeout(d time.Duration) *Registry {
	r.timeout = d
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnInvoiceSaved); ok {
		r.onInvoiceSaved = append(r.onInvoiceSaved, v)
	}
	if v, ok := p.(OnInvoiceDeleted); ok {
		r.onInvoiceDeleted = append(r.onInvoiceDeleted, v)
	}
	if v, ok := p.(OnInvoiceDuplicated); ok {
		r.onInvoiceDuplicated = append(r.onInvoiceDuplicated, v)
	}
	if v, ok := p.(OnInvoiceExported); ok {
		r.onInvoiceExported = append(r.onInvoiceExported, v)
	}
	if v, ok := p.(OnInvoiceNumberIssued); ok {
		r.onInvoiceNumberIssued = append(r.onInvoiceNumberIssued, v)
	}
	if v, ok := p.(OnContactSaved); ok {
		r.onContactSaved = append(r.onContactSaved, v)
	}
	if v, ok := p.(OnContactDeleted); ok {
		r.onContactDeleted = append(r.onContactDeleted, v)
	}
	if v, ok := p.(OnSettingsSaved); ok {
		r.onSettingsSaved = append(r.onSettingsSaved, v)
	}
	if v, ok := p.(InvoiceFormatter); ok {
		r.invoiceFormatters[v.Format()] = v
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnInvoiceSaved)(nil)).Elem(), "OnInvoiceSaved")
	checkInterface(reflect.TypeOf((*OnInvoiceDeleted)(nil)).Elem(), "OnInvoiceDeleted")
	checkInterface(reflect.TypeOf((*OnInvoiceDuplicated)(nil)).Elem(), "OnInvoiceDuplicated")
	checkInterface(reflect.TypeOf((*OnInvoiceExported)(nil)).Elem(), "OnInvoiceExported")
	checkInterface(reflect.TypeOf((*OnInvoiceNumberIssued)(nil)).Elem(), "OnInvoiceNumberIssued")
	checkInterface(reflect.TypeOf((*OnContactSaved)(nil)).Elem(), "OnContactSaved")
	checkInterface(reflect.TypeOf((*OnContactDeleted)(nil)).Elem(), "OnContactDeleted")
	checkInterface(reflect.TypeOf((*OnSettingsSaved)(nil)).Elem(), "OnSettingsSaved")
	checkInterface(reflect.TypeOf((*InvoiceFormatter)(nil)).Elem(), "InvoiceFormatter")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// GetFormatter returns the formatter plugin registered for format, or nil.
func (r *Registry) GetFormatter(format string) InvoiceFormatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.invoiceFormatters[format]
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	emit(ctx, r, "OnInit", plugins, func(p OnInit) error {
		return p.OnInit(ctx, engine)
	})
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	emit(ctx, r, "OnShutdown", plugins, func(p OnShutdown) error {
		return p.OnShutdown(ctx)
	})
}

// EmitInvoiceSaved emits an invoice saved event.
func (r *Registry) EmitInvoiceSaved(ctx context.Context, inv *invoice.Invoice, created bool) {
	r.mu.RLock()
	plugins := r.onInvoiceSaved
	r.mu.RUnlock()

	emit(ctx, r, "OnInvoiceSaved", plugins, func(p OnInvoiceSaved) error {
		return p.OnInvoiceSaved(ctx, inv, created)
	})
}

// EmitInvoiceDeleted emits an invoice deleted event.
func (r *Registry) EmitInvoiceDeleted(ctx context.Context, invoiceID string) {
	r.mu.RLock()
	plugins := r.onInvoiceDeleted
	r.mu.RUnlock()

	emit(ctx, r, "OnInvoiceDeleted", plugins, func(p OnInvoiceDeleted) error {
		return p.OnInvoiceDeleted(ctx, invoiceID)
	})
}

// EmitInvoiceDuplicated emits an invoice duplicated event.
func (r *Registry) EmitInvoiceDuplicated(ctx context.Context, sourceID string, inv *invoice.Invoice) {
	r.mu.RLock()
	plugins := r.onInvoiceDuplicated
	r.mu.RUnlock()

	emit(ctx, r, "OnInvoiceDuplicated", plugins, func(p OnInvoiceDuplicated) error {
		return p.OnInvoiceDuplicated(ctx, sourceID, inv)
	})
}

// EmitInvoiceExported emits a document exported event.
func (r *Registry) EmitInvoiceExported(ctx context.Context, inv *invoice.Invoice, path, format string, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onInvoiceExported
	r.mu.RUnlock()

	emit(ctx, r, "OnInvoiceExported", plugins, func(p OnInvoiceExported) error {
		return p.OnInvoiceExported(ctx, inv, path, format, elapsed)
	})
}

// EmitInvoiceNumberIssued emits an invoice number issued event.
func (r *Registry) EmitInvoiceNumberIssued(ctx context.Context, number string) {
	r.mu.RLock()
	plugins := r.onInvoiceNumberIssued
	r.mu.RUnlock()

	emit(ctx, r, "OnInvoiceNumberIssued", plugins, func(p OnInvoiceNumberIssued) error {
		return p.OnInvoiceNumberIssued(ctx, number)
	})
}

// EmitContactSaved emits a contact saved event.
func (r *Registry) EmitContactSaved(ctx context.Context, kind contact.Kind, c *contact.Contact) {
	r.mu.RLock()
	plugins := r.onContactSaved
	r.mu.RUnlock()

	emit(ctx, r, "OnContactSaved", plugins, func(p OnContactSaved) error {
		return p.OnContactSaved(ctx, kind, c)
	})
}

// EmitContactDeleted emits a contact deleted event.
func (r *Registry) EmitContactDeleted(ctx context.Context, kind contact.Kind, contactID string) {
	r.mu.RLock()
	plugins := r.onContactDeleted
	r.mu.RUnlock()

	emit(ctx, r, "OnContactDeleted", plugins, func(p OnContactDeleted) error {
		return p.OnContactDeleted(ctx, kind, contactID)
	})
}

// EmitSettingsSaved emits a settings saved event.
func (r *Registry) EmitSettingsSaved(ctx context.Context, s *settings.Settings) {
	r.mu.RLock()
	plugins := r.onSettingsSaved
	r.mu.RUnlock()

	emit(ctx, r, "OnSettingsSaved", plugins, func(p OnSettingsSaved) error {
		return p.OnSettingsSaved(ctx, s)
	})
}

// emit calls hook on every plugin in order. Failures are logged and never
// reach the caller.
func emit[T Plugin](ctx context.Context, r *Registry, hook string, plugins []T, call func(T) error) {
	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return call(p)
		}); err != nil {
			r.logger.Warn("plugin "+hook+" failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block record operations.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(r.timeout):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
