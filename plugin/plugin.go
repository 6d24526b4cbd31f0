// Package plugin provides an extensible plugin system for Folio.
// Plugins can hook into record lifecycle events to extend functionality.
package plugin

import (
	"context"
	"io"
	"time"

	"github.com/xraph/folio/contact"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/settings"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceSaved is called after an invoice is written. created is true
// when the save assigned a new id.
type OnInvoiceSaved interface {
	Plugin
	OnInvoiceSaved(ctx context.Context, inv *invoice.Invoice, created bool) error
}

// OnInvoiceDeleted is called after an invoice is deleted.
type OnInvoiceDeleted interface {
	Plugin
	OnInvoiceDeleted(ctx context.Context, invoiceID string) error
}

// OnInvoiceDuplicated is called after an invoice is copied into a new record.
type OnInvoiceDuplicated interface {
	Plugin
	OnInvoiceDuplicated(ctx context.Context, sourceID string, inv *invoice.Invoice) error
}

// OnInvoiceExported is called after a document is written.
type OnInvoiceExported interface {
	Plugin
	OnInvoiceExported(ctx context.Context, inv *invoice.Invoice, path, format string, elapsed time.Duration) error
}

// OnInvoiceNumberIssued is called when the invoice counter advances.
type OnInvoiceNumberIssued interface {
	Plugin
	OnInvoiceNumberIssued(ctx context.Context, number string) error
}

// ──────────────────────────────────────────────────
// Contact hooks
// ──────────────────────────────────────────────────

// OnContactSaved is called after a client or profile is saved.
type OnContactSaved interface {
	Plugin
	OnContactSaved(ctx context.Context, kind contact.Kind, c *contact.Contact) error
}

// OnContactDeleted is called after a client or profile is deleted.
type OnContactDeleted interface {
	Plugin
	OnContactDeleted(ctx context.Context, kind contact.Kind, contactID string) error
}

// ──────────────────────────────────────────────────
// Settings hooks
// ──────────────────────────────────────────────────

// OnSettingsSaved is called after the settings record is written.
type OnSettingsSaved interface {
	Plugin
	OnSettingsSaved(ctx context.Context, s *settings.Settings) error
}

// ──────────────────────────────────────────────────
// Invoice formatters
// ──────────────────────────────────────────────────

// InvoiceFormatter renders invoices in an additional document format.
// Exports to a path whose extension equals Format use it.
type InvoiceFormatter interface {
	Plugin
	Format() string
	Render(ctx context.Context, inv *invoice.Invoice, w io.Writer) error
}
