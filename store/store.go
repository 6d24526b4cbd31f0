package store

import (
	"context"

	"github.com/xraph/folio/contact"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/settings"
)

// Store is the unified storage interface for all Folio records.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Invoice methods
	ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Summary, error)
	LoadInvoice(ctx context.Context, invoiceID string) (*invoice.Invoice, error)
	SaveInvoice(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error)
	DeleteInvoice(ctx context.Context, invoiceID string) error
	DuplicateInvoice(ctx context.Context, invoiceID, nextNumber string) (*invoice.Invoice, error)

	// Contact methods
	ListContacts(ctx context.Context, kind contact.Kind, query string) ([]*contact.Contact, error)
	SaveContact(ctx context.Context, kind contact.Kind, p contact.Patch) (*contact.Contact, error)
	DeleteContact(ctx context.Context, kind contact.Kind, contactID string) error

	// Settings methods
	GetSettings(ctx context.Context) (*settings.Settings, error)
	SaveSettings(ctx context.Context, p settings.Patch) (*settings.Settings, error)
	NextInvoiceNumber(ctx context.Context) (string, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
