package invoice

import (
	"context"
)

// Store persists invoices, one record per invoice.
type Store interface {
	List(ctx context.Context, opts ListOpts) ([]*Summary, error)
	Load(ctx context.Context, invoiceID string) (*Invoice, error)
	Save(ctx context.Context, inv *Invoice) (*Invoice, error)
	Delete(ctx context.Context, invoiceID string) error
	Duplicate(ctx context.Context, invoiceID, nextNumber string) (*Invoice, error)
}

// ListOpts narrows an invoice listing.
type ListOpts struct {
	// Query filters case-insensitively on invoice number, date and
	// recipient name. Empty lists everything.
	Query string
}
