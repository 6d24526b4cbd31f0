package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/xraph/folio"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
)

// InvoiceStore keeps one JSON file per invoice in a directory. The file name
// (without extension) is the invoice id.
type InvoiceStore struct {
	// mu serializes id assignment so two concurrent first saves cannot pick
	// the same free id.
	mu     sync.Mutex
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewInvoiceStore creates an InvoiceStore rooted at dir.
func NewInvoiceStore(dir string, logger *slog.Logger, now func() time.Time) *InvoiceStore {
	if logger == nil {
		logger = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &InvoiceStore{dir: dir, logger: logger, now: now}
}

// Dir returns the record directory.
func (s *InvoiceStore) Dir() string { return s.dir }

func (s *InvoiceStore) ensureDir() error {
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("folio/file: create invoice directory: %w", err)
	}
	return nil
}

func (s *InvoiceStore) path(invoiceID string) string {
	return filepath.Join(s.dir, invoiceID+recordExt)
}

// List returns a summary per record, filtered by opts.Query and ordered by
// date, newest first. Records that cannot be parsed are listed with a
// degraded summary instead of failing the listing.
func (s *InvoiceStore) List(_ context.Context, opts invoice.ListOpts) ([]*invoice.Summary, error) {
	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("folio/file: list invoices: %w", err)
	}

	var corrupt *multierror.Error
	summaries := make([]*invoice.Summary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != recordExt {
			continue
		}
		recordID := strings.TrimSuffix(name, recordExt)
		if !id.Valid(recordID) {
			continue
		}

		var inv invoice.Invoice
		if err := readRecord(s.path(recordID), &inv); err != nil {
			corrupt = multierror.Append(corrupt, fmt.Errorf("%s: %w", name, err))
			summaries = append(summaries, invoice.DegradedSummary(recordID))
			continue
		}
		inv.ID = recordID
		summaries = append(summaries, invoice.Summarize(&inv))
	}

	if corrupt != nil {
		s.logger.Warn("folio/file: listed corrupt invoice records as placeholders",
			"dir", s.dir,
			"count", len(corrupt.Errors),
			"error", corrupt.ErrorOrNil(),
		)
	}

	return invoice.Arrange(summaries, opts.Query), nil
}

// Load reads the invoice with invoiceID and recomputes its totals.
func (s *InvoiceStore) Load(_ context.Context, invoiceID string) (*invoice.Invoice, error) {
	if !id.Valid(invoiceID) {
		return nil, fmt.Errorf("%w: %q", folio.ErrInvalidID, invoiceID)
	}

	var inv invoice.Invoice
	if err := readRecord(s.path(invoiceID), &inv); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", folio.ErrInvoiceNotFound, invoiceID)
		}
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			return nil, fmt.Errorf("folio/file: load invoice %s: %w", invoiceID, err)
		}
		return nil, fmt.Errorf("%w: invoice %s: %v", folio.ErrCorruptRecord, invoiceID, err)
	}

	inv.ID = invoiceID
	invoice.Normalize(&inv, s.now())
	return &inv, nil
}

// Save writes inv. An invoice without an id gets one derived from its
// number; an id already in use is suffixed so a new invoice never replaces
// another. The returned invoice carries the id and the recomputed totals.
func (s *InvoiceStore) Save(_ context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureDir(); err != nil {
		return nil, err
	}

	rec := inv.Clone()
	if rec.ID == "" {
		recordID, err := invoice.NewID(rec.InvoiceNumber, func(candidate string) (bool, error) {
			return exists(s.path(candidate))
		})
		if err != nil {
			return nil, fmt.Errorf("folio/file: assign invoice id: %w", err)
		}
		rec.ID = recordID
	} else if !id.Valid(rec.ID) {
		return nil, fmt.Errorf("%w: %q", folio.ErrInvalidID, rec.ID)
	}

	invoice.Normalize(rec, s.now())

	body := rec.Clone()
	body.ID = ""
	if err := writeJSON(s.path(rec.ID), body); err != nil {
		return nil, fmt.Errorf("folio/file: save invoice %s: %w", rec.ID, err)
	}

	return rec, nil
}

// Delete removes the invoice file. A missing file is not an error.
func (s *InvoiceStore) Delete(_ context.Context, invoiceID string) error {
	if !id.Valid(invoiceID) {
		return fmt.Errorf("%w: %q", folio.ErrInvalidID, invoiceID)
	}
	if err := os.Remove(s.path(invoiceID)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("folio/file: delete invoice %s: %w", invoiceID, err)
	}
	return nil
}

// Duplicate saves a copy of the invoice with invoiceID as a new record
// numbered nextNumber and dated today. The source record is not modified.
func (s *InvoiceStore) Duplicate(ctx context.Context, invoiceID, nextNumber string) (*invoice.Invoice, error) {
	src, err := s.Load(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	dup := src.Clone()
	dup.ID = ""
	dup.InvoiceNumber = nextNumber
	dup.Date = invoice.Today(s.now())

	return s.Save(ctx, dup)
}
