// Package file implements store.Store on plain JSON files in a data
// directory:
//
//	<dir>/config.json         settings
//	<dir>/invoices/<id>.json  one file per invoice
//	<dir>/clients.json        array of clients
//	<dir>/profiles.json       array of issuer profiles
//
// Files are created on first access. Every write rewrites the whole file.
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/contact"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/store"
)

// File and directory names inside the data directory.
const (
	SettingsFile = "config.json"
	InvoicesDir  = "invoices"
	ClientsFile  = "clients.json"
	ProfilesFile = "profiles.json"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for soft-failed reads.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock sets the time source used for default invoice dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is the file-backed store.
type Store struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
	closed atomic.Bool

	invoices *InvoiceStore
	clients  *ContactStore
	profiles *ContactStore
	settings *SettingsStore
}

// New creates a Store rooted at dir. Nothing is touched on disk until the
// first operation or Migrate.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:    dir,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.invoices = NewInvoiceStore(filepath.Join(dir, InvoicesDir), s.logger, s.now)
	s.clients = NewContactStore(contact.KindClient, NewRecordStore(filepath.Join(dir, ClientsFile), s.logger))
	s.profiles = NewContactStore(contact.KindProfile, NewRecordStore(filepath.Join(dir, ProfilesFile), s.logger))
	s.settings = NewSettingsStore(filepath.Join(dir, SettingsFile), s.logger)
	return s
}

// Dir returns the data directory.
func (s *Store) Dir() string { return s.dir }

// Invoices returns the invoice record store.
func (s *Store) Invoices() *InvoiceStore { return s.invoices }

// Settings returns the settings record store.
func (s *Store) Settings() *SettingsStore { return s.settings }

// Contacts returns the record store for kind.
func (s *Store) Contacts(kind contact.Kind) *ContactStore {
	if kind == contact.KindProfile {
		return s.profiles
	}
	return s.clients
}

func (s *Store) check() error {
	if s.closed.Load() {
		return folio.ErrStoreClosed
	}
	return nil
}

// ──────────────────────────────────────────────────
// Invoice methods
// ──────────────────────────────────────────────────

func (s *Store) ListInvoices(ctx context.Context, opts invoice.ListOpts) ([]*invoice.Summary, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.invoices.List(ctx, opts)
}

func (s *Store) LoadInvoice(ctx context.Context, invoiceID string) (*invoice.Invoice, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.invoices.Load(ctx, invoiceID)
}

func (s *Store) SaveInvoice(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.invoices.Save(ctx, inv)
}

func (s *Store) DeleteInvoice(ctx context.Context, invoiceID string) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.invoices.Delete(ctx, invoiceID)
}

func (s *Store) DuplicateInvoice(ctx context.Context, invoiceID, nextNumber string) (*invoice.Invoice, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.invoices.Duplicate(ctx, invoiceID, nextNumber)
}

// ──────────────────────────────────────────────────
// Contact methods
// ──────────────────────────────────────────────────

func (s *Store) ListContacts(ctx context.Context, kind contact.Kind, query string) ([]*contact.Contact, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.Contacts(kind).List(ctx, query)
}

func (s *Store) SaveContact(ctx context.Context, kind contact.Kind, p contact.Patch) (*contact.Contact, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.Contacts(kind).Save(ctx, p)
}

func (s *Store) DeleteContact(ctx context.Context, kind contact.Kind, contactID string) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.Contacts(kind).Delete(ctx, contactID)
}

// ──────────────────────────────────────────────────
// Settings methods
// ──────────────────────────────────────────────────

func (s *Store) GetSettings(ctx context.Context) (*settings.Settings, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.settings.Read(ctx)
}

func (s *Store) SaveSettings(ctx context.Context, p settings.Patch) (*settings.Settings, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.settings.Write(ctx, p)
}

func (s *Store) NextInvoiceNumber(ctx context.Context) (string, error) {
	if err := s.check(); err != nil {
		return "", err
	}
	return s.settings.NextInvoiceNumber(ctx)
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Migrate creates the data directory layout.
func (s *Store) Migrate(_ context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(s.dir, InvoicesDir), dirPerm); err != nil {
		return fmt.Errorf("folio/file: migrate: %w", err)
	}
	for _, rs := range []*RecordStore{s.clients.records, s.profiles.records} {
		if err := rs.ensureFile(); err != nil {
			return fmt.Errorf("folio/file: migrate: %w", err)
		}
	}
	if err := s.settings.ensureFile(); err != nil {
		return fmt.Errorf("folio/file: migrate: %w", err)
	}
	return nil
}

// Ping checks that the data directory is reachable.
func (s *Store) Ping(_ context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("folio/file: ping: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("folio/file: ping: %s is not a directory", s.dir)
	}
	return nil
}

// Close marks the store closed. Later calls fail with folio.ErrStoreClosed.
func (s *Store) Close() error {
	s.closed.Store(true)
	return nil
}
