package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xraph/folio"
	"github.com/xraph/folio/contact"
	"github.com/xraph/folio/id"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/store"
)

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for default invoice dates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store keeps every record in process memory. It follows the same rules as
// the file store and is meant for tests and embedding.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	closed bool

	// Invoice storage, in insertion order
	invoices     map[string]*invoice.Invoice
	invoiceOrder []string

	// Contact storage, in insertion order per kind
	contacts map[contact.Kind][]*contact.Contact

	// Settings storage
	settings settings.Settings
}

func New(opts ...Option) *Store {
	s := &Store{
		now:      time.Now,
		invoices: make(map[string]*invoice.Invoice),
		contacts: make(map[contact.Kind][]*contact.Contact),
		settings: settings.Defaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invoice Store implementation
func (s *Store) ListInvoices(_ context.Context, opts invoice.ListOpts) ([]*invoice.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, folio.ErrStoreClosed
	}

	summaries := make([]*invoice.Summary, 0, len(s.invoiceOrder))
	for _, invoiceID := range s.invoiceOrder {
		summaries = append(summaries, invoice.Summarize(s.invoices[invoiceID]))
	}
	return invoice.Arrange(summaries, opts.Query), nil
}

func (s *Store) LoadInvoice(_ context.Context, invoiceID string) (*invoice.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, folio.ErrStoreClosed
	}
	if !id.Valid(invoiceID) {
		return nil, fmt.Errorf("%w: %q", folio.ErrInvalidID, invoiceID)
	}
	if inv, ok := s.invoices[invoiceID]; ok {
		return inv.Clone(), nil
	}
	return nil, fmt.Errorf("%w: %s", folio.ErrInvoiceNotFound, invoiceID)
}

func (s *Store) SaveInvoice(_ context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, folio.ErrStoreClosed
	}
	return s.saveInvoice(inv)
}

func (s *Store) saveInvoice(inv *invoice.Invoice) (*invoice.Invoice, error) {
	rec := inv.Clone()
	if rec.ID == "" {
		recordID, err := invoice.NewID(rec.InvoiceNumber, func(candidate string) (bool, error) {
			_, ok := s.invoices[candidate]
			return ok, nil
		})
		if err != nil {
			return nil, err
		}
		rec.ID = recordID
	} else if !id.Valid(rec.ID) {
		return nil, fmt.Errorf("%w: %q", folio.ErrInvalidID, rec.ID)
	}

	invoice.Normalize(rec, s.now())

	if _, exists := s.invoices[rec.ID]; !exists {
		s.invoiceOrder = append(s.invoiceOrder, rec.ID)
	}
	s.invoices[rec.ID] = rec
	return rec.Clone(), nil
}

func (s *Store) DeleteInvoice(_ context.Context, invoiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return folio.ErrStoreClosed
	}
	if !id.Valid(invoiceID) {
		return fmt.Errorf("%w: %q", folio.ErrInvalidID, invoiceID)
	}
	if _, ok := s.invoices[invoiceID]; !ok {
		return nil
	}
	delete(s.invoices, invoiceID)
	for i, existing := range s.invoiceOrder {
		if existing == invoiceID {
			s.invoiceOrder = append(s.invoiceOrder[:i], s.invoiceOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) DuplicateInvoice(_ context.Context, invoiceID, nextNumber string) (*invoice.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, folio.ErrStoreClosed
	}
	src, ok := s.invoices[invoiceID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", folio.ErrInvoiceNotFound, invoiceID)
	}

	dup := src.Clone()
	dup.ID = ""
	dup.InvoiceNumber = nextNumber
	dup.Date = invoice.Today(s.now())
	return s.saveInvoice(dup)
}

// Contact Store implementation
func (s *Store) ListContacts(_ context.Context, kind contact.Kind, query string) ([]*contact.Contact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, folio.ErrStoreClosed
	}

	var result []*contact.Contact
	for _, c := range s.contacts[kind] {
		if c.Matches(query) {
			cp := *c
			result = append(result, &cp)
		}
	}
	if result == nil {
		result = []*contact.Contact{}
	}
	return result, nil
}

func (s *Store) SaveContact(_ context.Context, kind contact.Kind, p contact.Patch) (*contact.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, folio.ErrStoreClosed
	}

	contactID := p.ResolveID(kind)

	var rec *contact.Contact
	for _, existing := range s.contacts[kind] {
		if existing.ID == contactID {
			rec = existing
			break
		}
	}
	if rec == nil {
		rec = &contact.Contact{ID: contactID}
		s.contacts[kind] = append(s.contacts[kind], rec)
	}
	p.Apply(rec)

	out := *rec
	return &out, nil
}

func (s *Store) DeleteContact(_ context.Context, kind contact.Kind, contactID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return folio.ErrStoreClosed
	}

	list := s.contacts[kind]
	next := make([]*contact.Contact, 0, len(list))
	for _, c := range list {
		if c.ID != contactID {
			next = append(next, c)
		}
	}
	s.contacts[kind] = next
	return nil
}

// Settings Store implementation
func (s *Store) GetSettings(_ context.Context) (*settings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, folio.ErrStoreClosed
	}
	cur := s.settings
	return &cur, nil
}

func (s *Store) SaveSettings(_ context.Context, p settings.Patch) (*settings.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, folio.ErrStoreClosed
	}
	s.settings.Apply(p)
	cur := s.settings
	return &cur, nil
}

func (s *Store) NextInvoiceNumber(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", folio.ErrStoreClosed
	}
	s.settings.LastInvoiceNumber++
	return settings.FormatInvoiceNumber(s.settings.LastInvoiceNumber), nil
}

// Core methods
func (s *Store) Migrate(_ context.Context) error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return folio.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
