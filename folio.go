package folio

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/xraph/folio/contact"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/plugin"
	"github.com/xraph/folio/render"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/store"
)

// Folio is the invoicing engine. It fronts a store with the boundary
// operations an editor needs and notifies plugins after every change.
type Folio struct {
	store     store.Store
	plugins   *plugin.Registry
	logger    *slog.Logger
	formatter render.Formatter
	now       func() time.Time
}

// New creates a new Folio instance.
func New(s store.Store, opts ...Option) *Folio {
	f := &Folio{
		store:   s,
		plugins: plugin.NewRegistry(),
		logger:  slog.Default(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Option configures a Folio instance.
type Option func(*Folio)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Folio) {
		f.logger = logger
		f.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(f *Folio) {
		_ = f.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithFormatter sets the formatter used for exports whose extension no
// formatter plugin claims. By default the formatter is chosen from the
// extension with render.ForPath.
func WithFormatter(r render.Formatter) Option {
	return func(f *Folio) {
		f.formatter = r
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(f *Folio) {
		f.now = now
	}
}

// Store returns the underlying store.
func (f *Folio) Store() store.Store { return f.store }

// Plugins returns the plugin registry.
func (f *Folio) Plugins() *plugin.Registry { return f.plugins }

// Start prepares the store and initializes plugins.
func (f *Folio) Start(ctx context.Context) error {
	if err := f.store.Migrate(ctx); err != nil {
		return err
	}

	f.plugins.EmitInit(ctx, f)

	f.logger.Info("folio started",
		"plugins", f.plugins.Count(),
	)

	return nil
}

// Stop shuts plugins down and closes the store.
func (f *Folio) Stop() error {
	ctx := context.Background()
	f.plugins.EmitShutdown(ctx)

	return f.store.Close()
}

// ──────────────────────────────────────────────────
// Settings
// ──────────────────────────────────────────────────

// Settings returns the current settings with defaults filled in.
func (f *Folio) Settings(ctx context.Context) (*settings.Settings, error) {
	return f.store.GetSettings(ctx)
}

// SaveSettings merges p over the stored settings.
func (f *Folio) SaveSettings(ctx context.Context, p settings.Patch) (*settings.Settings, error) {
	s, err := f.store.SaveSettings(ctx, p)
	if err != nil {
		return nil, err
	}

	f.plugins.EmitSettingsSaved(ctx, s)
	return s, nil
}

// NextInvoiceNumber advances the persisted counter and returns the new
// zero-padded number.
func (f *Folio) NextInvoiceNumber(ctx context.Context) (string, error) {
	number, err := f.store.NextInvoiceNumber(ctx)
	if err != nil {
		return "", err
	}

	f.plugins.EmitInvoiceNumberIssued(ctx, number)
	return number, nil
}

// ──────────────────────────────────────────────────
// Invoices
// ──────────────────────────────────────────────────

// ListInvoices returns invoice summaries matching query, newest first.
func (f *Folio) ListInvoices(ctx context.Context, query string) ([]*invoice.Summary, error) {
	return f.store.ListInvoices(ctx, invoice.ListOpts{Query: query})
}

// LoadInvoice returns the invoice with invoiceID.
func (f *Folio) LoadInvoice(ctx context.Context, invoiceID string) (*invoice.Invoice, error) {
	return f.store.LoadInvoice(ctx, invoiceID)
}

// SaveInvoice persists inv and returns it with its id and recomputed totals.
func (f *Folio) SaveInvoice(ctx context.Context, inv *invoice.Invoice) (*invoice.Invoice, error) {
	if inv == nil {
		return nil, ValidationError{Field: "invoice", Message: "is required"}
	}
	created := inv.ID == ""

	saved, err := f.store.SaveInvoice(ctx, inv)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("invoice saved",
		"id", saved.ID,
		"number", saved.InvoiceNumber,
		"created", created,
	)

	f.plugins.EmitInvoiceSaved(ctx, saved, created)
	return saved, nil
}

// DeleteInvoice removes the invoice. Deleting a missing invoice succeeds.
func (f *Folio) DeleteInvoice(ctx context.Context, invoiceID string) error {
	if err := f.store.DeleteInvoice(ctx, invoiceID); err != nil {
		return err
	}

	f.plugins.EmitInvoiceDeleted(ctx, invoiceID)
	return nil
}

// DuplicateInvoice copies the invoice into a new record numbered nextNumber
// and dated today. An empty nextNumber takes the next number from the
// settings counter.
func (f *Folio) DuplicateInvoice(ctx context.Context, invoiceID, nextNumber string) (*invoice.Invoice, error) {
	if nextNumber == "" {
		n, err := f.NextInvoiceNumber(ctx)
		if err != nil {
			return nil, err
		}
		nextNumber = n
	}

	dup, err := f.store.DuplicateInvoice(ctx, invoiceID, nextNumber)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("invoice duplicated",
		"source", invoiceID,
		"id", dup.ID,
		"number", dup.InvoiceNumber,
	)

	f.plugins.EmitInvoiceDuplicated(ctx, invoiceID, dup)
	return dup, nil
}

// ──────────────────────────────────────────────────
// Clients and profiles
// ──────────────────────────────────────────────────

// ListClients returns the clients matching query in stored order.
func (f *Folio) ListClients(ctx context.Context, query string) ([]*contact.Contact, error) {
	return f.store.ListContacts(ctx, contact.KindClient, query)
}

// SaveClient creates or updates a client, writing every field of c.
func (f *Folio) SaveClient(ctx context.Context, c *contact.Contact) (*contact.Contact, error) {
	if c == nil {
		return nil, ValidationError{Field: string(contact.KindClient), Message: "is required"}
	}
	return f.saveContact(ctx, contact.KindClient, c.Patch())
}

// PatchClient creates a client or merges the set fields of p into the
// stored one.
func (f *Folio) PatchClient(ctx context.Context, p contact.Patch) (*contact.Contact, error) {
	return f.saveContact(ctx, contact.KindClient, p)
}

// DeleteClient removes a client.
func (f *Folio) DeleteClient(ctx context.Context, clientID string) error {
	return f.deleteContact(ctx, contact.KindClient, clientID)
}

// ListProfiles returns the issuer profiles matching query in stored order.
func (f *Folio) ListProfiles(ctx context.Context, query string) ([]*contact.Contact, error) {
	return f.store.ListContacts(ctx, contact.KindProfile, query)
}

// SaveProfile creates or updates an issuer profile, writing every field of c.
func (f *Folio) SaveProfile(ctx context.Context, c *contact.Contact) (*contact.Contact, error) {
	if c == nil {
		return nil, ValidationError{Field: string(contact.KindProfile), Message: "is required"}
	}
	return f.saveContact(ctx, contact.KindProfile, c.Patch())
}

// PatchProfile creates an issuer profile or merges the set fields of p into
// the stored one.
func (f *Folio) PatchProfile(ctx context.Context, p contact.Patch) (*contact.Contact, error) {
	return f.saveContact(ctx, contact.KindProfile, p)
}

// DeleteProfile removes an issuer profile.
func (f *Folio) DeleteProfile(ctx context.Context, profileID string) error {
	return f.deleteContact(ctx, contact.KindProfile, profileID)
}

func (f *Folio) saveContact(ctx context.Context, kind contact.Kind, p contact.Patch) (*contact.Contact, error) {
	saved, err := f.store.SaveContact(ctx, kind, p)
	if err != nil {
		return nil, err
	}

	f.plugins.EmitContactSaved(ctx, kind, saved)
	return saved, nil
}

func (f *Folio) deleteContact(ctx context.Context, kind contact.Kind, contactID string) error {
	if err := f.store.DeleteContact(ctx, kind, contactID); err != nil {
		return err
	}

	f.plugins.EmitContactDeleted(ctx, kind, contactID)
	return nil
}

// ──────────────────────────────────────────────────
// Export
// ──────────────────────────────────────────────────

// ExportResult reports the outcome of ExportInvoice.
type ExportResult struct {
	Canceled bool   `json:"canceled"`
	Path     string `json:"path,omitempty"`
	Format   string `json:"format,omitempty"`
}

// ExportInvoice renders inv to path. An empty path means the caller declined
// to pick a destination and yields a canceled result. The invoice is
// normalized first so the document shows the same totals a save would store.
func (f *Folio) ExportInvoice(ctx context.Context, inv *invoice.Invoice, path string) (*ExportResult, error) {
	if path == "" {
		return &ExportResult{Canceled: true}, nil
	}
	if inv == nil {
		return nil, ValidationError{Field: "invoice", Message: "is required"}
	}

	doc := inv.Clone()
	invoice.Normalize(doc, f.now())

	formatter := f.formatterFor(path)
	start := time.Now()
	if err := render.Export(ctx, formatter, doc, path); err != nil {
		f.logger.Error("invoice export failed",
			"number", doc.InvoiceNumber,
			"path", path,
			"error", err,
		)
		return nil, err
	}
	elapsed := time.Since(start)

	f.logger.Info("invoice exported",
		"number", doc.InvoiceNumber,
		"path", path,
		"format", formatter.Format(),
		"elapsed", elapsed,
	)

	f.plugins.EmitInvoiceExported(ctx, doc, path, formatter.Format(), elapsed)
	return &ExportResult{Path: path, Format: formatter.Format()}, nil
}

func (f *Folio) formatterFor(path string) render.Formatter {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if p := f.plugins.GetFormatter(ext); p != nil {
		return p
	}
	if f.formatter != nil {
		return f.formatter
	}
	return render.ForPath(path)
}
