package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio"
	"github.com/xraph/folio/contact"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/store/file"
	"github.com/xraph/folio/types"
)

var amountEqual = cmp.Comparer(func(a, b types.Amount) bool { return a.Equal(b) })

func fixedClock() time.Time {
	return time.Date(2024, 8, 1, 9, 30, 0, 0, time.UTC)
}

func newStore(t *testing.T) (*file.Store, string) {
	t.Helper()
	dir := t.TempDir()
	return file.New(dir, file.WithClock(fixedClock)), dir
}

func sampleInvoice() *invoice.Invoice {
	return &invoice.Invoice{
		InvoiceNumber: "INV-001",
		Date:          "2024-01-15",
		From:          invoice.Party{Name: "Studio Nord", Address: "Ilica 1, Zagreb"},
		BillTo:        invoice.Party{Name: "Acme d.o.o.", Address: "Vukovarska 5, Split"},
		Items: []invoice.Item{
			{Description: "Design", Quantity: types.NewAmountFromInt(3), UnitPrice: types.RequireAmount("0.1")},
			{Description: "Review", Quantity: types.NewAmountFromInt(1), UnitPrice: types.RequireAmount("0.6")},
		},
		Notes:    "Payable in 14 days",
		TaxRate:  types.NewAmountFromInt(25),
		Currency: "€",
		Status:   invoice.StatusOpen,
	}
}

func writeRaw(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// ──────────────────────────────────────────────────
// Invoices
// ──────────────────────────────────────────────────

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	saved, err := s.SaveInvoice(ctx, sampleInvoice())
	require.NoError(t, err)
	assert.Equal(t, "inv-001", saved.ID)
	assert.Equal(t, "0.9", saved.SubTotal.String())
	assert.Equal(t, "0.23", saved.TaxAmount.String())
	assert.Equal(t, "1.13", saved.Total.String())

	loaded, err := s.LoadInvoice(ctx, saved.ID)
	require.NoError(t, err)

	if diff := cmp.Diff(saved, loaded, amountEqual); diff != "" {
		t.Errorf("loaded invoice mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestStore_SaveWritesBodyWithoutID(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	saved, err := s.SaveInvoice(ctx, sampleInvoice())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, file.InvoicesDir, saved.ID+".json"))
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	assert.NotContains(t, body, "id")
	assert.Equal(t, "INV-001", body["invoiceNumber"])
	assert.InDelta(t, 1.13, body["total"], 1e-9)
	assert.InDelta(t, 0.23, body["taxAmount"], 1e-9)
	assert.InDelta(t, 0.9, body["subTotal"], 1e-9)
}

func TestStore_SaveAppliesDefaults(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	saved, err := s.SaveInvoice(ctx, &invoice.Invoice{InvoiceNumber: "7"})
	require.NoError(t, err)
	assert.Equal(t, "2024-08-01", saved.Date)
	assert.Equal(t, "$", saved.Currency)
	assert.Equal(t, invoice.StatusOpen, saved.Status)
	assert.NotNil(t, saved.Items)
	assert.True(t, saved.Total.IsZero())
}

func TestStore_SaveIgnoresCallerTotals(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	inv := sampleInvoice()
	inv.Total = types.NewAmountFromInt(999)

	saved, err := s.SaveInvoice(ctx, inv)
	require.NoError(t, err)
	assert.Equal(t, "1.13", saved.Total.String())
}

func TestStore_SaveAssignsFreeID(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	first, err := s.SaveInvoice(ctx, sampleInvoice())
	require.NoError(t, err)
	second, err := s.SaveInvoice(ctx, sampleInvoice())
	require.NoError(t, err)

	assert.Equal(t, "inv-001", first.ID)
	assert.Equal(t, "inv-001-2", second.ID)

	// Saving with an id overwrites in place.
	second.Notes = "changed"
	again, err := s.SaveInvoice(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, "inv-001-2", again.ID)

	list, err := s.ListInvoices(ctx, invoice.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestStore_SaveFallbackID(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	saved, err := s.SaveInvoice(ctx, &invoice.Invoice{InvoiceNumber: "###"})
	require.NoError(t, err)
	assert.Regexp(t, `^invoice-[a-z0-9]+$`, saved.ID)
}

func TestStore_SaveRejectsUnsafeID(t *testing.T) {
	s, _ := newStore(t)

	inv := sampleInvoice()
	inv.ID = "../escape"
	_, err := s.SaveInvoice(context.Background(), inv)
	assert.ErrorIs(t, err, folio.ErrInvalidID)
}

func TestStore_LoadErrors(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)
	writeRaw(t, filepath.Join(dir, file.InvoicesDir, "broken.json"), "{not json")

	_, err := s.LoadInvoice(ctx, "missing")
	assert.ErrorIs(t, err, folio.ErrInvoiceNotFound)
	assert.True(t, folio.IsNotFound(err))

	_, err = s.LoadInvoice(ctx, "broken")
	assert.True(t, folio.IsCorrupt(err))

	_, err = s.LoadInvoice(ctx, "../config")
	assert.ErrorIs(t, err, folio.ErrInvalidID)
}

func TestStore_LoadRecomputesTotals(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)
	writeRaw(t, filepath.Join(dir, file.InvoicesDir, "hand-edited.json"), `{
  "invoiceNumber": "H-1",
  "date": "2024-02-02",
  "items": [{"description": "x", "quantity": "2", "unitPrice": "abc"}, {"description": "y", "quantity": 2, "unitPrice": 5}],
  "taxRate": "10",
  "total": 12345
}`)

	inv, err := s.LoadInvoice(ctx, "hand-edited")
	require.NoError(t, err)
	assert.Equal(t, "hand-edited", inv.ID)
	assert.True(t, inv.Items[0].UnitPrice.IsZero())
	assert.Equal(t, "10", inv.SubTotal.String())
	assert.Equal(t, "1", inv.TaxAmount.String())
	assert.Equal(t, "11", inv.Total.String())
	assert.Equal(t, "$", inv.Currency)
}

func TestStore_ListDegradesCorruptRecords(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	a := sampleInvoice()
	a.InvoiceNumber, a.Date = "A-1", "2024-03-01"
	b := sampleInvoice()
	b.InvoiceNumber, b.Date = "B-1", "2024-05-01"
	_, err := s.SaveInvoice(ctx, a)
	require.NoError(t, err)
	_, err = s.SaveInvoice(ctx, b)
	require.NoError(t, err)

	writeRaw(t, filepath.Join(dir, file.InvoicesDir, "zz-corrupt.json"), "garbage")
	writeRaw(t, filepath.Join(dir, file.InvoicesDir, "notes.txt"), "ignored")

	list, err := s.ListInvoices(ctx, invoice.ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 3)

	assert.Equal(t, "b-1", list[0].ID)
	assert.Equal(t, "a-1", list[1].ID)

	degraded := list[2]
	assert.Equal(t, "zz-corrupt", degraded.ID)
	assert.Equal(t, "zz-corrupt", degraded.InvoiceNumber)
	assert.Empty(t, degraded.Date)
	assert.Empty(t, degraded.BillTo.Name)
	assert.True(t, degraded.Total.IsZero())
	assert.Equal(t, "$", degraded.Currency)
	assert.Equal(t, invoice.StatusOpen, degraded.Status)
}

func TestStore_NonObjectRecordsAreCorrupt(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)
	writeRaw(t, filepath.Join(dir, file.InvoicesDir, "broken.json"), "null")
	writeRaw(t, filepath.Join(dir, file.InvoicesDir, "listed.json"), `[{"invoiceNumber":"X"}]`)

	list, err := s.ListInvoices(ctx, invoice.ListOpts{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, summary := range list {
		assert.Equal(t, summary.ID, summary.InvoiceNumber)
		assert.Equal(t, "$", summary.Currency)
		assert.True(t, summary.Total.IsZero())
	}

	_, err = s.LoadInvoice(ctx, "broken")
	assert.True(t, folio.IsCorrupt(err))
	_, err = s.LoadInvoice(ctx, "listed")
	assert.True(t, folio.IsCorrupt(err))
}

func TestStore_ListQuery(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	a := sampleInvoice()
	a.InvoiceNumber = "A-1"
	b := sampleInvoice()
	b.InvoiceNumber = "B-1"
	b.BillTo.Name = "Globex"
	for _, inv := range []*invoice.Invoice{a, b} {
		_, err := s.SaveInvoice(ctx, inv)
		require.NoError(t, err)
	}

	list, err := s.ListInvoices(ctx, invoice.ListOpts{Query: "GLOBEX"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "B-1", list[0].InvoiceNumber)
	assert.Equal(t, "1.13", list[0].Total.String())

	list, err = s.ListInvoices(ctx, invoice.ListOpts{Query: "nothing matches"})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStore_DeleteInvoice(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	saved, err := s.SaveInvoice(ctx, sampleInvoice())
	require.NoError(t, err)

	require.NoError(t, s.DeleteInvoice(ctx, saved.ID))
	require.NoError(t, s.DeleteInvoice(ctx, saved.ID), "deleting twice is a no-op")

	_, err = s.LoadInvoice(ctx, saved.ID)
	assert.True(t, folio.IsNotFound(err))
}

func TestStore_DuplicateInvoice(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	src, err := s.SaveInvoice(ctx, sampleInvoice())
	require.NoError(t, err)
	srcPath := filepath.Join(dir, file.InvoicesDir, src.ID+".json")
	before, err := os.ReadFile(srcPath)
	require.NoError(t, err)

	dup, err := s.DuplicateInvoice(ctx, src.ID, "0002")
	require.NoError(t, err)

	assert.Equal(t, "0002", dup.ID)
	assert.Equal(t, "0002", dup.InvoiceNumber)
	assert.Equal(t, "2024-08-01", dup.Date)
	assert.Equal(t, src.BillTo, dup.BillTo)
	assert.Equal(t, src.Total.String(), dup.Total.String())

	after, err := os.ReadFile(srcPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))

	list, err := s.ListInvoices(ctx, invoice.ListOpts{})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = s.DuplicateInvoice(ctx, "missing", "0003")
	assert.True(t, folio.IsNotFound(err))
}

// ──────────────────────────────────────────────────
// Contacts
// ──────────────────────────────────────────────────

func TestStore_SaveContactIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	first, err := s.SaveContact(ctx, contact.KindClient, (&contact.Contact{Name: "Acme d.o.o.", Email: "old@acme.hr"}).Patch())
	require.NoError(t, err)
	assert.Equal(t, "acme-doo", first.ID)

	second, err := s.SaveContact(ctx, contact.KindClient, (&contact.Contact{Name: "Acme d.o.o.", Email: "new@acme.hr"}).Patch())
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := s.ListContacts(ctx, contact.KindClient, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "new@acme.hr", all[0].Email)
}

func TestStore_SaveContactKeepsUnknownFields(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)
	path := filepath.Join(dir, file.ClientsFile)
	writeRaw(t, path, `[{"id":"acme","name":"Acme","vat":"HR123","phone":385}]`)

	all, err := s.ListContacts(ctx, contact.KindClient, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "385", all[0].Phone)

	_, err = s.SaveContact(ctx, contact.KindClient, (&contact.Contact{ID: "acme", Name: "Acme Ltd"}).Patch())
	require.NoError(t, err)

	var records []map[string]any
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "HR123", records[0]["vat"])
	assert.Equal(t, "Acme Ltd", records[0]["name"])
}

func TestStore_SaveContactMergesPartialRecord(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	_, err := s.SaveContact(ctx, contact.KindClient, (&contact.Contact{
		Name: "Acme", Phone: "555", Email: "a@acme.test", Address: "Main 1",
	}).Patch())
	require.NoError(t, err)

	email := "new@acme.test"
	acme := "acme"
	saved, err := s.SaveContact(ctx, contact.KindClient, contact.Patch{ID: &acme, Email: &email})
	require.NoError(t, err)

	want := &contact.Contact{ID: "acme", Name: "Acme", Phone: "555", Email: "new@acme.test", Address: "Main 1"}
	assert.Equal(t, want, saved)

	all, err := s.ListContacts(ctx, contact.KindClient, "")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, want, all[0])

	var records []map[string]any
	data, err := os.ReadFile(filepath.Join(dir, file.ClientsFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Main 1", records[0]["address"])
}

func TestStore_ContactKindsAreSeparate(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	_, err := s.SaveContact(ctx, contact.KindClient, (&contact.Contact{Name: "Client One", Address: "Split"}).Patch())
	require.NoError(t, err)
	profile, err := s.SaveContact(ctx, contact.KindProfile, (&contact.Contact{Name: "My Studio", Phone: "+385 1 234"}).Patch())
	require.NoError(t, err)
	assert.Equal(t, "my-studio", profile.ID)

	clients, err := s.ListContacts(ctx, contact.KindClient, "split")
	require.NoError(t, err)
	assert.Len(t, clients, 1)

	profiles, err := s.ListContacts(ctx, contact.KindProfile, "")
	require.NoError(t, err)
	assert.Len(t, profiles, 1)

	assert.FileExists(t, filepath.Join(dir, file.ClientsFile))
	assert.FileExists(t, filepath.Join(dir, file.ProfilesFile))

	require.NoError(t, s.DeleteContact(ctx, contact.KindProfile, "my-studio"))
	require.NoError(t, s.DeleteContact(ctx, contact.KindProfile, "my-studio"))
	profiles, err = s.ListContacts(ctx, contact.KindProfile, "")
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestStore_SaveContactFallbackID(t *testing.T) {
	s, _ := newStore(t)

	saved, err := s.SaveContact(context.Background(), contact.KindClient, (&contact.Contact{Email: "anon@example.com"}).Patch())
	require.NoError(t, err)
	assert.Regexp(t, `^client-[a-z0-9]+$`, saved.ID)
}

// ──────────────────────────────────────────────────
// Settings
// ──────────────────────────────────────────────────

func TestStore_SettingsDefaults(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	want := settings.Defaults()
	if diff := cmp.Diff(&want, got, amountEqual); diff != "" {
		t.Errorf("settings mismatch (-want +got):\n%s", diff)
	}
	assert.FileExists(t, filepath.Join(dir, file.SettingsFile))
}

func TestStore_SettingsBackfill(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)
	writeRaw(t, filepath.Join(dir, file.SettingsFile), `{"currency":"$","business":{"name":"Studio"}}`)

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "$", got.Currency)
	assert.Equal(t, "Studio", got.Business.Name)
	assert.Equal(t, "25", got.TaxRate.String())
	assert.Equal(t, "light", got.Theme)
}

func TestStore_SettingsCorruptReadsDefaults(t *testing.T) {
	s, dir := newStore(t)
	writeRaw(t, filepath.Join(dir, file.SettingsFile), "{{{")

	got, err := s.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "€", got.Currency)
	assert.Equal(t, int64(0), got.LastInvoiceNumber)
}

func TestStore_SaveSettings(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	theme := "dark"
	rate := types.RequireAmount("13")
	got, err := s.SaveSettings(ctx, settings.Patch{Theme: &theme, TaxRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, "dark", got.Theme)
	assert.Equal(t, "€", got.Currency)

	reopened := file.New(dir)
	again, err := reopened.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dark", again.Theme)
	assert.Equal(t, "13", again.TaxRate.String())
}

func TestStore_NextInvoiceNumber(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	first, err := s.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	second, err := s.NextInvoiceNumber(ctx)
	require.NoError(t, err)

	assert.Equal(t, "0001", first)
	assert.Equal(t, "0002", second)

	reopened := file.New(dir)
	got, err := reopened.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.LastInvoiceNumber)
}

func TestStore_NextInvoiceNumberLenientCounter(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)
	writeRaw(t, filepath.Join(dir, file.SettingsFile), `{"currency":"$","theme":42,"lastInvoiceNumber":"5"}`)

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "$", got.Currency)
	assert.Equal(t, "light", got.Theme, "a mistyped field keeps its default")
	assert.Equal(t, int64(5), got.LastInvoiceNumber)

	next, err := s.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0006", next)
}

func TestStore_UnreadableCounterIsSurfaced(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)
	path := filepath.Join(dir, file.SettingsFile)
	writeRaw(t, path, `{"currency":"$","lastInvoiceNumber":"twelve"}`)

	got, err := s.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "$", got.Currency)

	_, err = s.NextInvoiceNumber(ctx)
	assert.True(t, folio.IsCorrupt(err))
	assert.ErrorIs(t, err, folio.ErrCorruptRecord)

	theme := "dark"
	_, err = s.SaveSettings(ctx, settings.Patch{Theme: &theme})
	assert.True(t, folio.IsCorrupt(err))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "twelve", "the stored counter is left for repair")

	counter := int64(12)
	_, err = s.SaveSettings(ctx, settings.Patch{LastInvoiceNumber: &counter})
	require.NoError(t, err)

	next, err := s.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0013", next)
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

func TestStore_Migrate(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	s := file.New(dir)

	require.Error(t, s.Ping(ctx))
	require.NoError(t, s.Migrate(ctx))
	require.NoError(t, s.Ping(ctx))

	assert.DirExists(t, filepath.Join(dir, file.InvoicesDir))
	assert.FileExists(t, filepath.Join(dir, file.ClientsFile))
	assert.FileExists(t, filepath.Join(dir, file.ProfilesFile))
	assert.FileExists(t, filepath.Join(dir, file.SettingsFile))
}

func TestStore_Closed(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	require.NoError(t, s.Close())

	_, err := s.ListInvoices(ctx, invoice.ListOpts{})
	assert.True(t, errors.Is(err, folio.ErrStoreClosed))
	_, err = s.NextInvoiceNumber(ctx)
	assert.ErrorIs(t, err, folio.ErrStoreClosed)
}
