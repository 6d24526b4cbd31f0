package bridge_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio"
	"github.com/xraph/folio/bridge"
	"github.com/xraph/folio/contact"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/settings"
	"github.com/xraph/folio/store/file"
)

func newDispatcher(t *testing.T) *bridge.Dispatcher {
	t.Helper()
	f := folio.New(file.New(t.TempDir()))
	require.NoError(t, f.Start(context.Background()))
	t.Cleanup(func() { _ = f.Stop() })
	return bridge.New(f)
}

func invoke(t *testing.T, d *bridge.Dispatcher, op, payload string) any {
	t.Helper()
	out, err := d.Invoke(context.Background(), op, []byte(payload))
	require.NoError(t, err, op)
	return out
}

func TestDispatcher_InvoiceOperations(t *testing.T) {
	d := newDispatcher(t)

	number := invoke(t, d, bridge.OpInvoiceNextNumber, "")
	assert.Equal(t, "0001", number)

	saved := invoke(t, d, bridge.OpInvoiceSave, `{
		"invoiceNumber": "0001",
		"date": "2024-03-01",
		"billTo": {"name": "Acme", "address": "Split"},
		"items": [
			{"description": "Design", "quantity": "3", "unitPrice": 0.1},
			{"description": "Review", "quantity": 1, "unitPrice": "0.6"},
			{"description": "Broken", "quantity": "abc", "unitPrice": 5}
		],
		"taxRate": 25,
		"total": 999
	}`).(*invoice.Invoice)
	assert.Equal(t, "0001", saved.ID)
	assert.Equal(t, "1.13", saved.Total.Fixed2())

	loaded := invoke(t, d, bridge.OpInvoiceLoad, `"0001"`).(*invoice.Invoice)
	assert.Equal(t, "Acme", loaded.BillTo.Name)
	loaded = invoke(t, d, bridge.OpInvoiceLoad, `{"id":"0001"}`).(*invoice.Invoice)
	assert.Equal(t, "0001", loaded.InvoiceNumber)

	dup := invoke(t, d, bridge.OpInvoiceDuplicate, `{"id":"0001","nextNumber":"0002"}`).(*invoice.Invoice)
	assert.Equal(t, "0002", dup.ID)

	list := invoke(t, d, bridge.OpInvoiceList, `{"query":"acme"}`).([]*invoice.Summary)
	assert.Len(t, list, 2)
	list = invoke(t, d, bridge.OpInvoiceList, `"0002"`).([]*invoice.Summary)
	assert.Len(t, list, 1)
	list = invoke(t, d, bridge.OpInvoiceList, "").([]*invoice.Summary)
	assert.Len(t, list, 2)

	assert.Equal(t, true, invoke(t, d, bridge.OpInvoiceDelete, `"0002"`))

	_, err := d.Invoke(context.Background(), bridge.OpInvoiceLoad, []byte(`"0002"`))
	assert.True(t, folio.IsNotFound(err))
}

func TestDispatcher_ContactOperations(t *testing.T) {
	d := newDispatcher(t)

	client := invoke(t, d, bridge.OpClientsSave, `{"name":"Acme d.o.o.","email":"a@acme.hr"}`).(*contact.Contact)
	assert.Equal(t, "acme-doo", client.ID)

	profile := invoke(t, d, bridge.OpProfilesSave, `{"name":"Studio"}`).(*contact.Contact)
	assert.Equal(t, "studio", profile.ID)

	clients := invoke(t, d, bridge.OpClientsList, `"acme.hr"`).([]*contact.Contact)
	assert.Len(t, clients, 1)
	profiles := invoke(t, d, bridge.OpProfilesList, "").([]*contact.Contact)
	assert.Len(t, profiles, 1)

	invoke(t, d, bridge.OpClientsDelete, `{"id":"acme-doo"}`)
	invoke(t, d, bridge.OpProfilesDelete, `"studio"`)

	clients = invoke(t, d, bridge.OpClientsList, "").([]*contact.Contact)
	assert.Empty(t, clients)
	profiles = invoke(t, d, bridge.OpProfilesList, "").([]*contact.Contact)
	assert.Empty(t, profiles)
}

func TestDispatcher_ContactSaveMerges(t *testing.T) {
	d := newDispatcher(t)

	invoke(t, d, bridge.OpClientsSave, `{"name":"Acme","phone":"555","email":"a@x","address":"Main 1"}`)
	saved := invoke(t, d, bridge.OpClientsSave, `{"id":"acme","email":"new@x"}`).(*contact.Contact)

	want := &contact.Contact{ID: "acme", Name: "Acme", Phone: "555", Email: "new@x", Address: "Main 1"}
	assert.Equal(t, want, saved)

	clients := invoke(t, d, bridge.OpClientsList, "").([]*contact.Contact)
	require.Len(t, clients, 1)
	assert.Equal(t, want, clients[0])
}

func TestDispatcher_SettingsOperations(t *testing.T) {
	d := newDispatcher(t)

	s := invoke(t, d, bridge.OpSettingsGet, "").(*settings.Settings)
	assert.Equal(t, "€", s.Currency)

	s = invoke(t, d, bridge.OpSettingsSave, `{"currency":"$","taxRate":"13"}`).(*settings.Settings)
	assert.Equal(t, "$", s.Currency)
	assert.Equal(t, "13", s.TaxRate.String())
	assert.Equal(t, "light", s.Theme)
}

func TestDispatcher_DocumentExport(t *testing.T) {
	d := newDispatcher(t)

	res := invoke(t, d, bridge.OpDocumentExport, `{"invoice":{"invoiceNumber":"X"}}`).(*folio.ExportResult)
	assert.True(t, res.Canceled)

	path := filepath.Join(t.TempDir(), "x.pdf")
	payload, err := json.Marshal(map[string]any{
		"invoice": map[string]any{"invoiceNumber": "X", "items": []any{}},
		"path":    path,
	})
	require.NoError(t, err)

	res = invoke(t, d, bridge.OpDocumentExport, string(payload)).(*folio.ExportResult)
	assert.False(t, res.Canceled)
	assert.Equal(t, path, res.Path)
	assert.FileExists(t, path)
}

func TestDispatcher_Errors(t *testing.T) {
	d := newDispatcher(t)
	ctx := context.Background()

	_, err := d.Invoke(ctx, "invoice.explode", nil)
	assert.ErrorIs(t, err, folio.ErrUnknownOperation)

	_, err = d.Invoke(ctx, bridge.OpInvoiceSave, []byte(`{not json`))
	assert.ErrorIs(t, err, folio.ErrInvalidInput)

	_, err = d.Invoke(ctx, bridge.OpInvoiceSave, nil)
	assert.ErrorIs(t, err, folio.ErrInvalidInput)

	_, err = d.Invoke(ctx, bridge.OpInvoiceLoad, []byte(`{}`))
	assert.ErrorIs(t, err, folio.ErrInvalidInput)

	_, err = d.Invoke(ctx, bridge.OpInvoiceDuplicate, []byte(`{"nextNumber":"1"}`))
	assert.ErrorIs(t, err, folio.ErrInvalidInput)

	_, err = d.Invoke(ctx, bridge.OpDocumentExport, []byte(`{"path":"/tmp/x.pdf"}`))
	assert.ErrorIs(t, err, folio.ErrInvalidInput)
}

func TestDispatcher_Operations(t *testing.T) {
	d := newDispatcher(t)

	ops := d.Operations()
	assert.Len(t, ops, 15)
	assert.Contains(t, ops, bridge.OpDocumentExport)
	assert.IsIncreasing(t, ops)
}
