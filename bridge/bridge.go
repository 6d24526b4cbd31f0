// Package bridge exposes the engine as named operations taking and returning
// JSON, for callers that sit behind a message boundary: a UI process, a CLI,
// an RPC endpoint.
//
//	d := bridge.New(engine)
//	result, err := d.Invoke(ctx, "invoice.load", []byte(`"inv-001"`))
package bridge

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	"github.com/xraph/folio"
	"github.com/xraph/folio/contact"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/settings"
)

// Operation names.
const (
	OpSettingsGet       = "settings.get"
	OpSettingsSave      = "settings.save"
	OpInvoiceList       = "invoice.list"
	OpInvoiceLoad       = "invoice.load"
	OpInvoiceSave       = "invoice.save"
	OpInvoiceDelete     = "invoice.delete"
	OpInvoiceDuplicate  = "invoice.duplicate"
	OpInvoiceNextNumber = "invoice.nextNumber"
	OpClientsList       = "clients.list"
	OpClientsSave       = "clients.save"
	OpClientsDelete     = "clients.delete"
	OpProfilesList      = "profiles.list"
	OpProfilesSave      = "profiles.save"
	OpProfilesDelete    = "profiles.delete"
	OpDocumentExport    = "document.export"
)

// Handler serves one operation.
type Handler func(ctx context.Context, payload []byte) (any, error)

// Dispatcher routes operations to the engine.
type Dispatcher struct {
	engine   *folio.Folio
	handlers map[string]Handler
}

// New creates a Dispatcher serving every operation of engine.
func New(engine *folio.Folio) *Dispatcher {
	d := &Dispatcher{engine: engine}
	d.handlers = map[string]Handler{
		OpSettingsGet:       d.settingsGet,
		OpSettingsSave:      d.settingsSave,
		OpInvoiceList:       d.invoiceList,
		OpInvoiceLoad:       d.invoiceLoad,
		OpInvoiceSave:       d.invoiceSave,
		OpInvoiceDelete:     d.invoiceDelete,
		OpInvoiceDuplicate:  d.invoiceDuplicate,
		OpInvoiceNextNumber: d.invoiceNextNumber,
		OpClientsList:       d.contactList(contact.KindClient),
		OpClientsSave:       d.contactSave(contact.KindClient),
		OpClientsDelete:     d.contactDelete(contact.KindClient),
		OpProfilesList:      d.contactList(contact.KindProfile),
		OpProfilesSave:      d.contactSave(contact.KindProfile),
		OpProfilesDelete:    d.contactDelete(contact.KindProfile),
		OpDocumentExport:    d.documentExport,
	}
	return d
}

// Operations returns the supported operation names in sorted order.
func (d *Dispatcher) Operations() []string {
	ops := make([]string, 0, len(d.handlers))
	for op := range d.handlers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Invoke runs op with a JSON payload. Operations without input ignore the
// payload. Unknown operations fail with folio.ErrUnknownOperation and
// undecodable payloads with folio.ErrInvalidInput.
func (d *Dispatcher) Invoke(ctx context.Context, op string, payload []byte) (any, error) {
	h, ok := d.handlers[op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", folio.ErrUnknownOperation, op)
	}
	return h(ctx, payload)
}

// ──────────────────────────────────────────────────
// Payloads
// ──────────────────────────────────────────────────

// ListRequest is the payload of the list operations. A bare JSON string is
// accepted as the query too.
type ListRequest struct {
	Query string `json:"query"`
}

// IDRequest is the payload of load and delete operations. A bare JSON
// string is accepted as the id too.
type IDRequest struct {
	ID string `json:"id"`
}

// DuplicateRequest is the payload of invoice.duplicate.
type DuplicateRequest struct {
	ID         string `json:"id"`
	NextNumber string `json:"nextNumber"`
}

// ExportRequest is the payload of document.export.
type ExportRequest struct {
	Invoice *invoice.Invoice `json:"invoice"`
	Path    string           `json:"path"`
}

func empty(payload []byte) bool {
	p := bytes.TrimSpace(payload)
	return len(p) == 0 || bytes.Equal(p, []byte("null"))
}

func decode(op string, payload []byte, v any) error {
	if empty(payload) {
		return nil
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %s: %v", folio.ErrInvalidInput, op, err)
	}
	return nil
}

// decodeText reads either a bare JSON string or an object, whose field the
// caller selects with field.
func decodeText(op string, payload []byte, field func(raw []byte) (string, error)) (string, error) {
	p := bytes.TrimSpace(payload)
	if empty(p) {
		return "", nil
	}
	if p[0] == '"' {
		var s string
		if err := json.Unmarshal(p, &s); err != nil {
			return "", fmt.Errorf("%w: %s: %v", folio.ErrInvalidInput, op, err)
		}
		return s, nil
	}
	s, err := field(p)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", folio.ErrInvalidInput, op, err)
	}
	return s, nil
}

func decodeID(op string, payload []byte) (string, error) {
	recordID, err := decodeText(op, payload, func(raw []byte) (string, error) {
		var req IDRequest
		err := json.Unmarshal(raw, &req)
		return req.ID, err
	})
	if err != nil {
		return "", err
	}
	if recordID == "" {
		return "", folio.ValidationError{Field: "id", Message: "is required"}
	}
	return recordID, nil
}

func decodeQuery(op string, payload []byte) (string, error) {
	return decodeText(op, payload, func(raw []byte) (string, error) {
		var req ListRequest
		err := json.Unmarshal(raw, &req)
		return req.Query, err
	})
}

// ──────────────────────────────────────────────────
// Handlers
// ──────────────────────────────────────────────────

func (d *Dispatcher) settingsGet(ctx context.Context, _ []byte) (any, error) {
	return d.engine.Settings(ctx)
}

func (d *Dispatcher) settingsSave(ctx context.Context, payload []byte) (any, error) {
	var p settings.Patch
	if err := decode(OpSettingsSave, payload, &p); err != nil {
		return nil, err
	}
	return d.engine.SaveSettings(ctx, p)
}

func (d *Dispatcher) invoiceList(ctx context.Context, payload []byte) (any, error) {
	query, err := decodeQuery(OpInvoiceList, payload)
	if err != nil {
		return nil, err
	}
	return d.engine.ListInvoices(ctx, query)
}

func (d *Dispatcher) invoiceLoad(ctx context.Context, payload []byte) (any, error) {
	invoiceID, err := decodeID(OpInvoiceLoad, payload)
	if err != nil {
		return nil, err
	}
	return d.engine.LoadInvoice(ctx, invoiceID)
}

func (d *Dispatcher) invoiceSave(ctx context.Context, payload []byte) (any, error) {
	if empty(payload) {
		return nil, folio.ValidationError{Field: "invoice", Message: "is required"}
	}
	var inv invoice.Invoice
	if err := decode(OpInvoiceSave, payload, &inv); err != nil {
		return nil, err
	}
	return d.engine.SaveInvoice(ctx, &inv)
}

func (d *Dispatcher) invoiceDelete(ctx context.Context, payload []byte) (any, error) {
	invoiceID, err := decodeID(OpInvoiceDelete, payload)
	if err != nil {
		return nil, err
	}
	if err := d.engine.DeleteInvoice(ctx, invoiceID); err != nil {
		return nil, err
	}
	return true, nil
}

func (d *Dispatcher) invoiceDuplicate(ctx context.Context, payload []byte) (any, error) {
	var req DuplicateRequest
	if err := decode(OpInvoiceDuplicate, payload, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, folio.ValidationError{Field: "id", Message: "is required"}
	}
	return d.engine.DuplicateInvoice(ctx, req.ID, req.NextNumber)
}

func (d *Dispatcher) invoiceNextNumber(ctx context.Context, _ []byte) (any, error) {
	return d.engine.NextInvoiceNumber(ctx)
}

func (d *Dispatcher) contactList(kind contact.Kind) Handler {
	op := opName(kind, "list")
	return func(ctx context.Context, payload []byte) (any, error) {
		query, err := decodeQuery(op, payload)
		if err != nil {
			return nil, err
		}
		if kind == contact.KindProfile {
			return d.engine.ListProfiles(ctx, query)
		}
		return d.engine.ListClients(ctx, query)
	}
}

func (d *Dispatcher) contactSave(kind contact.Kind) Handler {
	return func(ctx context.Context, payload []byte) (any, error) {
		if empty(payload) {
			return nil, folio.ValidationError{Field: string(kind), Message: "is required"}
		}
		var p contact.Patch
		if err := decode(opName(kind, "save"), payload, &p); err != nil {
			return nil, err
		}
		if kind == contact.KindProfile {
			return d.engine.PatchProfile(ctx, p)
		}
		return d.engine.PatchClient(ctx, p)
	}
}

func (d *Dispatcher) contactDelete(kind contact.Kind) Handler {
	return func(ctx context.Context, payload []byte) (any, error) {
		contactID, err := decodeID(opName(kind, "delete"), payload)
		if err != nil {
			return nil, err
		}
		if kind == contact.KindProfile {
			err = d.engine.DeleteProfile(ctx, contactID)
		} else {
			err = d.engine.DeleteClient(ctx, contactID)
		}
		if err != nil {
			return nil, err
		}
		return true, nil
	}
}

func (d *Dispatcher) documentExport(ctx context.Context, payload []byte) (any, error) {
	var req ExportRequest
	if err := decode(OpDocumentExport, payload, &req); err != nil {
		return nil, err
	}
	if req.Path != "" && req.Invoice == nil {
		return nil, folio.ValidationError{Field: "invoice", Message: "is required"}
	}
	return d.engine.ExportInvoice(ctx, req.Invoice, req.Path)
}

// opName returns the operation name of verb for a contact kind.
func opName(kind contact.Kind, verb string) string {
	if kind == contact.KindProfile {
		return "profiles." + verb
	}
	return "clients." + verb
}
