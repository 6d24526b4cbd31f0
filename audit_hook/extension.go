// Package audithook bridges Folio record events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import any
// audit backend directly. Callers inject a RecorderFunc adapter, or the
// WriterRecorder for a JSON lines file, at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/folio/contact"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/plugin"
	"github.com/xraph/folio/settings"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin                = (*Extension)(nil)
	_ plugin.OnInvoiceSaved        = (*Extension)(nil)
	_ plugin.OnInvoiceDeleted      = (*Extension)(nil)
	_ plugin.OnInvoiceDuplicated   = (*Extension)(nil)
	_ plugin.OnInvoiceExported     = (*Extension)(nil)
	_ plugin.OnInvoiceNumberIssued = (*Extension)(nil)
	_ plugin.OnContactSaved        = (*Extension)(nil)
	_ plugin.OnContactDeleted      = (*Extension)(nil)
	_ plugin.OnSettingsSaved       = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
	Time       time.Time      `json:"time"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Folio record events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceSaved implements plugin.OnInvoiceSaved.
func (e *Extension) OnInvoiceSaved(ctx context.Context, inv *invoice.Invoice, created bool) error {
	action := ActionInvoiceUpdated
	if created {
		action = ActionInvoiceCreated
	}
	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID, CategoryBilling, nil,
		"invoice_number", inv.InvoiceNumber,
		"status", string(inv.Status),
		"total", inv.Total.Fixed2(),
		"currency", inv.Currency,
	)
}

// OnInvoiceDeleted implements plugin.OnInvoiceDeleted.
func (e *Extension) OnInvoiceDeleted(ctx context.Context, invoiceID string) error {
	return e.record(ctx, ActionInvoiceDeleted, SeverityWarning, OutcomeSuccess,
		ResourceInvoice, invoiceID, CategoryBilling, nil,
	)
}

// OnInvoiceDuplicated implements plugin.OnInvoiceDuplicated.
func (e *Extension) OnInvoiceDuplicated(ctx context.Context, sourceID string, inv *invoice.Invoice) error {
	return e.record(ctx, ActionInvoiceDuplicated, SeverityInfo, OutcomeSuccess,
		ResourceInvoice, inv.ID, CategoryBilling, nil,
		"source_id", sourceID,
		"invoice_number", inv.InvoiceNumber,
	)
}

// OnInvoiceExported implements plugin.OnInvoiceExported.
func (e *Extension) OnInvoiceExported(ctx context.Context, inv *invoice.Invoice, path, format string, elapsed time.Duration) error {
	return e.record(ctx, ActionInvoiceExported, SeverityInfo, OutcomeSuccess,
		ResourceDocument, inv.ID, CategoryBilling, nil,
		"invoice_number", inv.InvoiceNumber,
		"path", path,
		"format", format,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// OnInvoiceNumberIssued implements plugin.OnInvoiceNumberIssued.
func (e *Extension) OnInvoiceNumberIssued(ctx context.Context, number string) error {
	return e.record(ctx, ActionInvoiceNumberIssued, SeverityInfo, OutcomeSuccess,
		ResourceSettings, "", CategoryBilling, nil,
		"invoice_number", number,
	)
}

// ──────────────────────────────────────────────────
// Contact hooks
// ──────────────────────────────────────────────────

// OnContactSaved implements plugin.OnContactSaved.
func (e *Extension) OnContactSaved(ctx context.Context, kind contact.Kind, c *contact.Contact) error {
	action, resource := ActionClientSaved, ResourceClient
	if kind == contact.KindProfile {
		action, resource = ActionProfileSaved, ResourceProfile
	}
	return e.record(ctx, action, SeverityInfo, OutcomeSuccess,
		resource, c.ID, CategoryAddressBook, nil,
		"name", c.Name,
	)
}

// OnContactDeleted implements plugin.OnContactDeleted.
func (e *Extension) OnContactDeleted(ctx context.Context, kind contact.Kind, contactID string) error {
	action, resource := ActionClientDeleted, ResourceClient
	if kind == contact.KindProfile {
		action, resource = ActionProfileDeleted, ResourceProfile
	}
	return e.record(ctx, action, SeverityWarning, OutcomeSuccess,
		resource, contactID, CategoryAddressBook, nil,
	)
}

// ──────────────────────────────────────────────────
// Settings hooks
// ──────────────────────────────────────────────────

// OnSettingsSaved implements plugin.OnSettingsSaved.
func (e *Extension) OnSettingsSaved(ctx context.Context, s *settings.Settings) error {
	return e.record(ctx, ActionSettingsSaved, SeverityInfo, OutcomeSuccess,
		ResourceSettings, "", CategoryConfiguration, nil,
		"currency", s.Currency,
		"tax_rate", s.TaxRate.String(),
		"theme", s.Theme,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
		Time:       e.now().UTC(),
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
