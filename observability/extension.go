// Package observability provides a metrics extension for Folio that records
// record lifecycle event counts via a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/folio/contact"
	"github.com/xraph/folio/invoice"
	"github.com/xraph/folio/plugin"
	"github.com/xraph/folio/settings"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin                = (*MetricsExtension)(nil)
	_ plugin.OnInit                = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceSaved        = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceDeleted      = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceDuplicated   = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceExported     = (*MetricsExtension)(nil)
	_ plugin.OnInvoiceNumberIssued = (*MetricsExtension)(nil)
	_ plugin.OnContactSaved        = (*MetricsExtension)(nil)
	_ plugin.OnContactDeleted      = (*MetricsExtension)(nil)
	_ plugin.OnSettingsSaved       = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Folio plugin to automatically track record metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Invoice metrics
	InvoiceCreated      Counter
	InvoiceUpdated      Counter
	InvoiceDeleted      Counter
	InvoiceDuplicated   Counter
	InvoiceNumberIssued Counter
	InvoiceTotal        Histogram

	// Export metrics
	InvoiceExported Counter
	ExportLatency   Histogram

	// Contact metrics
	ClientSaved    Counter
	ClientDeleted  Counter
	ProfileSaved   Counter
	ProfileDeleted Counter

	// Settings metrics
	SettingsSaved Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions or NewPrometheusFactory elsewhere.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Invoice metrics
		InvoiceCreated:      factory.Counter("folio.invoice.created"),
		InvoiceUpdated:      factory.Counter("folio.invoice.updated"),
		InvoiceDeleted:      factory.Counter("folio.invoice.deleted"),
		InvoiceDuplicated:   factory.Counter("folio.invoice.duplicated"),
		InvoiceNumberIssued: factory.Counter("folio.invoice.number.issued"),
		InvoiceTotal:        factory.Histogram("folio.invoice.total_amount"),

		// Export metrics
		InvoiceExported: factory.Counter("folio.invoice.exported"),
		ExportLatency:   factory.Histogram("folio.invoice.export.latency_ms"),

		// Contact metrics
		ClientSaved:    factory.Counter("folio.client.saved"),
		ClientDeleted:  factory.Counter("folio.client.deleted"),
		ProfileSaved:   factory.Counter("folio.profile.saved"),
		ProfileDeleted: factory.Counter("folio.profile.deleted"),

		// Settings metrics
		SettingsSaved: factory.Counter("folio.settings.saved"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Invoice lifecycle hooks
// ──────────────────────────────────────────────────

// OnInvoiceSaved implements plugin.OnInvoiceSaved.
func (m *MetricsExtension) OnInvoiceSaved(_ context.Context, inv *invoice.Invoice, created bool) error {
	if created {
		m.InvoiceCreated.Inc()
	} else {
		m.InvoiceUpdated.Inc()
	}
	m.InvoiceTotal.Observe(inv.Total.Float64())
	return nil
}

// OnInvoiceDeleted implements plugin.OnInvoiceDeleted.
func (m *MetricsExtension) OnInvoiceDeleted(_ context.Context, _ string) error {
	m.InvoiceDeleted.Inc()
	return nil
}

// OnInvoiceDuplicated implements plugin.OnInvoiceDuplicated.
func (m *MetricsExtension) OnInvoiceDuplicated(_ context.Context, _ string, _ *invoice.Invoice) error {
	m.InvoiceDuplicated.Inc()
	return nil
}

// OnInvoiceNumberIssued implements plugin.OnInvoiceNumberIssued.
func (m *MetricsExtension) OnInvoiceNumberIssued(_ context.Context, _ string) error {
	m.InvoiceNumberIssued.Inc()
	return nil
}

// OnInvoiceExported implements plugin.OnInvoiceExported.
func (m *MetricsExtension) OnInvoiceExported(_ context.Context, _ *invoice.Invoice, _, _ string, elapsed time.Duration) error {
	m.InvoiceExported.Inc()
	m.ExportLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}

// ──────────────────────────────────────────────────
// Contact hooks
// ──────────────────────────────────────────────────

// OnContactSaved implements plugin.OnContactSaved.
func (m *MetricsExtension) OnContactSaved(_ context.Context, kind contact.Kind, _ *contact.Contact) error {
	if kind == contact.KindProfile {
		m.ProfileSaved.Inc()
	} else {
		m.ClientSaved.Inc()
	}
	return nil
}

// OnContactDeleted implements plugin.OnContactDeleted.
func (m *MetricsExtension) OnContactDeleted(_ context.Context, kind contact.Kind, _ string) error {
	if kind == contact.KindProfile {
		m.ProfileDeleted.Inc()
	} else {
		m.ClientDeleted.Inc()
	}
	return nil
}

// ──────────────────────────────────────────────────
// Settings hooks
// ──────────────────────────────────────────────────

// OnSettingsSaved implements plugin.OnSettingsSaved.
func (m *MetricsExtension) OnSettingsSaved(_ context.Context, _ *settings.Settings) error {
	m.SettingsSaved.Inc()
	return nil
}
