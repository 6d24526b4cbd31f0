package observability

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

var metricNameReplacer = strings.NewReplacer(".", "_", "-", "_")

// PrometheusFactory is a MetricFactory backed by client_golang collectors.
// Dotted names become underscore separated: "folio.invoice.created" is
// exported as folio_invoice_created.
type PrometheusFactory struct {
	reg prometheus.Registerer
}

// NewPrometheusFactory creates a factory registering its collectors on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusFactory(reg prometheus.Registerer) *PrometheusFactory {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &PrometheusFactory{reg: reg}
}

// Counter implements MetricFactory. Asking twice for the same name returns
// the collector registered first.
func (f *PrometheusFactory) Counter(name string) Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: metricNameReplacer.Replace(name),
		Help: "Count of " + name + " events.",
	})
	if err := f.reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing
			}
		}
	}
	return c
}

// Histogram implements MetricFactory.
func (f *PrometheusFactory) Histogram(name string) Histogram {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    metricNameReplacer.Replace(name),
		Help:    "Distribution of " + name + ".",
		Buckets: prometheus.DefBuckets,
	})
	if err := f.reg.Register(h); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing
			}
		}
	}
	return h
}
