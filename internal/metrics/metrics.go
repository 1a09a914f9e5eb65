// Package metrics exposes processing counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/joseph-ayodele/business-dashboard/constants"
)

const namespace = "dashboard"

// Metrics holds the collectors updated by the processor and the dashboard.
type Metrics struct {
	Registry *prometheus.Registry

	DocumentsProcessed *prometheus.CounterVec
	RowsExtracted      *prometheus.CounterVec
	MissingHeaders     prometheus.Counter
	ExtractDuration    prometheus.Histogram
	UploadsRejected    *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		DocumentsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Documents processed, by outcome.",
		}, []string{"status"}),
		RowsExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_extracted_total",
			Help:      "Rows extracted, by table.",
		}, []string{"table"}),
		MissingHeaders: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_order_header_total",
			Help:      "Documents with an order or invoice marker but no readable Order ID.",
		}),
		ExtractDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "text_extraction_seconds",
			Help:      "Time spent turning a file into text.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		UploadsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_rejected_total",
			Help:      "Uploads refused before processing, by reason.",
		}, []string{"reason"}),
	}
	reg.MustRegister(
		m.DocumentsProcessed,
		m.RowsExtracted,
		m.MissingHeaders,
		m.ExtractDuration,
		m.UploadsRejected,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveDocument records one processed document. Safe on a nil receiver.
func (m *Metrics) ObserveDocument(status constants.DocumentStatus, counts map[string]int, missingHeader bool) {
	if m == nil {
		return
	}
	m.DocumentsProcessed.WithLabelValues(string(status)).Inc()
	for table, n := range counts {
		if n > 0 {
			m.RowsExtracted.WithLabelValues(table).Add(float64(n))
		}
	}
	if missingHeader {
		m.MissingHeaders.Inc()
	}
}

// ObserveExtractSeconds records the duration of one text extraction. Safe on a nil receiver.
func (m *Metrics) ObserveExtractSeconds(seconds float64) {
	if m == nil {
		return
	}
	m.ExtractDuration.Observe(seconds)
}

// RejectUpload counts an upload refused for reason. Safe on a nil receiver.
func (m *Metrics) RejectUpload(reason string) {
	if m == nil {
		return
	}
	m.UploadsRejected.WithLabelValues(reason).Inc()
}
