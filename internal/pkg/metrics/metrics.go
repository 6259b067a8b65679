// Package metrics exposes the ingest counters on a dedicated registry so
// tests can build isolated instances and the handler serves only our series.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	RowsScraped     *prometheus.CounterVec
	RowsUpserted    *prometheus.CounterVec
	RowsRejected    *prometheus.CounterVec
	CommodityErrors *prometheus.CounterVec
	BatchFailures   prometheus.Counter
	SourceDuration  *prometheus.HistogramVec
	LastRunUpserted prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.RowsScraped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_ingestor",
		Name:      "rows_scraped_total",
		Help:      "Rows parsed out of board price tables.",
	}, []string{"organization"})

	m.RowsUpserted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_ingestor",
		Name:      "rows_upserted_total",
		Help:      "Rows committed to market_prices.",
	}, []string{"organization"})

	m.RowsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_ingestor",
		Name:      "rows_rejected_total",
		Help:      "Parsed rows dropped during normalization.",
	}, []string{"organization"})

	m.CommodityErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "market_ingestor",
		Name:      "commodity_errors_total",
		Help:      "Commodity fetches that failed after retries.",
	}, []string{"organization"})

	m.BatchFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "market_ingestor",
		Name:      "batch_failures_total",
		Help:      "Upsert batches that failed and were skipped.",
	})

	m.SourceDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "market_ingestor",
		Name:      "source_duration_seconds",
		Help:      "Wall time of one source ingest.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"organization"})

	m.LastRunUpserted = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "market_ingestor",
		Name:      "last_run_upserted",
		Help:      "Rows upserted by the most recent run.",
	})

	m.registry.MustRegister(
		m.RowsScraped,
		m.RowsUpserted,
		m.RowsRejected,
		m.CommodityErrors,
		m.BatchFailures,
		m.SourceDuration,
		m.LastRunUpserted,
	)

	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
