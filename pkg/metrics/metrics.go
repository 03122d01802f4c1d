// Package metrics defines the Prometheus instrumentation for the
// scraping pipeline. A nil *Metrics is valid and drops every
// observation, which keeps tests and one-off tooling free of registry
// plumbing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every collector on a dedicated registry so the
// process exposes only its own series.
type Metrics struct {
	registry *prometheus.Registry

	fetchesTotal          *prometheus.CounterVec
	pagesWalkedTotal      prometheus.Counter
	reviewsExtractedTotal prometheus.Counter
	showMoreClicksTotal   prometheus.Counter
	fetchDuration         prometheus.Histogram
	activeLeases          prometheus.Gauge
}

// New builds the collector bundle and registers it on a fresh registry.
func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.fetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "scraper",
		Name:      "fetches_total",
		Help:      "Page fetches by outcome (ok, blocked, timeout, failed).",
	}, []string{"outcome"})

	m.pagesWalkedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "scraper",
		Name:      "review_pages_walked_total",
		Help:      "Review pages captured during pagination walks.",
	})

	m.reviewsExtractedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "scraper",
		Name:      "reviews_extracted_total",
		Help:      "Reviews extracted across all fetches.",
	})

	m.showMoreClicksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "scraper",
		Name:      "show_more_clicks_total",
		Help:      "Successful in-page expansion clicks.",
	})

	m.fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "scraper",
		Name:      "fetch_duration_seconds",
		Help:      "Wall time of successful single-page fetches.",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	m.activeLeases = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "scraper",
		Name:      "active_page_leases",
		Help:      "Pages currently leased from the browser session.",
	})

	m.registry.MustRegister(
		m.fetchesTotal,
		m.pagesWalkedTotal,
		m.reviewsExtractedTotal,
		m.showMoreClicksTotal,
		m.fetchDuration,
		m.activeLeases,
	)
	return m
}

// Registry exposes the dedicated registry for the metrics listener.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) IncFetches(outcome string) {
	if m == nil {
		return
	}
	m.fetchesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncPagesWalked() {
	if m == nil {
		return
	}
	m.pagesWalkedTotal.Inc()
}

func (m *Metrics) AddReviewsExtracted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.reviewsExtractedTotal.Add(float64(n))
}

func (m *Metrics) AddShowMoreClicks(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.showMoreClicksTotal.Add(float64(n))
}

func (m *Metrics) ObserveFetchDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
}

func (m *Metrics) LeaseAcquired() {
	if m == nil {
		return
	}
	m.activeLeases.Inc()
}

func (m *Metrics) LeaseReleased() {
	if m == nil {
		return
	}
	m.activeLeases.Dec()
}
