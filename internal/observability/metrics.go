package observability

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for review scraping.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	Registry *prometheus.Registry

	PagesFetched     prometheus.Counter
	PageFailures     *prometheus.CounterVec
	ReviewsExtracted prometheus.Counter
	Scrapes          *prometheus.CounterVec
	PageDuration     prometheus.Histogram
	ScrapeDuration   prometheus.Histogram

	// Plain counters mirrored for Snapshot.
	pages    atomic.Int64
	failures atomic.Int64
	reviews  atomic.Int64
	scrapes  atomic.Int64
}

// NewMetrics constructs and registers all collectors on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reviewgoat_pages_fetched_total",
		Help: "Listing pages loaded with review content.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewgoat_page_failures_total",
		Help: "Listing pages that ended pagination, by reason.",
	}, []string{"reason"})
	reviews := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reviewgoat_reviews_extracted_total",
		Help: "Review records extracted.",
	})
	scrapes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reviewgoat_scrapes_total",
		Help: "Completed scrapes by stop reason.",
	}, []string{"stop_reason"})
	pageDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reviewgoat_page_duration_seconds",
		Help:    "Time to load a listing page and wait for reviews.",
		Buckets: prometheus.DefBuckets,
	})
	scrapeDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "reviewgoat_scrape_duration_seconds",
		Help:    "Wall time of a multi-page scrape.",
		Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	registry.MustRegister(pages, failures, reviews, scrapes, pageDuration, scrapeDuration)

	return &Metrics{
		Registry:         registry,
		PagesFetched:     pages,
		PageFailures:     failures,
		ReviewsExtracted: reviews,
		Scrapes:          scrapes,
		PageDuration:     pageDuration,
		ScrapeDuration:   scrapeDuration,
	}
}

// Handler serves the registry in Prometheus text exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// PageFetched records a loaded page and how long it took.
func (m *Metrics) PageFetched(d time.Duration) {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
	m.PageDuration.Observe(d.Seconds())
	m.pages.Add(1)
}

// PageFailed records a page that stopped pagination.
func (m *Metrics) PageFailed(reason string) {
	if m == nil {
		return
	}
	m.PageFailures.WithLabelValues(reason).Inc()
	m.failures.Add(1)
}

// ReviewsAdded records n extracted reviews.
func (m *Metrics) ReviewsAdded(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ReviewsExtracted.Add(float64(n))
	m.reviews.Add(int64(n))
}

// ScrapeFinished records a finished scrape.
func (m *Metrics) ScrapeFinished(stopReason string, d time.Duration) {
	if m == nil {
		return
	}
	m.Scrapes.WithLabelValues(stopReason).Inc()
	m.ScrapeDuration.Observe(d.Seconds())
	m.scrapes.Add(1)
}

// Snapshot returns the plain counters as a map.
func (m *Metrics) Snapshot() map[string]int64 {
	if m == nil {
		return map[string]int64{}
	}
	return map[string]int64{
		"pages_fetched":     m.pages.Load(),
		"page_failures":     m.failures.Load(),
		"reviews_extracted": m.reviews.Load(),
		"scrapes":           m.scrapes.Load(),
	}
}
