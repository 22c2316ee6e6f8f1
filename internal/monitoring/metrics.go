// internal/monitoring/metrics.go
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/valpere/AttendScrapexter/internal/browser"
)

// MetricsManager manages Prometheus metrics for the attendance service.
// A nil *MetricsManager is valid and records nothing.
type MetricsManager struct {
	registry *prometheus.Registry

	// Scrape metrics
	scrapesTotal      *prometheus.CounterVec
	scrapeDuration    *prometheus.HistogramVec
	stepDuration      *prometheus.HistogramVec
	coursesExtracted  prometheus.Counter
	containersSkipped *prometheus.CounterVec
	transientTimeouts *prometheus.CounterVec

	// HTTP metrics
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	rateLimitHits *prometheus.CounterVec

	namespace string
}

// MetricsConfig configuration for metrics
type MetricsConfig struct {
	Namespace            string
	Registry             *prometheus.Registry
	EnableGoMetrics      bool
	EnableProcessMetrics bool
}

// NewMetricsManager creates a metrics manager on its own registry, so several
// managers can coexist in one process (tests).
func NewMetricsManager(config MetricsConfig) *MetricsManager {
	if config.Namespace == "" {
		config.Namespace = "attendscrape"
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}

	mm := &MetricsManager{
		registry:  config.Registry,
		namespace: config.Namespace,
	}
	mm.initializeMetrics()

	if config.EnableGoMetrics {
		mm.registry.MustRegister(collectors.NewGoCollector())
	}
	if config.EnableProcessMetrics {
		mm.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return mm
}

// initializeMetrics initializes all Prometheus metrics
func (mm *MetricsManager) initializeMetrics() {
	factory := promauto.With(mm.registry)

	mm.scrapesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "scraper",
			Name:      "scrapes_total",
			Help:      "Attendance scrapes by outcome",
		},
		[]string{"outcome"},
	)

	mm.scrapeDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: mm.namespace,
			Subsystem: "scraper",
			Name:      "scrape_duration_seconds",
			Help:      "Wall time of a scrape, permit wait included",
			Buckets:   []float64{1, 2, 5, 10, 15, 20, 30, 45, 60, 90, 120},
		},
		[]string{"outcome"},
	)

	mm.stepDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: mm.namespace,
			Subsystem: "scraper",
			Name:      "step_duration_seconds",
			Help:      "Duration of each login and extraction step",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"step", "result"},
	)

	mm.coursesExtracted = factory.NewCounter(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "scraper",
			Name:      "courses_extracted_total",
			Help:      "Course records returned to callers",
		},
	)

	mm.containersSkipped = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "scraper",
			Name:      "containers_skipped_total",
			Help:      "Attendance containers left out of results, by reason",
		},
		[]string{"reason"},
	)

	mm.transientTimeouts = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "scraper",
			Name:      "transient_timeouts_total",
			Help:      "Best-effort waits that expired without failing the scrape",
		},
		[]string{"step"},
	)

	mm.httpRequests = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served",
		},
		[]string{"route", "method", "status_code"},
	)

	mm.httpDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: mm.namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	mm.rateLimitHits = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: mm.namespace,
			Subsystem: "http",
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the per-client rate limiter",
		},
		[]string{"route"},
	)
}

// RegisterPoolStats exposes the browser pool as gauges read at scrape time.
func (mm *MetricsManager) RegisterPoolStats(stats func() browser.PoolStats) {
	if mm == nil || stats == nil {
		return
	}
	factory := promauto.With(mm.registry)

	gauge := func(name, help string, value func(browser.PoolStats) float64) {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: mm.namespace,
			Subsystem: "browser",
			Name:      name,
			Help:      help,
		}, func() float64 { return value(stats()) })
	}

	gauge("ready", "1 when the shared browser accepts work", func(s browser.PoolStats) float64 {
		if s.Ready {
			return 1
		}
		return 0
	})
	gauge("permits_capacity", "Maximum concurrent scrapes", func(s browser.PoolStats) float64 { return float64(s.Capacity) })
	gauge("permits_in_use", "Scrapes currently holding a permit", func(s browser.PoolStats) float64 { return float64(s.InUse) })
	gauge("open_contexts", "Browsing contexts not yet closed", func(s browser.PoolStats) float64 { return float64(s.OpenContexts) })
}

// ObserveScrape records one finished scrape.
func (mm *MetricsManager) ObserveScrape(outcome string, took time.Duration, courses int) {
	if mm == nil {
		return
	}
	mm.scrapesTotal.WithLabelValues(outcome).Inc()
	mm.scrapeDuration.WithLabelValues(outcome).Observe(took.Seconds())
	mm.coursesExtracted.Add(float64(courses))
}

// ObserveStep records the duration of one pipeline step.
func (mm *MetricsManager) ObserveStep(step string, took time.Duration, err error) {
	if mm == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	mm.stepDuration.WithLabelValues(step, result).Observe(took.Seconds())
}

// ObserveTransientTimeout counts a tolerated wait expiry.
func (mm *MetricsManager) ObserveTransientTimeout(step string) {
	if mm == nil {
		return
	}
	mm.transientTimeouts.WithLabelValues(step).Inc()
}

// ObserveSkippedContainer counts one container excluded from a result.
func (mm *MetricsManager) ObserveSkippedContainer(reason string) {
	if mm == nil {
		return
	}
	mm.containersSkipped.WithLabelValues(reason).Inc()
}

// ObserveHTTPRequest records one served request.
func (mm *MetricsManager) ObserveHTTPRequest(route, method string, status int, took time.Duration) {
	if mm == nil {
		return
	}
	mm.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	mm.httpDuration.WithLabelValues(route).Observe(took.Seconds())
}

// RecordRateLimitHit counts a rejected request.
func (mm *MetricsManager) RecordRateLimitHit(route string) {
	if mm == nil {
		return
	}
	mm.rateLimitHits.WithLabelValues(route).Inc()
}

// Registry returns the registry backing this manager.
func (mm *MetricsManager) Registry() *prometheus.Registry {
	return mm.registry
}

// MetricsHandler returns an HTTP handler for metrics endpoint
func (mm *MetricsManager) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(mm.registry, promhttp.HandlerOpts{Registry: mm.registry})
}
