// Package telemetry provides Prometheus metrics and a tracer handle for the
// sponsorlens service, exposed at /metrics.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "sponsorlens"

// Metrics holds all sponsorlens Prometheus metrics.
type Metrics struct {
	// Pipeline metrics
	ItemsClassified    *prometheus.CounterVec
	ItemsFailed        *prometheus.CounterVec
	ClassifyDuration   *prometheus.HistogramVec
	BatchSize          prometheus.Histogram
	ActiveRuns         prometheus.Gauge
	RunsStarted        *prometheus.CounterVec
	SnapshotsPublished prometheus.Counter

	// Provider metrics
	ProviderCalls    prometheus.Counter
	ProviderErrors   *prometheus.CounterVec
	ProviderDuration prometheus.Histogram
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter

	// Data provider metrics
	ItemsFetched *prometheus.CounterVec
	FetchErrors  *prometheus.CounterVec
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics.
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

// RecordClassification records one finalized item.
func (p *Provider) RecordClassification(method string, duration time.Duration, failed bool) {
	if p == nil || p.Metrics == nil {
		return
	}
	p.Metrics.ItemsClassified.WithLabelValues(method).Inc()
	p.Metrics.ClassifyDuration.WithLabelValues(method).Observe(duration.Seconds())
	if failed {
		p.Metrics.ItemsFailed.WithLabelValues(method).Inc()
	}
}

// RecordProviderCall records one Gemini round trip and whether the reply
// cache absorbed it.
func (p *Provider) RecordProviderCall(cacheHit bool, duration time.Duration, err error) {
	if p == nil || p.Metrics == nil {
		return
	}
	if cacheHit {
		p.Metrics.CacheHits.Inc()
		return
	}
	p.Metrics.CacheMisses.Inc()
	p.Metrics.ProviderCalls.Inc()
	p.Metrics.ProviderDuration.Observe(duration.Seconds())
	if err != nil {
		p.Metrics.ProviderErrors.WithLabelValues(errorClass(err)).Inc()
	}
}

// RecordFetch records items retrieved from the data provider, or one
// failed retrieval.
func (p *Provider) RecordFetch(kind string, count int, err error) {
	if p == nil || p.Metrics == nil {
		return
	}
	if err != nil {
		p.Metrics.FetchErrors.WithLabelValues(kind).Inc()
		return
	}
	p.Metrics.ItemsFetched.WithLabelValues(kind).Add(float64(count))
}

func errorClass(err error) string {
	if err == nil {
		return "none"
	}
	return "provider"
}

func initMetrics() *Metrics {
	return &Metrics{
		ItemsClassified: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sponsorlens_items_classified_total",
			Help: "Items classified, by method (heuristic or ai)",
		}, []string{"method"}),
		ItemsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sponsorlens_items_failed_total",
			Help: "Items whose classification recorded an analysis error, by method",
		}, []string{"method"}),
		ClassifyDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sponsorlens_classify_duration_seconds",
			Help:    "Per-item classification duration, by method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sponsorlens_batch_size",
			Help:    "Items per analysis run",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 500},
		}),
		ActiveRuns: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "sponsorlens_active_runs",
			Help: "Analysis runs currently executing",
		}),
		RunsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sponsorlens_runs_started_total",
			Help: "Analysis runs started, by mode (heuristic or ai)",
		}, []string{"mode"}),
		SnapshotsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sponsorlens_snapshots_published_total",
			Help: "Progressive result snapshots published to subscribers",
		}),
		ProviderCalls: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sponsorlens_provider_calls_total",
			Help: "Gemini completion calls actually made (cache misses)",
		}),
		ProviderErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sponsorlens_provider_errors_total",
			Help: "Gemini completion calls that failed, by class",
		}, []string{"class"}),
		ProviderDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sponsorlens_provider_duration_seconds",
			Help:    "Gemini completion round-trip duration",
			Buckets: []float64{0.25, 0.5, 1, 2, 3, 5, 10, 30},
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sponsorlens_reply_cache_hits_total",
			Help: "Classifier replies served from the content-addressed cache",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sponsorlens_reply_cache_misses_total",
			Help: "Classifier replies that required a provider call",
		}),
		ItemsFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sponsorlens_items_fetched_total",
			Help: "Raw items fetched from the data provider, by kind",
		}, []string{"kind"}),
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sponsorlens_fetch_errors_total",
			Help: "Data provider failures, by kind",
		}, []string{"kind"}),
	}
}
