package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sardis_lake"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// conditions service.
type Metrics struct {
	// Upstream fetch metrics.
	UpstreamRequests *prometheus.CounterVec   // labels: source={usgs,open-meteo,overpass}, outcome={success,error,empty}
	UpstreamDuration *prometheus.HistogramVec // labels: source
	Fallbacks        *prometheus.CounterVec   // labels: source

	// Proxy response cache.
	ProxyCache *prometheus.CounterVec // labels: route, result={hit,miss}

	// Refresher and sinks.
	RefresherRunning   prometheus.Gauge
	RefreshDuration    *prometheus.HistogramVec // labels: source
	SnapshotsPublished prometheus.Counter
	PublishErrors      prometheus.Counter
	ReadingsRecorded   prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.Fallbacks,
		m.ProxyCache,
		m.RefresherRunning,
		m.RefreshDuration,
		m.SnapshotsPublished,
		m.PublishErrors,
		m.ReadingsRecorded,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream API requests by source and outcome.",
		}, []string{"source", "outcome"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}, []string{"source"}),
		Fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Times a fallback value replaced upstream data, by source.",
		}, []string{"source"}),
		ProxyCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proxy_cache_total",
			Help:      "Proxy response cache lookups by route and result.",
		}, []string{"route", "result"}),
		RefresherRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresher_running",
			Help:      "1 when the background refresher is active, 0 when stopped.",
		}),
		RefreshDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of one scheduled refresh, including fallbacks.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		SnapshotsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_published_total",
			Help:      "Conditions snapshots written to Kafka.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failed conditions snapshot publishes.",
		}),
		ReadingsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_recorded_total",
			Help:      "Water-level readings stored in the history database.",
		}),
	}
}
