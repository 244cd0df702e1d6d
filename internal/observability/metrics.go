package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "accident_analytics"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// analysis service.
type Metrics struct {
	Analyses         *prometheus.CounterVec // labels: outcome={success,unparsable,error}
	RowsAnalyzed     prometheus.Counter
	AnalysisDuration prometheus.Histogram
	HourSource       *prometheus.CounterVec // labels: source={hour_column,time_column,datetime_column,hour_fallback,default}
	HotspotFailures  prometheus.Counter
	StoredResults    prometheus.Gauge
	ResultEvictions  prometheus.Counter

	// Publishing metrics.
	PublishAttempts *prometheus.CounterVec // labels: outcome={success,error}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.Analyses,
		m.RowsAnalyzed,
		m.AnalysisDuration,
		m.HourSource,
		m.HotspotFailures,
		m.StoredResults,
		m.ResultEvictions,
		m.PublishAttempts,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewUnregisteredMetrics creates Metrics that are not registered with any
// registry, for one-shot commands that never serve /metrics.
func NewUnregisteredMetrics() *Metrics {
	return newMetrics()
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return NewUnregisteredMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "CSV analyses by outcome.",
		}, []string{"outcome"}),
		RowsAnalyzed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_analyzed_total",
			Help:      "Total data rows aggregated across all analyses.",
		}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete parse-analyze-store cycle.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		HourSource: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hour_source_total",
			Help:      "Analyses by the strategy that produced the hour-of-day values.",
		}, []string{"source"}),
		HotspotFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hotspot_failures_total",
			Help:      "Analyses whose hotspot clustering was abandoned due to bad coordinates.",
		}),
		StoredResults: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stored_results",
			Help:      "Number of analysis results currently held in memory.",
		}),
		ResultEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_evictions_total",
			Help:      "Results evicted from the store to make room for newer ones.",
		}),
		PublishAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_attempts_total",
			Help:      "Attempts to publish analysis summaries by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Reverse geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when hotspot geocoding is enabled, 0 otherwise.",
		}),
	}
}
