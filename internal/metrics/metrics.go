// Package metrics exposes Prometheus instrumentation for the API, the
// analytics engine and the forecast cache.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covidtrend_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "covidtrend_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "covidtrend_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covidtrend_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"route"},
	)

	// Analytics engine
	ForecastDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "covidtrend_forecast_duration_seconds",
			Help:    "Time spent fitting and projecting a forecast",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covidtrend_query_errors_total",
			Help: "Query facade errors by operation and error code",
		},
		[]string{"operation", "code"},
	)

	// Forecast cache
	ForecastCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "covidtrend_forecast_cache_hits_total",
			Help: "Forecast cache hits",
		},
	)

	ForecastCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "covidtrend_forecast_cache_misses_total",
			Help: "Forecast cache misses",
		},
	)

	ForecastCacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covidtrend_forecast_cache_errors_total",
			Help: "Forecast cache failures (request still served)",
		},
		[]string{"op"}, // get, set, breaker_open
	)

	// Dataset
	DatasetRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "covidtrend_dataset_rows",
			Help: "Rows loaded from the dataset",
		},
	)

	DatasetRegions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "covidtrend_dataset_regions",
			Help: "Distinct regions in the dataset",
		},
	)

	// Scheduler
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "covidtrend_job_runs_total",
			Help: "Scheduled job runs by job and status",
		},
		[]string{"job", "status"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "covidtrend_job_duration_seconds",
			Help:    "Scheduled job duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit counts a rejected request
func RecordRateLimitHit(route string) {
	APIRateLimitHits.WithLabelValues(route).Inc()
}

// RecordForecast observes one forecast computation
func RecordForecast(duration time.Duration) {
	ForecastDuration.Observe(duration.Seconds())
}

// RecordQueryError counts a facade error by its public code
func RecordQueryError(operation, code string) {
	QueryErrors.WithLabelValues(operation, code).Inc()
}

// RecordCacheLookup records a forecast cache hit or miss
func RecordCacheLookup(hit bool) {
	if hit {
		ForecastCacheHits.Inc()
	} else {
		ForecastCacheMisses.Inc()
	}
}

// RecordCacheError counts a cache failure
func RecordCacheError(op string) {
	ForecastCacheErrors.WithLabelValues(op).Inc()
}

// SetDatasetStats publishes dataset size gauges
func SetDatasetStats(rows, regions int) {
	DatasetRows.Set(float64(rows))
	DatasetRegions.Set(float64(regions))
}

// RecordJobRun records a scheduled job outcome
func RecordJobRun(job string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	JobRuns.WithLabelValues(job, status).Inc()
	JobDuration.WithLabelValues(job).Observe(duration.Seconds())
}
