package service

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the engine.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	resolveDuration prometheus.Observer
	resolveTotal    prometheus.Counter

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	storeReadFallbacks *prometheus.CounterVec
	storeWriteFailures *prometheus.CounterVec
	storeWrites        *prometheus.CounterVec
}

// NewMetricsService registers the engine's Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	resolveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "roster_resolve_duration_seconds",
		Help:    "Duration of roster resolution runs",
		Buckets: prometheus.DefBuckets,
	})

	resolveTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_resolve_total",
		Help: "Total roster resolution runs",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_cache_hits_total",
		Help: "Total roster cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "roster_cache_misses_total",
		Help: "Total roster cache misses",
	})

	storeReadFallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_read_fallbacks_total",
		Help: "Backing store reads that fell back to cached or empty data",
	}, []string{"endpoint"})

	storeWriteFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_write_failures_total",
		Help: "Backing store writes that failed",
	}, []string{"endpoint"})

	storeWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_writes_total",
		Help: "Backing store writes that succeeded",
	}, []string{"endpoint"})

	registry.MustRegister(requestDuration, requestTotal, resolveDuration, resolveTotal,
		cacheHits, cacheMisses, storeReadFallbacks, storeWriteFailures, storeWrites)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		resolveDuration:    resolveDuration,
		resolveTotal:       resolveTotal,
		cacheHits:          cacheHits,
		cacheMisses:        cacheMisses,
		storeReadFallbacks: storeReadFallbacks,
		storeWriteFailures: storeWriteFailures,
		storeWrites:        storeWrites,
	}
}

// Handler exposes the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one served request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := []string{method, path, strconv.Itoa(status)}
	s.requestDuration.WithLabelValues(labels...).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(labels...).Inc()
}

// ObserveResolve records one roster resolution run.
func (s *MetricsService) ObserveResolve(duration time.Duration) {
	s.resolveTotal.Inc()
	s.resolveDuration.Observe(duration.Seconds())
}

// RecordCacheLookup counts a roster cache hit or miss.
func (s *MetricsService) RecordCacheLookup(hit bool) {
	if hit {
		s.cacheHits.Inc()
		return
	}
	s.cacheMisses.Inc()
}

// StoreReadFallback implements repository.StoreMetrics.
func (s *MetricsService) StoreReadFallback(endpoint string) {
	s.storeReadFallbacks.WithLabelValues(endpoint).Inc()
}

// StoreWriteFailure implements repository.StoreMetrics.
func (s *MetricsService) StoreWriteFailure(endpoint string) {
	s.storeWriteFailures.WithLabelValues(endpoint).Inc()
}

// StoreWrite implements repository.StoreMetrics.
func (s *MetricsService) StoreWrite(endpoint string) {
	s.storeWrites.WithLabelValues(endpoint).Inc()
}
