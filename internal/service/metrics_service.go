package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/institute-admissions-api/internal/models"
)

// Conversion outcomes recorded by the admissions counter.
const (
	ConversionOutcomeSuccess          = "success"
	ConversionOutcomeAlreadyConverted = "already_converted"
	ConversionOutcomeRejected         = "rejected"
	ConversionOutcomeError            = "error"
)

// Attendance scopes recorded by the marks counter.
const (
	AttendanceScopeTest = "test"
	AttendanceScopeExam = "exam"
)

// MetricsService owns the Prometheus registry of the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheLookups    *prometheus.CounterVec
	conversions     *prometheus.CounterVec
	marksWritten    *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	exports         *prometheus.CounterVec
	lockWaits       *prometheus.CounterVec

	cacheHitCount        uint64
	cacheMissCount       uint64
	requestCount         uint64
	requestDurationTotal uint64
	conversionCount      uint64
	marksWrittenCount    uint64
}

// NewMetricsService registers the API collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	m := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Cache lookups by result",
		}, []string{"result"}),
		conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admissions_conversions_total",
			Help: "Registration to student conversions by outcome",
		}, []string{"outcome"}),
		marksWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_marks_written_total",
			Help: "Attendance marks persisted by scope",
		}, []string{"scope"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "student_import_rows_total",
			Help: "Bulk student import rows by result",
		}, []string{"result"}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_exports_total",
			Help: "Attendance exports generated by format",
		}, []string{"format"}),
		lockWaits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attendance_session_lock_total",
			Help: "Attendance session lock attempts by result",
		}, []string{"result"}),
	}
	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})
	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache writes",
		Buckets: prometheus.DefBuckets,
	})
	m.cacheLatency = cacheLatency
	m.cacheWrite = cacheWrite

	registry.MustRegister(
		m.requestDuration, m.requestTotal, cacheLatency, cacheWrite, m.cacheLookups,
		m.conversions, m.marksWritten, m.importRows, m.exports, m.lockWaits,
		collectors.NewGoCollector(),
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordCacheOperation records a cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
	atomic.AddUint64(&m.cacheMissCount, 1)
}

// ObserveCacheWrite tracks the duration of cache writes.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// RecordConversion counts a conversion attempt.
func (m *MetricsService) RecordConversion(outcome string) {
	if m == nil {
		return
	}
	m.conversions.WithLabelValues(outcome).Inc()
	if outcome == ConversionOutcomeSuccess {
		atomic.AddUint64(&m.conversionCount, 1)
	}
}

// RecordMarksWritten counts persisted attendance marks.
func (m *MetricsService) RecordMarksWritten(scope string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.marksWritten.WithLabelValues(scope).Add(float64(n))
	atomic.AddUint64(&m.marksWrittenCount, uint64(n))
}

// RecordImportRows counts imported and rejected rows.
func (m *MetricsService) RecordImportRows(succeeded, failed int) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues("succeeded").Add(float64(succeeded))
	m.importRows.WithLabelValues("failed").Add(float64(failed))
}

// RecordExport counts a generated export.
func (m *MetricsService) RecordExport(format models.ExportFormat) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(string(format)).Inc()
}

// RecordLockAttempt counts session lock acquisitions and contention.
func (m *MetricsService) RecordLockAttempt(acquired bool) {
	if m == nil {
		return
	}
	if acquired {
		m.lockWaits.WithLabelValues("acquired").Inc()
		return
	}
	m.lockWaits.WithLabelValues("busy").Inc()
}

// Snapshot returns aggregated process metrics.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	misses := atomic.LoadUint64(&m.cacheMissCount)
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var cacheRatio float64
	if total := hits + misses; total > 0 {
		cacheRatio = float64(hits) / float64(total)
	}
	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.SystemMetrics{
		CacheHitRatio:            cacheRatio,
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		Conversions:              atomic.LoadUint64(&m.conversionCount),
		AttendanceMarksWritten:   atomic.LoadUint64(&m.marksWrittenCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
