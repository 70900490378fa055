// Package metrics provides Prometheus metrics for the development HTTP server
// and for queue message outcomes.
package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/abirbhav/Dining-Concierge-Chatbot/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	subsystem = "dining"
)

// Job metric counter indices.
const (
	JobMetricTotal = iota
	JobMetricTotalSuccess
	JobMetricTotalFailed
	JobMetricTotalMalformed
)

// Metrics holds the registry and the collectors enabled at construction.
type Metrics struct {
	reg *prometheus.Registry

	TotalHTTPRequestsCounter prometheus.Counter
	HTTPResponsesCounter     *prometheus.CounterVec
	HTTPDurationHistogram    prometheus.Histogram

	JobMetricCounters map[int]prometheus.Counter

	log logger.Logger
}

// NewMetrics creates a new Metrics instance with the specified collectors enabled.
func NewMetrics(httpCounters, jobMetrics bool, l logger.Logger) *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		log: l,
	}
	if httpCounters {
		m.TotalHTTPRequestsCounter = prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "total_http_requests",
			Help:      "Total HTTP requests",
		})
		m.HTTPResponsesCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "http_responses_total",
			Help:      "HTTP responses by status code",
		}, []string{"code"})
		m.HTTPDurationHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.3, 0.5, 0.7, 1.0, 3.0, 5.0, 7.0, 10.0},
		})
		m.reg.MustRegister(m.TotalHTTPRequestsCounter, m.HTTPResponsesCounter, m.HTTPDurationHistogram)
	}
	if jobMetrics {
		m.JobMetricCounters = jobCounters()
		for _, c := range m.JobMetricCounters {
			m.reg.MustRegister(c)
		}
	}
	return m
}

func jobCounters() map[int]prometheus.Counter {
	newCounter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Subsystem: subsystem, Name: name, Help: help})
	}
	return map[int]prometheus.Counter{
		JobMetricTotal:          newCounter("total_messages_handled", "Total queue messages handled"),
		JobMetricTotalSuccess:   newCounter("total_messages_delivered", "Queue messages delivered by email"),
		JobMetricTotalFailed:    newCounter("total_messages_failed", "Queue messages left for redelivery after an upstream failure"),
		JobMetricTotalMalformed: newCounter("total_messages_malformed", "Queue messages whose body could not be parsed"),
	}
}

func (m *Metrics) incJob(idx int) {
	if m.JobMetricCounters == nil {
		return
	}
	m.JobMetricCounters[JobMetricTotal].Inc()
	m.JobMetricCounters[idx].Inc()
}

// MessageDelivered records a message that was emailed and deleted.
func (m *Metrics) MessageDelivered() { m.incJob(JobMetricTotalSuccess) }

// MessageFailed records a message left in the queue after an upstream failure.
func (m *Metrics) MessageFailed() { m.incJob(JobMetricTotalFailed) }

// MessageMalformed records a message whose body could not be parsed.
func (m *Metrics) MessageMalformed() { m.incJob(JobMetricTotalMalformed) }

// Registry exposes the underlying registry for custom collectors and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler returns the /metrics handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Listen starts the metrics HTTP server on the specified port and returns it so the
// caller can shut it down.
func (m *Metrics) Listen(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/", http.NotFoundHandler())
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	m.log.Info("Starting metrics listener", logger.IntField("port", port))
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.log.Error("Metrics listener failed", logger.ErrorField(err))
		}
	}()
	return server
}

// HTTPMiddleware returns a chi-compatible middleware that tracks HTTP metrics
func (m *Metrics) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.TotalHTTPRequestsCounter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			m.TotalHTTPRequestsCounter.Inc()

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			m.HTTPDurationHistogram.Observe(time.Since(start).Seconds())
			m.HTTPResponsesCounter.WithLabelValues(strconv.Itoa(rw.statusCode)).Inc()
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
