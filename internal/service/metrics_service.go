package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	messagesSent    *prometheus.CounterVec
	extractionCalls *prometheus.CounterVec
	realtimeClients prometheus.Gauge
	notifQueueDepth prometheus.Gauge
}

// NewMetricsService registers the core collectors.
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

	messagesSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "messages_sent_total",
		Help: "Messages inserted, labelled by delivery kind",
	}, []string{"kind"})

	extractionCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "extraction_calls_total",
		Help: "Roster extraction attempts by outcome",
	}, []string{"outcome"})

	realtimeClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_subscriptions",
		Help: "Active realtime channel subscriptions",
	})

	notifQueueDepth := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "notification_queue_depth",
		Help: "Pending notification jobs",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, messagesSent, extractionCalls, realtimeClients, notifQueueDepth, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		messagesSent:    messagesSent,
		extractionCalls: extractionCalls,
		realtimeClients: realtimeClients,
		notifQueueDepth: notifQueueDepth,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// CountMessageSent increments the message counter. kind is "direct" or
// "group".
func (m *MetricsService) CountMessageSent(kind string, n int) {
	if m == nil {
		return
	}
	m.messagesSent.WithLabelValues(kind).Add(float64(n))
}

// CountExtraction increments the extraction counter by outcome.
func (m *MetricsService) CountExtraction(outcome string) {
	if m == nil {
		return
	}
	m.extractionCalls.WithLabelValues(outcome).Inc()
}

// SetRealtimeSubscriptions records the current subscription count.
func (m *MetricsService) SetRealtimeSubscriptions(n int) {
	if m == nil {
		return
	}
	m.realtimeClients.Set(float64(n))
}

// SetNotificationQueueDepth records pending notification jobs.
func (m *MetricsService) SetNotificationQueueDepth(n int) {
	if m == nil {
		return
	}
	m.notifQueueDepth.Set(float64(n))
}
