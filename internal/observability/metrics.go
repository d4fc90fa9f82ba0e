package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects the Prometheus metrics of the service.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	paymentsApplied  *prometheus.CounterVec
	paymentAmount    *prometheus.CounterVec
	receiptFallbacks *prometheus.CounterVec
	deliveries       *prometheus.CounterVec
	jobsTotal        *prometheus.CounterVec
}

// NewMetrics initialises the registry and every collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studio_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_payments_applied_total",
		Help: "Payments written to bookings by kind.",
	}, []string{"kind"})
	amount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_payment_amount_rupees_total",
		Help: "Sum of applied payments in rupees by kind.",
	}, []string{"kind"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_receipt_fallback_total",
		Help: "Deliveries that fell back to a plain-text message, by reason.",
	}, []string{"reason"})
	deliveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_message_deliveries_total",
		Help: "Business API message pushes by result.",
	}, []string{"result"})
	jobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_jobs_total",
		Help: "Background tasks processed by type and status.",
	}, []string{"task", "status"})
	registry.MustRegister(
		requests, duration, payments, amount, fallbacks, deliveries, jobs,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		paymentsApplied:  payments,
		paymentAmount:    amount,
		receiptFallbacks: fallbacks,
		deliveries:       deliveries,
		jobsTotal:        jobs,
	}
}

// Handler returns the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// PaymentApplied counts a payment and its amount in rupees.
func (m *Metrics) PaymentApplied(kind string, rupees float64) {
	if m == nil {
		return
	}
	m.paymentsApplied.WithLabelValues(kind).Inc()
	if rupees > 0 {
		m.paymentAmount.WithLabelValues(kind).Add(rupees)
	}
}

// ReceiptFallback counts a degraded delivery.
func (m *Metrics) ReceiptFallback(reason string) {
	if m == nil {
		return
	}
	m.receiptFallbacks.WithLabelValues(reason).Inc()
}

// MessageDelivery counts a business API push ("sent" or "failed").
func (m *Metrics) MessageDelivery(result string) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(result).Inc()
}

// JobProcessed counts a background task run.
func (m *Metrics) JobProcessed(task, status string) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(task, status).Inc()
}

// Registerer exposes the registry for extra collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
