package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the collectors of one process. A private registry keeps
// tests free of duplicate-registration panics.
type Metrics struct {
	Registry *prometheus.Registry

	RequestCounter           *prometheus.CounterVec
	RequestDurationHistogram *prometheus.HistogramVec
	StockCorrections         *prometheus.CounterVec
	InvoicesReceived         prometheus.Counter
	ReturnsRecorded          *prometheus.CounterVec
	AdvisoryRequests         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDurationHistogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		StockCorrections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apotek_stock_corrections_total",
				Help: "Stock count confirmations, split by whether the count differed",
			},
			[]string{"outcome"},
		),
		InvoicesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "apotek_invoices_received_total",
			Help: "Invoices finalized against purchase orders",
		}),
		ReturnsRecorded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apotek_returns_recorded_total",
				Help: "Return records created, by type",
			},
			[]string{"type"},
		),
		AdvisoryRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "apotek_advisory_requests_total",
				Help: "Discrepancy explanation requests, by result",
			},
			[]string{"result"},
		),
	}
	m.Registry.MustRegister(
		m.RequestCounter,
		m.RequestDurationHistogram,
		m.StockCorrections,
		m.InvoicesReceived,
		m.ReturnsRecorded,
		m.AdvisoryRequests,
	)
	return m
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Middleware records request count and latency. route maps a request to a
// low-cardinality label; ids in paths must not leak into labels.
func (m *Metrics) Middleware(route func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := r.URL.Path
		if route != nil {
			path = route(r)
		}
		status := strconv.Itoa(sw.status)
		m.RequestCounter.WithLabelValues(r.Method, path, status).Inc()
		m.RequestDurationHistogram.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
