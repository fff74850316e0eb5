package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "socialpulse"

// Collector exposes Prometheus metrics for inbound HTTP requests and import runs.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	importTotal     *prometheus.CounterVec
	importDuration  *prometheus.HistogramVec
	importRows      *prometheus.CounterVec
	importSamples   *prometheus.CounterVec
	saveFailures    *prometheus.CounterVec
}

// NewCollector constructs a collector with default histograms/counters.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for inbound HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests.",
		}, []string{"method", "path", "status"}),
		importTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "runs_total",
			Help:      "Import runs by network and outcome.",
		}, []string{"network", "status"}),
		importDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Wall time of import runs.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"network"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "rows_total",
			Help:      "Data rows read from spreadsheet tabs.",
		}, []string{"network"}),
		importSamples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "samples_total",
			Help:      "Samples appended to account histories.",
		}, []string{"network"}),
		saveFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "import",
			Name:      "save_failures_total",
			Help:      "Account records that failed to persist.",
		}, []string{"network"}),
	}

	for _, col := range []prometheus.Collector{
		c.requestDuration, c.requestTotal,
		c.importTotal, c.importDuration, c.importRows, c.importSamples, c.saveFailures,
	} {
		if err := registry.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler to record HTTP metrics. Requests
// are labelled by the matched route pattern so path parameters do not explode
// label cardinality.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

// ObserveImport records the outcome of one import run.
func (c *Collector) ObserveImport(network, status string, rows, samples int, duration time.Duration) {
	c.importTotal.WithLabelValues(network, status).Inc()
	c.importDuration.WithLabelValues(network).Observe(duration.Seconds())
	c.importRows.WithLabelValues(network).Add(float64(rows))
	c.importSamples.WithLabelValues(network).Add(float64(samples))
}

// ObserveSaveFailures records account saves that failed during a run.
func (c *Collector) ObserveSaveFailures(network string, n int) {
	if n > 0 {
		c.saveFailures.WithLabelValues(network).Add(float64(n))
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
