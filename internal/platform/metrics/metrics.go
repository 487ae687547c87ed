// Package metrics exposes Prometheus collectors for the profile registry,
// the background mutator, profile change events and HTTP traffic.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/profile-api/internal/events"
	"github.com/phrazzld/profile-api/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "profile_api"

// Recorder owns a Prometheus registry and the application collectors.
// It implements store.Observer, task.TickObserver and events.EventHandler.
type Recorder struct {
	registry *prometheus.Registry

	transactions        *prometheus.CounterVec
	transactionDuration *prometheus.HistogramVec
	profileCount        prometheus.Gauge
	mutatorTicks        *prometheus.CounterVec
	profileEvents       *prometheus.CounterVec

	httpInFlight prometheus.Gauge
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewRecorder creates a Recorder with every collector registered, including
// the Go runtime and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		transactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "transactions_total",
				Help:      "Total number of registry transactions by outcome.",
			},
			[]string{"outcome"},
		),
		transactionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "transaction_duration_seconds",
				Help:      "Time a transaction held the registry.",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
			},
			[]string{"outcome"},
		),
		profileCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "profiles",
				Help:      "Number of profiles in the registry.",
			},
		),
		mutatorTicks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "mutator",
				Name:      "ticks_total",
				Help:      "Total number of background mutator ticks by result.",
			},
			[]string{"result"},
		),
		profileEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "profile_events_total",
				Help:      "Total number of profile change events by type and source.",
			},
			[]string{"type", "source"},
		),
		httpInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "inflight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"method", "route"},
		),
	}

	r.registry.MustRegister(
		r.transactions,
		r.transactionDuration,
		r.profileCount,
		r.mutatorTicks,
		r.profileEvents,
		r.httpInFlight,
		r.httpRequests,
		r.httpDuration,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
	return r
}

// Registry returns the underlying Prometheus registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an HTTP handler exposing the registered metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveTransaction implements store.Observer.
func (r *Recorder) ObserveTransaction(outcome store.TxOutcome, elapsed time.Duration) {
	r.transactions.WithLabelValues(string(outcome)).Inc()
	r.transactionDuration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

// ObserveProfileCount implements store.Observer.
func (r *Recorder) ObserveProfileCount(count int) {
	r.profileCount.Set(float64(count))
}

// ObserveMutatorTick records the result of one mutator tick.
func (r *Recorder) ObserveMutatorTick(result string) {
	r.mutatorTicks.WithLabelValues(result).Inc()
}

// HandleEvent implements events.EventHandler by counting profile events.
func (r *Recorder) HandleEvent(_ context.Context, event *events.ProfileEvent) error {
	source := event.Source
	if source == "" {
		source = "api"
	}
	r.profileEvents.WithLabelValues(string(event.Type), source).Inc()
	return nil
}

// InstrumentHandler wraps next with HTTP metrics collection. Requests are
// labelled with the chi route pattern so path parameters do not explode
// label cardinality.
func (r *Recorder) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Path == "/metrics" {
			next.ServeHTTP(w, req)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		r.httpInFlight.Inc()
		defer r.httpInFlight.Dec()

		next.ServeHTTP(rec, req)

		route := routePattern(req)
		method := strings.ToUpper(req.Method)

		r.httpRequests.WithLabelValues(method, route, strconv.Itoa(rec.status)).Inc()
		r.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.ResponseWriter.Write(b)
}

func routePattern(req *http.Request) string {
	if rctx := chi.RouteContext(req.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
