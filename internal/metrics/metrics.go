// Package metrics exposes Prometheus counters for rename tasks.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "clipnamer"

// Metrics holds the collectors for one process. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	events    *prometheus.CounterVec
	started   *prometheus.CounterVec
	finished  *prometheus.CounterVec
	remuxWait prometheus.Histogram
	inFlight  prometheus.Gauge
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		events: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "host_events_total",
			Help:      "Recording-host events received, by event type.",
		}, []string{"type"}),
		started: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_started_total",
			Help:      "Rename tasks started, by trigger.",
		}, []string{"kind"}),
		finished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_finished_total",
			Help:      "Rename tasks finished, by trigger and outcome.",
		}, []string{"kind", "outcome"}),
		remuxWait: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remux_wait_seconds",
			Help:      "Time spent waiting for the remux and releasing the intermediate file.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_in_flight",
			Help:      "Rename tasks currently running.",
		}),
	}
}

// Event counts one host event.
func (m *Metrics) Event(eventType string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(eventType).Inc()
}

// TaskStarted counts a new task.
func (m *Metrics) TaskStarted(kind string) {
	if m == nil {
		return
	}
	m.started.WithLabelValues(kind).Inc()
	m.inFlight.Inc()
}

// TaskFinished records the outcome of a task and how long it waited on the
// remux.
func (m *Metrics) TaskFinished(kind, outcome string, waited time.Duration) {
	if m == nil {
		return
	}
	m.finished.WithLabelValues(kind, outcome).Inc()
	m.remuxWait.Observe(waited.Seconds())
	m.inFlight.Dec()
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// Router serves /metrics and a /healthz liveness probe.
func (m *Metrics) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

// Serve exposes [Metrics.Router] on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
