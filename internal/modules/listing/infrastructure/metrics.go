package infrastructure

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookshelfWs/internal/modules/listing/application/port"
)

// Metrics records list-screen activity on its own Prometheus registry.
type Metrics struct {
	registry  *prometheus.Registry
	fetches   *prometheus.CounterVec
	mutations *prometheus.CounterVec
	uploads   *prometheus.CounterVec
	sessions  prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookshelf",
			Name:      "screen_fetches_total",
			Help:      "Collection fetches by screen and outcome.",
		}, []string{"screen", "outcome"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookshelf",
			Name:      "screen_mutations_total",
			Help:      "Deletes and updates by screen, action and outcome.",
		}, []string{"screen", "action", "outcome"}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bookshelf",
			Name:      "media_uploads_total",
			Help:      "Cover uploads by outcome.",
		}, []string{"outcome"}),
		sessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "bookshelf",
			Name:      "open_sessions",
			Help:      "Sessions currently held in memory.",
		}),
	}
	m.registry.MustRegister(
		m.fetches,
		m.mutations,
		m.uploads,
		m.sessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObserveFetch(screen, outcome string) {
	m.fetches.WithLabelValues(screen, outcome).Inc()
}

func (m *Metrics) ObserveMutation(screen, action, outcome string) {
	m.mutations.WithLabelValues(screen, action, outcome).Inc()
}

func (m *Metrics) ObserveUpload(outcome string) {
	m.uploads.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetOpenSessions(n int) {
	m.sessions.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

var _ port.Metrics = (*Metrics)(nil)
