// Package metrics exposes the Prometheus collectors of the app.
//
// All recording methods accept a nil *Metrics, so components can be built
// without instrumentation in tests.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agora"

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics holds every collector, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	favoriteToggles *prometheus.CounterVec
	favoriteResets  prometheus.Counter
	sessionsActive  prometheus.Gauge
	cacheRequests   *prometheus.CounterVec
	boardReloads    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		favoriteToggles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_toggles_total",
			Help:      "Favorite toggles by resulting action",
		}, []string{"action"}),

		favoriteResets: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_resets_total",
			Help:      "Favorite set resets",
		}),

		sessionsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Signed-in sessions held in memory",
		}),

		cacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_cache_requests_total",
			Help:      "Query cache lookups by result",
		}, []string{"result"}),

		boardReloads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "board_reloads_total",
			Help:      "Board reloads by result",
		}, []string{"result"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// FavoriteToggled records a toggle; added reports the resulting membership.
func (m *Metrics) FavoriteToggled(added bool) {
	if m == nil {
		return
	}
	action := "remove"
	if added {
		action = "add"
	}
	m.favoriteToggles.WithLabelValues(action).Inc()
}

// FavoritesReset records a reset.
func (m *Metrics) FavoritesReset() {
	if m == nil {
		return
	}
	m.favoriteResets.Inc()
}

// SetSessions publishes the number of live sessions.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.sessionsActive.Set(float64(n))
}

// CacheLookup records a query cache lookup result.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheRequests.WithLabelValues(result).Inc()
}

// BoardReloaded records a reload attempt.
func (m *Metrics) BoardReloaded(err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.boardReloads.WithLabelValues(result).Inc()
}

// ObserveRequest records the latency of a served request.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
