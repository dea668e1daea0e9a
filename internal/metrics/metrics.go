// Package metrics holds the Prometheus counters the storefront exports.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Metrics satisfies cart.Recorder and catalog.ErrorRecorder. Each instance
// owns its registry so tests can build as many as they like.
type Metrics struct {
	registry        *prometheus.Registry
	cartActions     *prometheus.CounterVec
	storageFailures *prometheus.CounterVec
	catalogErrors   *prometheus.CounterVec
	filterCommits   *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cartActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_actions_total",
			Help:      "Cart transitions applied, by action.",
		}, []string{"action"}),
		storageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_failures_total",
			Help:      "Cart storage reads or writes that failed.",
		}, []string{"op"}),
		catalogErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_fetch_errors_total",
			Help:      "Failed requests to the product catalog API, by operation.",
		}, []string{"op"}),
		filterCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_commits_total",
			Help:      "Filter changes committed to the URL, by query key.",
		}, []string{"key"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cartActions,
		m.storageFailures,
		m.catalogErrors,
		m.filterCommits,
	)
	return m
}

func (m *Metrics) CartAction(action string) { m.cartActions.WithLabelValues(action).Inc() }
func (m *Metrics) StorageFailure(op string) { m.storageFailures.WithLabelValues(op).Inc() }
func (m *Metrics) CatalogFetchError(op string) { m.catalogErrors.WithLabelValues(op).Inc() }
func (m *Metrics) FilterCommit(key string) { m.filterCommits.WithLabelValues(key).Inc() }
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
