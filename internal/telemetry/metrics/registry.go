// Package metrics records client side metrics in a prometheus registry.
package metrics

import (
	"runtime"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pomerium/storefront/internal/version"
)

const namespace = "storefront"

var registry = newMetricRegistry()

// metricRegistry holds the collectors and handles safe initialization.
// Behavior without using newMetricRegistry() is undefined.
type metricRegistry struct {
	registry *prometheus.Registry

	buildInfo            *prometheus.GaugeVec
	httpClientRequests   *prometheus.CounterVec
	httpClientDuration   *prometheus.HistogramVec
	sessionRefreshTotal  *prometheus.CounterVec
	sessionLogoutTotal   *prometheus.CounterVec
	catalogCacheRequests *prometheus.CounterVec

	sync.Once
}

func newMetricRegistry() *metricRegistry {
	r := new(metricRegistry)
	r.init()
	return r
}

func (r *metricRegistry) init() {
	r.Do(func() {
		r.registry = prometheus.NewRegistry()
		r.buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build Metadata",
		}, []string{"version", "revision", "goversion"})
		r.httpClientRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_client_requests_total",
			Help:      "Total HTTP requests sent to the storefront API",
		}, []string{"method", "code"})
		r.httpClientDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_client_request_duration_seconds",
			Help:      "HTTP request latency to the storefront API",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"})
		r.sessionRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_refresh_total",
			Help:      "Token refresh attempts by result",
		}, []string{"result"})
		r.sessionLogoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_logout_total",
			Help:      "Session terminations by reason",
		}, []string{"reason"})
		r.catalogCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_cache_requests_total",
			Help:      "Catalog cache lookups by result",
		}, []string{"result"})

		r.registry.MustRegister(
			collectors.NewGoCollector(),
			r.buildInfo,
			r.httpClientRequests,
			r.httpClientDuration,
			r.sessionRefreshTotal,
			r.sessionLogoutTotal,
			r.catalogCacheRequests,
		)
		r.buildInfo.WithLabelValues(version.FullVersion(), version.GitCommit, runtime.Version()).Set(1)
	})
}

// Gatherer returns the registry holding all storefront metrics.
func Gatherer() prometheus.Gatherer {
	return registry.registry
}

// WriteTextfile writes the current metrics in the text exposition format to
// filename, for pickup by a node exporter textfile collector.
func WriteTextfile(filename string) error {
	return prometheus.WriteToTextfile(filename, registry.registry)
}
