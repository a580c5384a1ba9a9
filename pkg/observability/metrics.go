package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for one service process. Every
// method is safe to call on a nil *Collector.
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Token metrics
	TokensIssued   *prometheus.CounterVec
	TokensRejected *prometheus.CounterVec

	// Table cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
	CacheOpens  prometheus.Counter

	// Fan-out metrics
	PushDeliveries *prometheus.CounterVec

	// Peer metrics
	PeerRequests *prometheus.CounterVec
}

// NewCollector creates a new metrics collector with the given namespace
// backed by a private registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		TokensIssued: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_issued_total",
				Help:      "Capability tokens issued, by permission set",
			},
			[]string{"permissions"},
		),
		TokensRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_rejected_total",
				Help:      "Capability tokens rejected, by reason",
			},
			[]string{"reason"},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "table_cache_hits_total",
				Help:      "Table handle lookups served from the cache",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "table_cache_misses_total",
				Help:      "Table handle lookups not found in the cache",
			},
		),
		CacheOpens: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "table_cache_opens_total",
				Help:      "Table handles opened against the backing store",
			},
		),
		PushDeliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "push_deliveries_total",
				Help:      "Status fan-out deliveries, by outcome",
			},
			[]string{"outcome"},
		),
		PeerRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "peer_requests_total",
				Help:      "Requests to peer services, by peer and status",
			},
			[]string{"peer", "status"},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.TokensIssued,
		c.TokensRejected,
		c.CacheHits,
		c.CacheMisses,
		c.CacheOpens,
		c.PushDeliveries,
		c.PeerRequests,
	)

	return c
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// TokenIssued counts a minted token
func (c *Collector) TokenIssued(permissions string) {
	if c == nil {
		return
	}
	c.TokensIssued.WithLabelValues(permissions).Inc()
}

// TokenRejected counts a token refused by the resource service
func (c *Collector) TokenRejected(reason string) {
	if c == nil {
		return
	}
	c.TokensRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) CacheHit() {
	if c != nil {
		c.CacheHits.Inc()
	}
}

func (c *Collector) CacheMiss() {
	if c != nil {
		c.CacheMisses.Inc()
	}
}

func (c *Collector) CacheOpen() {
	if c != nil {
		c.CacheOpens.Inc()
	}
}

// PushDelivery counts one fan-out recipient by outcome
// ("delivered", "skipped", "failed").
func (c *Collector) PushDelivery(outcome string) {
	if c == nil {
		return
	}
	c.PushDeliveries.WithLabelValues(outcome).Inc()
}

// PeerRequest counts one call to a peer service
func (c *Collector) PeerRequest(peer string, status int) {
	if c == nil {
		return
	}
	c.PeerRequests.WithLabelValues(peer, strconv.Itoa(status)).Inc()
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
