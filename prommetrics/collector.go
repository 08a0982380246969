// Package prommetrics exports astrocache metrics to Prometheus.
//
// Labels stay low-cardinality: cache entry names and governed keys are not
// used as label values.
//
//	reg := prometheus.NewRegistry()
//	c, err := prommetrics.New(reg)
//	tk, err := astrocache.Open(cfg, astrocache.WithMetricsCollector(c))
package prommetrics

import (
	"time"

	"github.com/hupe1980/astrocache"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultHit     = "hit"
	resultMiss    = "miss"
	resultCorrupt = "corrupt"
)

var _ astrocache.MetricsCollector = (*Collector)(nil)

// Option configures a Collector.
type Option func(*options)

type options struct {
	namespace string
	buckets   []float64
}

// WithNamespace sets the metric namespace. Default is "astrocache".
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithComputeBuckets overrides the histogram buckets of the compute latency.
func WithComputeBuckets(b []float64) Option {
	return func(o *options) { o.buckets = b }
}

// Collector implements astrocache.MetricsCollector on Prometheus metrics.
type Collector struct {
	lookups   *prometheus.CounterVec
	compute   *prometheus.HistogramVec
	evictions prometheus.Counter
	idle      prometheus.Histogram
}

// New creates a Collector and registers its metrics with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, opts ...Option) (*Collector, error) {
	o := options{
		namespace: "astrocache",
		buckets:   prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "cache_lookups_total",
			Help:      "Persistent cache lookups by result",
		}, []string{"result"}),
		compute: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "cache_compute_seconds",
			Help:      "Latency of recomputing missed cache entries",
			Buckets:   o.buckets,
		}, []string{"status"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: o.namespace,
			Name:      "memory_evictions_total",
			Help:      "Entries evicted by the memory governor",
		}),
		idle: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: o.namespace,
			Name:      "memory_eviction_idle_seconds",
			Help:      "Time since last access of evicted entries",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}

	for _, m := range []prometheus.Collector{c.lookups, c.compute, c.evictions, c.idle} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	// Pre-create label values so the series exist before the first lookup.
	for _, r := range []string{resultHit, resultMiss, resultCorrupt} {
		c.lookups.WithLabelValues(r)
	}
	return c, nil
}

// RecordCacheHit implements astrocache.MetricsCollector.
func (c *Collector) RecordCacheHit(string) {
	c.lookups.WithLabelValues(resultHit).Inc()
}

// RecordCacheMiss implements astrocache.MetricsCollector.
func (c *Collector) RecordCacheMiss(string) {
	c.lookups.WithLabelValues(resultMiss).Inc()
}

// RecordCacheCorrupt implements astrocache.MetricsCollector.
func (c *Collector) RecordCacheCorrupt(string) {
	c.lookups.WithLabelValues(resultCorrupt).Inc()
}

// RecordCompute implements astrocache.MetricsCollector.
func (c *Collector) RecordCompute(_ string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.compute.WithLabelValues(status).Observe(d.Seconds())
}

// RecordEviction implements astrocache.MetricsCollector.
func (c *Collector) RecordEviction(_ string, idle time.Duration) {
	c.evictions.Inc()
	if idle > 0 {
		c.idle.Observe(idle.Seconds())
	}
}
