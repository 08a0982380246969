package astrocache

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    hits    prometheus.Counter
//	    compute prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordCacheHit(name string) {
//	    p.hits.Inc()
//	}
//
// Every MetricsCollector satisfies cache.Recorder and memory.Recorder.
type MetricsCollector interface {
	// RecordCacheHit is called when a persistent entry is served.
	RecordCacheHit(name string)

	// RecordCacheMiss is called when no entry exists or it has expired.
	RecordCacheMiss(name string)

	// RecordCacheCorrupt is called instead of RecordCacheMiss when an
	// unreadable entry is discarded.
	RecordCacheCorrupt(name string)

	// RecordCompute is called after a miss was recomputed.
	// err is nil if the computation succeeded.
	RecordCompute(name string, duration time.Duration, err error)

	// RecordEviction is called for each entry the memory governor evicts.
	// idle is zero for entries that were never accessed.
	RecordEviction(key string, idle time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCacheHit(string)                      {}
func (NoopMetricsCollector) RecordCacheMiss(string)                     {}
func (NoopMetricsCollector) RecordCacheCorrupt(string)                  {}
func (NoopMetricsCollector) RecordCompute(string, time.Duration, error) {}
func (NoopMetricsCollector) RecordEviction(string, time.Duration)       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	HitCount          atomic.Int64
	MissCount         atomic.Int64
	CorruptCount      atomic.Int64
	ComputeCount      atomic.Int64
	ComputeErrors     atomic.Int64
	ComputeTotalNanos atomic.Int64
	EvictionCount     atomic.Int64
}

// RecordCacheHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheHit(string) {
	b.HitCount.Add(1)
}

// RecordCacheMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheMiss(string) {
	b.MissCount.Add(1)
}

// RecordCacheCorrupt implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheCorrupt(string) {
	b.CorruptCount.Add(1)
}

// RecordCompute implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompute(_ string, duration time.Duration, err error) {
	b.ComputeCount.Add(1)
	b.ComputeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ComputeErrors.Add(1)
	}
}

// RecordEviction implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEviction(string, time.Duration) {
	b.EvictionCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		HitCount:        b.HitCount.Load(),
		MissCount:       b.MissCount.Load(),
		CorruptCount:    b.CorruptCount.Load(),
		ComputeCount:    b.ComputeCount.Load(),
		ComputeErrors:   b.ComputeErrors.Load(),
		ComputeAvgNanos: b.getAvgComputeNanos(),
		EvictionCount:   b.EvictionCount.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgComputeNanos() int64 {
	count := b.ComputeCount.Load()
	if count == 0 {
		return 0
	}
	return b.ComputeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	HitCount        int64
	MissCount       int64
	CorruptCount    int64
	ComputeCount    int64
	ComputeErrors   int64
	ComputeAvgNanos int64
	EvictionCount   int64
}

// HitRatio returns the share of lookups served from disk, or 0 before any
// lookup. Each lookup is exactly one of hit, miss or corrupt.
func (s BasicMetricsStats) HitRatio() float64 {
	total := s.HitCount + s.MissCount + s.CorruptCount
	if total == 0 {
		return 0
	}
	return float64(s.HitCount) / float64(total)
}
