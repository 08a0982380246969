package astrocache

import (
	"context"
	"time"

	"github.com/hupe1980/astrocache/cache"
	"github.com/hupe1980/astrocache/codec"
	"github.com/hupe1980/astrocache/memory"
	"github.com/hupe1980/astrocache/spatial"
)

// Option configures a Toolkit.
type Option func(*Toolkit)

// WithLogger sets the logger shared by every component.
func WithLogger(l *Logger) Option {
	return func(t *Toolkit) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithMetricsCollector sets the metrics collector shared by every component.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(t *Toolkit) {
		if m != nil {
			t.metrics = m
		}
	}
}

// WithMemorySampler overrides how the governor measures process memory.
func WithMemorySampler(s memory.Sampler) Option {
	return func(t *Toolkit) {
		t.sampler = s
	}
}

// Toolkit bundles the persistent cache, the memory governor and the spatial
// index settings of one application. Create it once with Open and pass it to
// the components that need it.
type Toolkit struct {
	cfg     Config
	logger  *Logger
	metrics MetricsCollector
	sampler memory.Sampler

	store *cache.Store
	gov   *memory.Governor
}

// Open validates cfg and builds a Toolkit. Without WithLogger it logs text
// to stderr at cfg.LogLevel.
func Open(cfg Config, opts ...Option) (*Toolkit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Toolkit{
		cfg:     cfg,
		metrics: NoopMetricsCollector{},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		level, _ := cfg.level()
		t.logger = NewTextLogger(level)
	}

	ct, _ := cache.ParseCompression(cfg.Compression)

	t.store = cache.New(cfg.CacheDir,
		cache.WithMaxAge(cfg.MaxAge.Duration()),
		cache.WithCompression(ct),
		cache.WithLogger(t.logger.WithComponent("cache").Logger),
		cache.WithRecorder(t.metrics),
	)

	gopts := []memory.Option{
		memory.WithMaxBytes(uint64(cfg.MaxMemory)),
		memory.WithWarningFraction(cfg.WarningFraction),
		memory.WithLogger(t.logger.WithComponent("memory").Logger),
		memory.WithRecorder(t.metrics),
	}
	if t.sampler != nil {
		gopts = append(gopts, memory.WithSampler(t.sampler))
	}
	t.gov = memory.New(gopts...)

	t.logger.Debug("toolkit opened",
		"dir", cfg.CacheDir,
		"max_memory", cfg.MaxMemory.String(),
		"compression", ct.String(),
	)
	return t, nil
}

// Config returns the configuration the Toolkit was opened with.
func (t *Toolkit) Config() Config { return t.cfg }

// Logger returns the shared logger.
func (t *Toolkit) Logger() *Logger { return t.logger }

// Store returns the persistent cache.
func (t *Toolkit) Store() *cache.Store { return t.store }

// Governor returns the memory governor.
func (t *Toolkit) Governor() *memory.Governor { return t.gov }

// NewIndex builds a spatial index.
func (t *Toolkit) NewIndex(lons, lats []float64) (*spatial.Index, error) {
	return spatial.NewIndex(lons, lats)
}

// NewProximityIndex builds a proximity index with the configured subsample threshold.
func (t *Toolkit) NewProximityIndex(lons, lats []float64) (*spatial.ProximityIndex, error) {
	return spatial.NewProximityIndex(lons, lats,
		spatial.WithSubsampleThreshold(t.cfg.SubsampleThreshold),
		spatial.WithLogger(t.logger.WithComponent("spatial").Logger),
	)
}

// CleanupOldEntries removes cache entries older than the configured max age.
func (t *Toolkit) CleanupOldEntries(ctx context.Context) (int, error) {
	n, err := t.store.CleanupOldEntries(0)
	t.logger.LogCleanup(ctx, t.store.Dir(), n, err)
	return n, err
}

// ReportMemory logs and returns a memory snapshot.
func (t *Toolkit) ReportMemory(ctx context.Context) memory.Stats {
	st := t.gov.Stats()
	t.logger.LogMemory(ctx, st)
	return st
}

// NewCache returns a typed view of the Toolkit's store. A nil codec selects
// codec.Default.
func NewCache[T any](t *Toolkit, c codec.Codec) *cache.Cache[T] {
	if c == nil {
		c = codec.Default
	}
	return cache.NewTyped[T](t.store, c)
}

// NewMap returns an in-memory map governed by the Toolkit's governor.
func NewMap[V any](t *Toolkit, interval time.Duration) *memory.Map[V] {
	return memory.NewMap[V](t.gov, interval)
}
