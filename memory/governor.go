package memory

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Evictable is a caller-owned cache the governor may shrink.
// Implementations must not be mutated concurrently with CleanupIfNeeded.
type Evictable interface {
	Keys() []string
	Delete(key string)
}

// Governor watches process RSS and evicts least-recently-used entries from
// caller-owned caches when the budget is under pressure.
//
// Measurement is whole-process RSS, never a walk of the cached values: a
// check costs the same for a 10 MB cache as for a 10 GB one. The access
// record is internally synchronized; the Evictable passed to CleanupIfNeeded
// is not, so callers either own it on a single goroutine or use Map.
type Governor struct {
	maxBytes        uint64
	warningFraction float64
	budget          Budget

	sampler  Sampler
	fallback Sampler
	logger   *slog.Logger
	rec      Recorder
	release  func()
	now      func() time.Time

	mu     sync.Mutex
	access map[string]time.Time

	fallbackOnce sync.Once
}

// New creates a Governor. Without options it enforces an 8 GiB budget with a
// warning threshold at 80%.
func New(opts ...Option) *Governor {
	g := &Governor{
		maxBytes:        DefaultMaxBytes,
		warningFraction: DefaultWarningFraction,
		sampler:         DefaultSampler(),
		fallback:        RuntimeSampler{},
		logger:          slog.New(slog.DiscardHandler),
		rec:             noopRecorder{},
		release:         defaultReleaser,
		now:             time.Now,
		access:          make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.budget = NewBudget(g.maxBytes, g.warningFraction)
	return g
}

// Budget returns the immutable memory budget.
func (g *Governor) Budget() Budget { return g.budget }

// CheckMemory returns the current process RSS in bytes.
// If the platform sampler fails, the Go runtime's own accounting is used.
func (g *Governor) CheckMemory() uint64 {
	rss, err := g.sampler.RSS()
	if err == nil {
		return rss
	}

	g.fallbackOnce.Do(func() {
		g.logger.Warn("memory sampler failed, falling back to Go runtime accounting", "error", err)
	})
	rss, err = g.fallback.RSS()
	if err != nil {
		return 0
	}
	return rss
}

// HasRoom reports whether RSS is below the warning threshold.
func (g *Governor) HasRoom() bool {
	return g.CheckMemory() < g.budget.WarningBytes
}

// MarkAccessed records now as the last access of key.
// Call it on every read of an entry that should be protected from eviction.
func (g *Governor) MarkAccessed(key string) {
	now := g.now()
	g.mu.Lock()
	g.access[key] = now
	g.mu.Unlock()
}

// LastAccess returns the recorded access time of key.
func (g *Governor) LastAccess(key string) (time.Time, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t, ok := g.access[key]
	return t, ok
}

// Forget drops the access record of key.
func (g *Governor) Forget(key string) {
	g.mu.Lock()
	delete(g.access, key)
	g.mu.Unlock()
}

// Tracked returns the number of keys with an access record.
func (g *Governor) Tracked() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.access)
}

// CleanupIfNeeded evicts entries from c when RSS exceeds the warning
// threshold. Entries go oldest access first (never-accessed keys before all
// others) until RSS drops below the target or c is empty. Memory is released
// back to the OS after every eviction so the next measurement reflects it.
//
// It reports whether anything was evicted. Below the threshold c is not touched.
func (g *Governor) CleanupIfNeeded(c Evictable) bool {
	return g.cleanup(context.Background(), c)
}

func (g *Governor) cleanup(ctx context.Context, c Evictable) bool {
	before := g.CheckMemory()
	if before <= g.budget.WarningBytes {
		return false
	}

	rss := before
	now := g.now()
	evicted := 0
	for _, cand := range g.evictionOrder(c.Keys()) {
		if rss < g.budget.TargetBytes {
			break
		}

		c.Delete(cand.key)
		g.Forget(cand.key)
		evicted++

		var idle time.Duration
		if !cand.at.IsZero() {
			idle = now.Sub(cand.at)
		}
		g.rec.RecordEviction(cand.key, idle)
		g.logger.DebugContext(ctx, "evicted cache entry", "key", cand.key, "idle", idle)

		g.release()
		rss = g.CheckMemory()
	}

	if evicted == 0 {
		g.release()
		g.logger.WarnContext(ctx, "memory above warning threshold with nothing to evict",
			"rss", before, "warning", g.budget.WarningBytes)
		return false
	}

	g.logger.InfoContext(ctx, "memory cleanup",
		"evicted", evicted, "rss_before", before, "rss", rss, "target", g.budget.TargetBytes)
	return true
}

type candidate struct {
	key string
	at  time.Time
}

// evictionOrder sorts keys oldest access first; keys without a record have a
// zero time and therefore go first. Ties break by key.
func (g *Governor) evictionOrder(keys []string) []candidate {
	out := make([]candidate, len(keys))
	g.mu.Lock()
	for i, k := range keys {
		out[i] = candidate{key: k, at: g.access[k]}
	}
	g.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].at.Equal(out[j].at) {
			return out[i].at.Before(out[j].at)
		}
		return out[i].key < out[j].key
	})
	return out
}

// RecommendCacheSize suggests a budget: half of system memory, capped at
// 16 GiB. It falls back to the 8 GiB default if the machine size is unknown.
// The suggestion is never applied automatically.
func (g *Governor) RecommendCacheSize() uint64 {
	total, err := g.sampler.SystemTotal()
	if err != nil {
		return DefaultMaxBytes
	}
	return recommend(total)
}

// RecommendCacheSize is Governor.RecommendCacheSize with the platform sampler.
func RecommendCacheSize() uint64 {
	total, err := DefaultSampler().SystemTotal()
	if err != nil {
		return DefaultMaxBytes
	}
	return recommend(total)
}

// CleanupMap runs CleanupIfNeeded over a plain map.
// The caller must hold whatever lock guards m.
func CleanupMap[V any](g *Governor, m map[string]V) bool {
	return g.CleanupIfNeeded(plainMap[V](m))
}

type plainMap[V any] map[string]V

func (m plainMap[V]) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func (m plainMap[V]) Delete(key string) { delete(m, key) }
