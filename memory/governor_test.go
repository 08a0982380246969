package memory

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// simulated models RSS as a base plus a fixed size per live cache entry.
type simulated struct {
	base     uint64
	perEntry uint64
	live     func() int
	total    uint64
}

func (s *simulated) RSS() (uint64, error) {
	return s.base + s.perEntry*uint64(s.live()), nil
}

func (s *simulated) SystemTotal() (uint64, error) {
	if s.total == 0 {
		return 0, ErrSamplerUnavailable
	}
	return s.total, nil
}

type evictionLog struct {
	mu   sync.Mutex
	keys []string
}

func (l *evictionLog) RecordEviction(key string, _ time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
}

// fakeClock advances one minute per call.
func fakeClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newTestGovernor(t *testing.T, cache map[string][]float64, base uint64, opts ...Option) (*Governor, *evictionLog, *int) {
	t.Helper()
	log := &evictionLog{}
	released := 0
	sampler := &simulated{base: base, perEntry: 100, live: func() int { return len(cache) }}

	all := append([]Option{
		WithMaxBytes(1000),
		WithSampler(sampler),
		WithRecorder(log),
		WithReleaser(func() { released++ }),
		WithClock(fakeClock()),
	}, opts...)
	return New(all...), log, &released
}

func TestCleanupIfNeeded_EvictsOldestFirst(t *testing.T) {
	cache := map[string][]float64{"a": nil, "b": nil, "c": nil, "d": nil}
	g, log, released := newTestGovernor(t, cache, 500)

	// Access order: c, a, d, b  (c oldest)
	for _, k := range []string{"c", "a", "d", "b"} {
		g.MarkAccessed(k)
	}

	// 500 + 4*100 = 900 > warning 800. Evict until < target 700.
	require.Equal(t, uint64(900), g.CheckMemory())
	assert.True(t, CleanupMap(g, cache))

	assert.Equal(t, []string{"c", "a", "d"}, log.keys)
	assert.Equal(t, map[string][]float64{"b": nil}, cache)
	assert.Equal(t, 3, *released)

	_, ok := g.LastAccess("c")
	assert.False(t, ok, "evicted keys lose their access record")
	_, ok = g.LastAccess("b")
	assert.True(t, ok)
}

func TestCleanupIfNeeded_BelowThresholdNoMutation(t *testing.T) {
	cache := map[string][]float64{"a": nil, "b": nil, "c": nil}
	// 500 + 300 = 800, not above the 800 warning threshold.
	g, log, released := newTestGovernor(t, cache, 500)
	for k := range cache {
		g.MarkAccessed(k)
	}

	assert.False(t, CleanupMap(g, cache))
	assert.Len(t, cache, 3)
	assert.Empty(t, log.keys)
	assert.Zero(t, *released)
}

func TestCleanupIfNeeded_EmptiesMapIfNeeded(t *testing.T) {
	cache := map[string][]float64{"a": nil, "b": nil, "c": nil}
	// Base alone is above the target, so everything goes.
	g, log, _ := newTestGovernor(t, cache, 750)
	g.MarkAccessed("b")
	g.MarkAccessed("a")
	g.MarkAccessed("c")

	assert.True(t, CleanupMap(g, cache))
	assert.Empty(t, cache)
	assert.Equal(t, []string{"b", "a", "c"}, log.keys)
}

func TestCleanupIfNeeded_UntrackedKeysGoFirst(t *testing.T) {
	cache := map[string][]float64{"tracked": nil, "untracked-b": nil, "untracked-a": nil}
	g, log, _ := newTestGovernor(t, cache, 590)
	g.MarkAccessed("tracked")

	// 590 + 300 = 890 → evict until < 700: two evictions.
	assert.True(t, CleanupMap(g, cache))
	assert.Equal(t, []string{"untracked-a", "untracked-b"}, log.keys)
	assert.Contains(t, cache, "tracked")
}

func TestCleanupIfNeeded_NothingToEvict(t *testing.T) {
	cache := map[string][]float64{}
	g, _, released := newTestGovernor(t, cache, 950)

	assert.False(t, CleanupMap(g, cache))
	assert.Equal(t, 1, *released, "a collection is still requested under pressure")
}

func TestHasRoom(t *testing.T) {
	cache := map[string][]float64{}
	g, _, _ := newTestGovernor(t, cache, 799)
	assert.True(t, g.HasRoom())

	cache["x"] = nil
	assert.False(t, g.HasRoom())
}

func TestAccessRecord(t *testing.T) {
	g := New(WithClock(fakeClock()))

	g.MarkAccessed("a")
	first, ok := g.LastAccess("a")
	require.True(t, ok)

	g.MarkAccessed("a")
	second, _ := g.LastAccess("a")
	assert.True(t, second.After(first))
	assert.Equal(t, 1, g.Tracked())

	g.Forget("a")
	assert.Zero(t, g.Tracked())
}

func TestBudget(t *testing.T) {
	b := NewBudget(1000, 0.8)
	assert.Equal(t, Budget{MaxBytes: 1000, WarningBytes: 800, TargetBytes: 700}, b)

	d := NewBudget(0, 0)
	assert.Equal(t, DefaultMaxBytes, d.MaxBytes)
	defaultMax := float64(DefaultMaxBytes)
	assert.Equal(t, uint64(defaultMax*0.8), d.WarningBytes)

	low := NewBudget(1000, 0.5)
	assert.Equal(t, uint64(500), low.TargetBytes, "target never exceeds the warning threshold")

	assert.Equal(t, DefaultWarningFraction*1000, float64(NewBudget(1000, 1.5).WarningBytes))
}

func TestRecommend(t *testing.T) {
	assert.Equal(t, 16*GiB, recommend(64*GiB))
	assert.Equal(t, 4*GiB, recommend(8*GiB))
	assert.Equal(t, DefaultMaxBytes, recommend(0))

	g := New(WithSampler(&simulated{live: func() int { return 0 }, total: 12 * GiB}))
	assert.Equal(t, 6*GiB, g.RecommendCacheSize())

	g = New(WithSampler(SamplerFunc(func() (uint64, error) { return 1, nil })))
	assert.Equal(t, DefaultMaxBytes, g.RecommendCacheSize())

	assert.LessOrEqual(t, RecommendCacheSize(), RecommendCeiling)
}

func TestCheckMemory_FallsBackToRuntime(t *testing.T) {
	var buf bytes.Buffer
	broken := SamplerFunc(func() (uint64, error) { return 0, errors.New("no /proc") })
	g := New(WithSampler(broken), WithLogger(slog.New(slog.NewJSONHandler(&buf, nil))))

	assert.Positive(t, g.CheckMemory())
	assert.Positive(t, g.CheckMemory())
	assert.Equal(t, 1, strings.Count(buf.String(), "falling back to Go runtime accounting"))
}

func TestRuntimeSampler(t *testing.T) {
	rss, err := RuntimeSampler{}.RSS()
	require.NoError(t, err)
	assert.Positive(t, rss)

	_, err = RuntimeSampler{}.SystemTotal()
	assert.ErrorIs(t, err, ErrSamplerUnavailable)
}

func TestDefaultSampler(t *testing.T) {
	rss, err := DefaultSampler().RSS()
	require.NoError(t, err)
	assert.Positive(t, rss)
}

func TestStatsAndReport(t *testing.T) {
	cache := map[string][]float64{"recent": nil, "stale": nil, "never": nil}
	g, _, _ := newTestGovernor(t, cache, 600)
	g.sampler.(*simulated).total = 4000
	g.MarkAccessed("stale")
	g.MarkAccessed("recent")

	st := g.Stats()
	assert.Equal(t, uint64(900), st.RSS)
	assert.InDelta(t, 90.0, st.PercentOfBudget, 1e-9)
	assert.Equal(t, uint64(4000), st.SystemTotal)
	assert.InDelta(t, 22.5, st.PercentOfSystem, 1e-9)
	assert.Equal(t, 2, st.TrackedKeys)
	assert.True(t, st.AboveWarning)

	var buf bytes.Buffer
	require.NoError(t, g.WriteReport(&buf, []string{"recent", "stale", "never"}))
	out := buf.String()

	assert.Contains(t, out, "900 B")
	assert.Contains(t, out, "entries")
	assert.Contains(t, out, "never accessed")
	assert.Less(t, strings.Index(out, "never"), strings.Index(out, "stale"))
	assert.Less(t, strings.Index(out, "stale"), strings.Index(out, "recent"))
	assert.Contains(t, out, "ago")
}

func TestMap(t *testing.T) {
	sampler := &simulated{base: 450, perEntry: 100}
	g := New(WithMaxBytes(1000), WithSampler(sampler), WithReleaser(func() {}), WithClock(fakeClock()))
	m := NewMap[string](g, 0)
	// Sampled while Cleanup holds the map lock.
	sampler.live = func() int { return len(m.items) }

	for i := 0; i < 3; i++ {
		m.Store(fmt.Sprintf("tile-%d", i), "catalog")
	}
	assert.Equal(t, 3, m.Len())

	// Protect tile-0 by touching it.
	_, ok := m.Load("tile-0")
	require.True(t, ok)

	// 4th entry pushes RSS to 850: tile-1 and tile-2 are oldest.
	m.Store("tile-3", "catalog")
	assert.Equal(t, []string{"tile-0", "tile-3"}, m.Keys())

	m.Delete("tile-0")
	_, ok = m.Load("tile-0")
	assert.False(t, ok)
	_, tracked := g.LastAccess("tile-0")
	assert.False(t, tracked)
}

func TestMap_ThrottledCleanup(t *testing.T) {
	sampler := &simulated{base: 1000, perEntry: 0, live: func() int { return 0 }}
	g := New(WithMaxBytes(1000), WithSampler(sampler), WithReleaser(func() {}))
	m := NewMap[int](g, time.Hour)

	// The first Store runs a cleanup and evicts "a"; later ones inside the
	// interval do not.
	m.Store("a", 1)
	assert.Zero(t, m.Len())

	m.Store("b", 2)
	m.Store("c", 3)
	assert.Equal(t, 2, m.Len())

	assert.True(t, m.Cleanup())
	assert.Zero(t, m.Len())
}

func TestMap_ConcurrentUse(t *testing.T) {
	g := New(WithMaxBytes(1<<62), WithReleaser(func() {}))
	m := NewMap[int](g, time.Millisecond)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("k-%d-%d", w, i%10)
				m.Store(key, i)
				m.Load(key)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, 80, m.Len())
}
