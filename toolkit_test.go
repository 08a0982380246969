package astrocache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/astrocache/codec"
	"github.com/hupe1980/astrocache/memory"
	"github.com/hupe1980/astrocache/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalog struct {
	Name string
	RA   []float64
	Dec  []float64
}

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.CacheDir = t.TempDir()
	return cfg
}

func TestOpen_InvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.WarningFraction = 2

	_, err := Open(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestToolkit_CacheRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	metrics := &BasicMetricsCollector{}
	var logs bytes.Buffer

	tk, err := Open(cfg,
		WithMetricsCollector(metrics),
		WithLogger(NewLogger(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)
	require.NoError(t, err)
	assert.Equal(t, cfg.CacheDir, tk.Store().Dir())
	assert.Equal(t, cfg, tk.Config())

	src := filepath.Join(t.TempDir(), "tile.fits")
	require.NoError(t, os.WriteFile(src, []byte("SIMPLE  =  T"), 0o600))

	catalogs := NewCache[catalog](tk, nil)
	calls := 0
	compute := func(context.Context) (catalog, error) {
		calls++
		return catalog{Name: "tile-7", RA: []float64{1, 2}, Dec: []float64{-1, -2}}, nil
	}

	ctx := context.Background()
	first, err := catalogs.GetOrCompute(ctx, "tile-7", []string{src}, compute)
	require.NoError(t, err)
	second, err := catalogs.GetOrCompute(ctx, "tile-7", []string{src}, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)

	st := metrics.GetStats()
	assert.Equal(t, int64(1), st.HitCount)
	assert.Equal(t, int64(1), st.ComputeCount)
	assert.Equal(t, 0.5, st.HitRatio())

	assert.Contains(t, logs.String(), `"msg":"computed cache entry"`)
	assert.Contains(t, logs.String(), `"msg":"cache hit"`)
	assert.Contains(t, logs.String(), `"component":"cache"`)
}

func TestToolkit_CachesMissingMagnitudes(t *testing.T) {
	tk, err := Open(testConfig(t), WithLogger(NoopLogger()))
	require.NoError(t, err)

	mags := NewCache[catalog](tk, nil)
	calls := 0
	compute := func(context.Context) (catalog, error) {
		calls++
		return catalog{Name: "gaia", RA: []float64{10, math.NaN()}, Dec: []float64{math.Inf(1), -5}}, nil
	}

	for range 2 {
		got, err := mags.GetOrCompute(context.Background(), "gaia", nil, compute)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got.RA[1]))
		assert.True(t, math.IsInf(got.Dec[0], 1))
	}
	assert.Equal(t, 1, calls)
}

func TestToolkit_ComputeErrorIsLogged(t *testing.T) {
	var logs bytes.Buffer
	tk, err := Open(testConfig(t), WithLogger(NewLogger(slog.NewJSONHandler(&logs, nil))))
	require.NoError(t, err)

	boom := errors.New("bad FITS header")
	_, err = NewCache[int](tk, codec.Gob{}).GetOrCompute(context.Background(), "x", nil,
		func(context.Context) (int, error) { return 0, boom })

	assert.ErrorIs(t, err, boom)
	assert.Contains(t, logs.String(), `"msg":"cache compute failed"`)
}

func TestToolkit_GovernedMap(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxMemory = 1000
	metrics := &BasicMetricsCollector{}

	// RSS grows 100 bytes per live entry.
	stored := int64(0)
	sampler := memory.SamplerFunc(func() (uint64, error) {
		return uint64(500 + 100*(stored-metrics.EvictionCount.Load())), nil
	})

	tk, err := Open(cfg, WithMetricsCollector(metrics), WithMemorySampler(sampler), WithLogger(NoopLogger()))
	require.NoError(t, err)
	m := NewMap[[]float64](tk, 0)

	for _, k := range []string{"a", "b", "c"} {
		stored++
		m.Store(k, nil)
	}
	assert.Equal(t, 3, m.Len())
	assert.False(t, tk.Governor().HasRoom(), "at the warning threshold")

	stored++
	m.Store("d", nil)
	assert.Equal(t, []string{"d"}, m.Keys())
	assert.Equal(t, int64(3), metrics.GetStats().EvictionCount)

	st := tk.ReportMemory(context.Background())
	assert.Equal(t, uint64(600), st.RSS)
	assert.False(t, st.AboveWarning)
}

func TestToolkit_ProximityIndex(t *testing.T) {
	cfg := testConfig(t)
	cfg.SubsampleThreshold = 100

	tk, err := Open(cfg, WithLogger(NoopLogger()))
	require.NoError(t, err)

	lons, lats := testutil.NewRNG(3).SkyPoints(350)
	p, err := tk.NewProximityIndex(lons, lats)
	require.NoError(t, err)
	assert.True(t, p.Subsampled())
	assert.LessOrEqual(t, p.Len(), 100)

	idx, err := tk.NewIndex(lons, lats)
	require.NoError(t, err)
	assert.Equal(t, 350, idx.Len())

	_, err = tk.NewIndex(lons, lats[:1])
	var lm *LengthMismatchError
	assert.ErrorAs(t, err, &lm)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestToolkit_CleanupOldEntries(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxAge = Age(time.Hour)

	tk, err := Open(cfg, WithLogger(NoopLogger()))
	require.NoError(t, err)

	c := NewCache[string](tk, codec.JSON{})
	c.Set(context.Background(), "old", "v", nil)
	c.Set(context.Background(), "new", "v", nil)

	old := tk.Store().Path(tk.Store().Key("old", nil))
	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(old, past, past))

	n, err := tk.CleanupOldEntries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, ok := c.Get(context.Background(), "new", nil)
	assert.True(t, ok)
}
