package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hupe1980/astrocache/cache"
	"github.com/hupe1980/astrocache/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, dir string, names ...string) *cache.Store {
	t.Helper()
	store := cache.New(dir)
	c := cache.NewTyped[string](store, codec.JSON{})
	for _, n := range names {
		c.Set(context.Background(), n, "payload-"+n, nil)
	}
	return store
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestInfo(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	seed(t, a, "tile-1", "tile-2")
	seed(t, b, "crossmatch")
	t.Setenv("ASTROCACHE_DIR", a)

	code, out, _ := runCLI(t, "info", "-dir", a, "-dir", b)
	require.Equal(t, 0, code)

	assert.Contains(t, out, "2 entries")
	assert.Contains(t, out, "1 entries")
	assert.Contains(t, out, "tile-1")
	assert.Contains(t, out, "crossmatch")
	assert.Contains(t, out, "json/lz4")
	assert.Less(t, strings.Index(out, a), strings.Index(out, b), "reports keep argument order")
}

func TestCleanup(t *testing.T) {
	dir := t.TempDir()
	store := seed(t, dir, "old", "fresh")
	t.Setenv("ASTROCACHE_DIR", dir)

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(store.Path(store.Key("old", nil)), past, past))

	code, out, _ := runCLI(t, "cleanup", "-max-age", "24h")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "removed 1 entries")

	infos, err := store.Info()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "fresh", infos[0].Name)
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	store := seed(t, dir, "a", "b", "c")
	t.Setenv("ASTROCACHE_DIR", dir)

	code, out, _ := runCLI(t, "clear", "-name", "a")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "removed 1 entries")

	code, out, _ = runCLI(t, "clear", "-all")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "removed 2 entries")

	infos, err := store.Info()
	require.NoError(t, err)
	assert.Empty(t, infos)

	code, _, errOut := runCLI(t, "clear")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "exactly one of -name or -all")
}

func TestMaintenanceLeavesMissingDirAlone(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "never-created")
	t.Setenv("ASTROCACHE_DIR", dir)

	for _, args := range [][]string{
		{"info"},
		{"info", "-dir", dir},
		{"cleanup", "-max-age", "1h"},
		{"clear", "-name", "tile-1"},
		{"clear", "-all"},
	} {
		code, _, errOut := runCLI(t, args...)
		assert.Equal(t, 0, code, "%v: %s", args, errOut)
		assert.NoDirExists(t, dir, "%v created the cache directory", args)
	}

	_, out, _ := runCLI(t, "info")
	assert.Contains(t, out, "0 entries")
}

func TestMemAndRecommend(t *testing.T) {
	t.Setenv("ASTROCACHE_DIR", t.TempDir())

	code, out, _ := runCLI(t, "mem")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "rss")
	assert.Contains(t, out, "budget")
	assert.Contains(t, out, "recommended budget")

	code, out, _ = runCLI(t, "recommend")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "bytes")
}

func TestUsageErrors(t *testing.T) {
	code, _, errOut := runCLI(t)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "usage")

	code, _, errOut = runCLI(t, "defrag")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, `unknown command "defrag"`)

	code, _, _ = runCLI(t, "-config", filepath.Join(t.TempDir(), "nope.yaml"), "mem")
	assert.Equal(t, 1, code)
}
