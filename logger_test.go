package astrocache

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/hupe1980/astrocache/memory"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewJSONHandler(&buf, nil)).WithComponent("cli")
	ctx := context.Background()

	l.LogCleanup(ctx, "/cache", 3, nil)
	assert.Contains(t, buf.String(), `"msg":"cache cleanup completed"`)
	assert.Contains(t, buf.String(), `"removed":3`)
	assert.Contains(t, buf.String(), `"component":"cli"`)

	buf.Reset()
	l.LogClear(ctx, "tile", 0, errors.New("permission denied"))
	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), `"error":"permission denied"`)

	buf.Reset()
	l.LogMemory(ctx, memory.Stats{RSS: 900, AboveWarning: true})
	assert.Contains(t, buf.String(), `"level":"WARN"`)
	assert.Contains(t, buf.String(), `"rss":900`)
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}
