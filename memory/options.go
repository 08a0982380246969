package memory

import (
	"log/slog"
	"runtime/debug"
	"time"
)

// Option configures a Governor.
type Option func(*Governor)

// WithMaxBytes sets the memory budget (default 8 GiB).
func WithMaxBytes(n uint64) Option {
	return func(g *Governor) {
		g.maxBytes = n
	}
}

// WithWarningFraction sets the share of the budget above which cleanup evicts (default 0.8).
func WithWarningFraction(f float64) Option {
	return func(g *Governor) {
		g.warningFraction = f
	}
}

// WithSampler overrides the memory sampler.
func WithSampler(s Sampler) Option {
	return func(g *Governor) {
		if s != nil {
			g.sampler = s
		}
	}
}

// WithLogger sets the logger for the governor.
func WithLogger(l *slog.Logger) Option {
	return func(g *Governor) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithRecorder sets the eviction recorder.
func WithRecorder(r Recorder) Option {
	return func(g *Governor) {
		if r != nil {
			g.rec = r
		}
	}
}

// WithReleaser overrides how memory is handed back after an eviction.
// The default is debug.FreeOSMemory, which forces a garbage collection.
func WithReleaser(release func()) Option {
	return func(g *Governor) {
		if release != nil {
			g.release = release
		}
	}
}

// WithClock overrides the time source for access records.
func WithClock(now func() time.Time) Option {
	return func(g *Governor) {
		if now != nil {
			g.now = now
		}
	}
}

var defaultReleaser = debug.FreeOSMemory
