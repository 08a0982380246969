package cache

import (
	"log/slog"
	"time"

	"github.com/hupe1980/astrocache/internal/compress"
	"github.com/hupe1980/astrocache/internal/fs"
)

// DefaultMaxAge is how long an entry stays valid when no max age is configured.
const DefaultMaxAge = 30 * 24 * time.Hour

// Compression selects the block codec applied to entry bodies.
type Compression = compress.Type

const (
	CompressionNone = compress.None
	CompressionLZ4  = compress.LZ4
	CompressionZSTD = compress.ZSTD
)

// ParseCompression maps "none", "lz4" or "zstd" to a Compression.
func ParseCompression(name string) (Compression, error) {
	return compress.ParseType(name)
}

// Option configures a Store.
type Option func(*Store)

// WithMaxAge sets the age after which entries are treated as misses and deleted.
// A value <= 0 disables age-based expiry.
func WithMaxAge(d time.Duration) Option {
	return func(s *Store) {
		s.maxAge = d
	}
}

// WithLogger sets the logger for the store.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCompression sets the block compression for newly written entries.
// Existing entries are read with whatever compression they recorded.
func WithCompression(t Compression) Option {
	return func(s *Store) {
		s.compression = t
	}
}

// WithRecorder sets the metrics recorder for the store.
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.rec = r
		}
	}
}

// WithFileSystem overrides the filesystem (tests inject fs.FaultyFS).
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(s *Store) {
		if fsys != nil {
			s.fs = fsys
		}
	}
}

// WithClock overrides the time source used for expiry and age reporting.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithoutCreate makes New leave a missing directory alone, so inspection and
// maintenance never create an empty cache. A later write still creates it.
func WithoutCreate() Option {
	return func(s *Store) {
		s.noCreate = true
	}
}
