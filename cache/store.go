package cache

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	vfs "github.com/hupe1980/astrocache/internal/fs"
	"golang.org/x/sync/singleflight"
)

// EnvDir overrides the default cache directory.
const EnvDir = "ASTROCACHE_DIR"

// staleTempAge is how old an orphaned temporary file must be before cleanup sweeps it.
const staleTempAge = time.Hour

// Store is a directory of fingerprinted, self-verifying cache entries.
//
// Store never surfaces I/O errors from the read and write paths: a failed
// read is a miss, a failed write is logged and dropped. It is safe for
// concurrent use; cooperating processes may share a directory because every
// write lands through an atomic rename.
type Store struct {
	dir         string
	maxAge      time.Duration
	compression Compression
	fs          vfs.FileSystem
	logger      *slog.Logger
	rec         Recorder
	now         func() time.Time
	noCreate    bool

	flight singleflight.Group
}

// DefaultDir returns $ASTROCACHE_DIR, or an "astrocache" directory under the
// user cache location (falling back to the system temp directory).
func DefaultDir() string {
	if dir := os.Getenv(EnvDir); dir != "" {
		return dir
	}
	if base, err := os.UserCacheDir(); err == nil {
		return filepath.Join(base, "astrocache")
	}
	return filepath.Join(os.TempDir(), "astrocache")
}

// New creates a Store rooted at dir (DefaultDir if empty) and creates the
// directory unless WithoutCreate is given. It never fails; if the directory
// cannot be created, writes degrade to no-ops.
func New(dir string, opts ...Option) *Store {
	if dir == "" {
		dir = DefaultDir()
	}

	s := &Store{
		dir:         dir,
		maxAge:      DefaultMaxAge,
		compression: CompressionLZ4,
		fs:          vfs.Default,
		logger:      slog.New(slog.DiscardHandler),
		rec:         noopRecorder{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.noCreate {
		return s
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Warn("cache directory unavailable, caching disabled until it can be created",
			"dir", s.dir, "error", err)
	}

	return s
}

// Dir returns the cache directory.
func (s *Store) Dir() string { return s.dir }

// MaxAge returns the configured expiry age (<= 0 means no expiry).
func (s *Store) MaxAge() time.Duration { return s.maxAge }

// Fingerprint stats every source path in order. Missing files are left out.
func (s *Store) Fingerprint(sources []string) []Source {
	out := make([]Source, 0, len(sources))
	for _, path := range sources {
		info, err := s.fs.Stat(path)
		if err != nil {
			s.logger.Warn("source file excluded from fingerprint", "file", path, "error", err)
			continue
		}
		out = append(out, Source{Path: path, ModTime: info.ModTime()})
	}
	return out
}

// Key builds the fingerprinted key for name.
func (s *Store) Key(name string, sources []string) Key {
	return Key{Name: name, Sources: s.Fingerprint(sources)}
}

// Path returns the entry path for k.
func (s *Store) Path(k Key) string {
	return filepath.Join(s.dir, k.FileName())
}

// outcome classifies a single lookup for accounting.
type outcome uint8

const (
	outcomeMiss outcome = iota
	outcomeHit
	outcomeCorrupt
)

// load returns the decoded entry for k, applying expiry and self-healing.
func (s *Store) load(ctx context.Context, k Key) (entry, outcome) {
	path := s.Path(k)

	info, err := s.fs.Stat(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.WarnContext(ctx, "cache stat failed", "name", k.Name, "file", path, "error", err)
		}
		return entry{}, outcomeMiss
	}

	if s.expired(info.ModTime()) {
		s.logger.DebugContext(ctx, "cache entry expired", "name", k.Name, "file", path,
			"age", s.now().Sub(info.ModTime()))
		s.remove(ctx, path)
		return entry{}, outcomeMiss
	}

	data, err := vfs.ReadFile(s.fs, path)
	if err != nil {
		s.logger.WarnContext(ctx, "cache read failed", "name", k.Name, "file", path, "error", err)
		return entry{}, outcomeMiss
	}

	e, err := decodeEntry(data)
	if err == nil && e.Name != k.Name {
		err = ErrCorrupt
	}
	if err != nil {
		s.discard(ctx, k, err)
		return entry{}, outcomeCorrupt
	}

	return e, outcomeHit
}

// discard deletes a corrupt or undecodable entry. The caller records it.
func (s *Store) discard(ctx context.Context, k Key, reason error) {
	path := s.Path(k)
	s.logger.WarnContext(ctx, "discarding unreadable cache entry", "name", k.Name, "file", path, "error", reason)
	s.remove(ctx, path)
}

func (s *Store) remove(ctx context.Context, path string) {
	if err := s.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.WarnContext(ctx, "cache entry removal failed", "file", path, "error", err)
	}
}

func (s *Store) expired(modTime time.Time) bool {
	return s.maxAge > 0 && s.now().Sub(modTime) > s.maxAge
}

// write stores payload under k through a temp file and an atomic rename.
func (s *Store) write(k Key, codecName string, payload []byte) error {
	blob, err := encodeEntry(k.Name, codecName, s.compression, payload)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}

	tmp, err := s.fs.CreateTemp(s.dir, tempPattern)
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = s.fs.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(blob); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := s.fs.Rename(tmpName, s.Path(k)); err != nil {
		return err
	}

	committed = true
	return nil
}

// EntryInfo describes one cache entry on disk.
type EntryInfo struct {
	Name        string // logical name; empty if the header is unreadable
	File        string
	Codec       string
	Compression string
	Size        int64
	ModTime     time.Time
	Age         time.Duration
	Corrupt     bool
}

// Info lists entries oldest first.
func (s *Store) Info() ([]EntryInfo, error) {
	files, err := s.entryFiles(entrySuffix)
	if err != nil {
		return nil, err
	}

	now := s.now()
	infos := make([]EntryInfo, 0, len(files))
	for _, f := range files {
		ei := EntryInfo{
			File:    f.path,
			Size:    f.info.Size(),
			ModTime: f.info.ModTime(),
			Age:     now.Sub(f.info.ModTime()),
		}
		if h, err := s.readHeader(f.path); err == nil {
			ei.Name = h.Name
			ei.Codec = h.Codec
			ei.Compression = h.Compression.String()
		} else {
			ei.Corrupt = true
		}
		infos = append(infos, ei)
	}

	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].ModTime.Equal(infos[j].ModTime) {
			return infos[i].ModTime.Before(infos[j].ModTime)
		}
		return infos[i].File < infos[j].File
	})
	return infos, nil
}

func (s *Store) readHeader(path string) (header, error) {
	f, err := s.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return header{}, err
	}
	defer f.Close()
	return peekHeader(f)
}

// Clear removes every fingerprint variant of name and returns how many were deleted.
func (s *Store) Clear(name string) (int, error) {
	prefix := namePrefix(name)
	files, err := s.entryFiles(entrySuffix)
	if err != nil {
		return 0, err
	}

	var n int
	var errs []error
	for _, f := range files {
		if !strings.HasPrefix(filepath.Base(f.path), prefix) {
			continue
		}
		if err := s.fs.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		n++
	}
	if n > 0 {
		s.logger.Info("cache entries cleared", "name", name, "count", n)
	}
	return n, errors.Join(errs...)
}

// ClearAll removes the entire contents of the cache directory and returns
// the number of entries deleted.
func (s *Store) ClearAll() (int, error) {
	dirents, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	var n int
	var errs []error
	for _, de := range dirents {
		path := filepath.Join(s.dir, de.Name())
		if err := s.fs.RemoveAll(path); err != nil {
			errs = append(errs, err)
			continue
		}
		if !de.IsDir() && strings.HasSuffix(de.Name(), entrySuffix) {
			n++
		}
	}
	s.logger.Info("cache cleared", "dir", s.dir, "count", n)
	return n, errors.Join(errs...)
}

// CleanupOldEntries deletes entries older than maxAge (the configured max age
// if maxAge <= 0) and returns how many were deleted. Orphaned temp files from
// interrupted writes are swept as well.
func (s *Store) CleanupOldEntries(maxAge time.Duration) (int, error) {
	if maxAge <= 0 {
		maxAge = s.maxAge
	}
	if maxAge <= 0 {
		return 0, nil
	}

	files, err := s.entryFiles(entrySuffix, tempSuffix)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var n int
	var errs []error
	for _, f := range files {
		age := now.Sub(f.info.ModTime())
		isTemp := strings.HasSuffix(f.path, tempSuffix)
		if (isTemp && age <= staleTempAge) || (!isTemp && age <= maxAge) {
			continue
		}
		if err := s.fs.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		if !isTemp {
			n++
		}
	}
	if n > 0 {
		s.logger.Info("expired cache entries removed", "count", n, "max_age", maxAge)
	}
	return n, errors.Join(errs...)
}

type dirFile struct {
	path string
	info fs.FileInfo
}

// entryFiles lists regular files in the cache directory with one of the suffixes.
// A missing directory is an empty cache.
func (s *Store) entryFiles(suffixes ...string) ([]dirFile, error) {
	dirents, err := s.fs.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var out []dirFile
	for _, de := range dirents {
		if de.IsDir() || !hasAnySuffix(de.Name(), suffixes) {
			continue
		}
		path := filepath.Join(s.dir, de.Name())
		info, err := s.fs.Stat(path)
		if err != nil {
			continue // raced with a concurrent delete
		}
		out = append(out, dirFile{path: path, info: info})
	}
	return out, nil
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}
