package astrocache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hupe1980/astrocache/cache"
	"github.com/hupe1980/astrocache/memory"
	"github.com/hupe1980/astrocache/spatial"
	"gopkg.in/yaml.v3"
)

// Environment variables that override configuration values.
const (
	EnvCacheDir           = cache.EnvDir
	EnvMaxAge             = "ASTROCACHE_MAX_AGE"
	EnvMaxMemory          = "ASTROCACHE_MAX_MEMORY"
	EnvWarningFraction    = "ASTROCACHE_WARNING_FRACTION"
	EnvSubsampleThreshold = "ASTROCACHE_SUBSAMPLE_THRESHOLD"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

// ByteSize is a byte count that reads from YAML either as a number or as a
// human-readable size such as "8 GiB" or "512MB".
type ByteSize uint64

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *ByteSize) UnmarshalYAML(node *yaml.Node) error {
	n, err := humanize.ParseBytes(node.Value)
	if err != nil {
		return fmt.Errorf("byte size %q: %w", node.Value, err)
	}
	*b = ByteSize(n)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b ByteSize) MarshalYAML() (any, error) {
	return humanize.IBytes(uint64(b)), nil
}

func (b ByteSize) String() string { return humanize.IBytes(uint64(b)) }

// Age is an entry lifetime that reads from YAML and the environment either as
// a Go duration ("720h") or as whole days ("30d").
type Age time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Age) UnmarshalYAML(node *yaml.Node) error {
	d, err := parseAge(node.Value)
	if err != nil {
		return fmt.Errorf("max age %q: %w", node.Value, err)
	}
	*a = Age(d)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a Age) MarshalYAML() (any, error) { return a.String(), nil }

// Duration returns a as a time.Duration.
func (a Age) Duration() time.Duration { return time.Duration(a) }

func (a Age) String() string { return time.Duration(a).String() }

// Config holds the tunables of a Toolkit. The zero value is not valid; start
// from DefaultConfig.
type Config struct {
	// CacheDir is the persistent cache directory.
	CacheDir string `yaml:"cache_dir"`
	// MaxAge is how long cache entries stay valid. <= 0 disables expiry.
	MaxAge Age `yaml:"max_age"`
	// MaxMemory is the memory governor budget.
	MaxMemory ByteSize `yaml:"max_memory"`
	// WarningFraction is the share of MaxMemory above which eviction starts.
	WarningFraction float64 `yaml:"warning_fraction"`
	// SubsampleThreshold is the largest point count a ProximityIndex keeps.
	SubsampleThreshold int `yaml:"subsample_threshold"`
	// Compression is the block codec for cache entries: none, lz4 or zstd.
	Compression string `yaml:"compression"`
	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CacheDir:           cache.DefaultDir(),
		MaxAge:             Age(cache.DefaultMaxAge),
		MaxMemory:          ByteSize(memory.DefaultMaxBytes),
		WarningFraction:    memory.DefaultWarningFraction,
		SubsampleThreshold: spatial.DefaultSubsampleThreshold,
		Compression:        "lz4",
		LogLevel:           "info",
	}
}

// LoadConfig reads a YAML file over DefaultConfig and applies environment
// overrides. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from environment variables looked up with lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvCacheDir); ok && v != "" {
		c.CacheDir = v
	}
	if v, ok := lookup(EnvMaxAge); ok && v != "" {
		d, err := parseAge(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxAge, err)
		}
		c.MaxAge = Age(d)
	}
	if v, ok := lookup(EnvMaxMemory); ok && v != "" {
		n, err := humanize.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxMemory, err)
		}
		c.MaxMemory = ByteSize(n)
	}
	if v, ok := lookup(EnvWarningFraction); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWarningFraction, err)
		}
		c.WarningFraction = f
	}
	if v, ok := lookup(EnvSubsampleThreshold); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSubsampleThreshold, err)
		}
		c.SubsampleThreshold = n
	}
	return nil
}

// parseAge accepts Go durations plus a whole-day form such as "30d".
func parseAge(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if c.CacheDir == "" {
		return fmt.Errorf("%w: cache_dir is empty", ErrInvalidConfig)
	}
	if c.MaxMemory == 0 {
		return fmt.Errorf("%w: max_memory must be positive", ErrInvalidConfig)
	}
	if !(c.WarningFraction > 0 && c.WarningFraction <= 1) {
		return fmt.Errorf("%w: warning_fraction %v not in (0, 1]", ErrInvalidConfig, c.WarningFraction)
	}
	if c.SubsampleThreshold <= 0 {
		return fmt.Errorf("%w: subsample_threshold must be positive", ErrInvalidConfig)
	}
	if _, err := cache.ParseCompression(c.Compression); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.level(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	var l slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return l, nil
}
