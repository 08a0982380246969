package astrocache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hupe1980/astrocache/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, 30*24*time.Hour, cfg.MaxAge.Duration())
	assert.Equal(t, ByteSize(8*memory.GiB), cfg.MaxMemory)
	assert.Equal(t, 0.8, cfg.WarningFraction)
	assert.Equal(t, 100_000, cfg.SubsampleThreshold)
	assert.Equal(t, "lz4", cfg.Compression)
}

func TestLoadConfig_YAMLAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "astrocache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cache_dir: /srv/cache
max_age: 48h
max_memory: 2 GiB
warning_fraction: 0.6
compression: zstd
log_level: debug
`), 0o600))

	t.Setenv(EnvSubsampleThreshold, "5000")
	t.Setenv(EnvMaxMemory, "")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/cache", cfg.CacheDir)
	assert.Equal(t, 48*time.Hour, cfg.MaxAge.Duration())
	assert.Equal(t, ByteSize(2*memory.GiB), cfg.MaxMemory)
	assert.Equal(t, 0.6, cfg.WarningFraction)
	assert.Equal(t, 5000, cfg.SubsampleThreshold)
	assert.Equal(t, "zstd", cfg.Compression)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_memory: lots\n"), 0o600))
	_, err = LoadConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("warning_fraction: 1.5\n"), 0o600))
	_, err = LoadConfig(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvCacheDir:           "/tmp/ac",
		EnvMaxAge:             "7d",
		EnvMaxMemory:          "512MiB",
		EnvWarningFraction:    "0.9",
		EnvSubsampleThreshold: "123",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))

	assert.Equal(t, "/tmp/ac", cfg.CacheDir)
	assert.Equal(t, 7*24*time.Hour, cfg.MaxAge.Duration())
	assert.Equal(t, ByteSize(512<<20), cfg.MaxMemory)
	assert.Equal(t, 0.9, cfg.WarningFraction)
	assert.Equal(t, 123, cfg.SubsampleThreshold)

	for key, bad := range map[string]string{
		EnvMaxAge:             "soon",
		EnvMaxMemory:          "many",
		EnvWarningFraction:    "most",
		EnvSubsampleThreshold: "few",
	} {
		cfg := DefaultConfig()
		err := cfg.ApplyEnv(func(k string) (string, bool) {
			if k == key {
				return bad, true
			}
			return "", false
		})
		assert.ErrorContains(t, err, key)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty dir", func(c *Config) { c.CacheDir = "" }},
		{"zero memory", func(c *Config) { c.MaxMemory = 0 }},
		{"zero fraction", func(c *Config) { c.WarningFraction = 0 }},
		{"fraction above one", func(c *Config) { c.WarningFraction = 1.01 }},
		{"zero threshold", func(c *Config) { c.SubsampleThreshold = 0 }},
		{"unknown compression", func(c *Config) { c.Compression = "brotli" }},
		{"unknown level", func(c *Config) { c.LogLevel = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestByteSizeYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		Size ByteSize `yaml:"size"`
	}{Size: ByteSize(3 * memory.GiB)})
	require.NoError(t, err)
	assert.Equal(t, "size: 3.0 GiB\n", string(out))

	var in struct {
		Size ByteSize `yaml:"size"`
	}
	require.NoError(t, yaml.Unmarshal(out, &in))
	assert.Equal(t, ByteSize(3*memory.GiB), in.Size)

	require.NoError(t, yaml.Unmarshal([]byte("size: 1048576\n"), &in))
	assert.Equal(t, ByteSize(1<<20), in.Size)
}

func TestLoadConfig_MaxAgeInDays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astrocache.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_age: 30d\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, cfg.MaxAge.Duration())

	for _, bad := range []string{"max_age: -3d\n", "max_age: soon\n"} {
		require.NoError(t, os.WriteFile(path, []byte(bad), 0o600))
		_, err = LoadConfig(path)
		assert.ErrorContains(t, err, "max age")
	}
}

func TestAgeYAML(t *testing.T) {
	out, err := yaml.Marshal(struct {
		Age Age `yaml:"age"`
	}{Age: Age(36 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, "age: 36h0m0s\n", string(out))

	var in struct {
		Age Age `yaml:"age"`
	}
	require.NoError(t, yaml.Unmarshal(out, &in))
	assert.Equal(t, 36*time.Hour, in.Age.Duration())
}
