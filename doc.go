// Package astrocache is the caching and spatial backbone of an interactive
// astronomical-catalog viewer.
//
// It bundles three independent components:
//
//   - cache: a persistent disk cache keyed by a name plus the modification
//     times of the source files the value was derived from. Entries are
//     self-verifying; a corrupt, expired or stale entry is simply a miss.
//   - memory: a governor that measures process RSS in constant time and
//     evicts least-recently-used entries of in-memory caches under pressure.
//   - spatial: a k-d tree over unit-sphere positions for radius, box and
//     nearest-neighbour queries, plus a subsampling proximity index.
//
// # Quick Start
//
//	cfg, err := astrocache.LoadConfig("astrocache.yaml") // "" for defaults
//	tk, err := astrocache.Open(cfg)
//
//	catalogs := astrocache.NewCache[Catalog](tk, nil)
//	cat, err := catalogs.GetOrCompute(ctx, "gaia-dr3-tile-42", []string{fitsPath},
//	    func(ctx context.Context) (Catalog, error) { return parseFITS(fitsPath) })
//
//	warm := astrocache.NewMap[*Catalog](tk, 10*time.Second) // evicts under pressure
//	warm.Store("tile-42", &cat)
//
//	prox, err := tk.NewProximityIndex(cat.RA, cat.Dec)
//	near, err := prox.CheckProximityBatch(clusterRA, clusterDec, 0.5)
//
// # Configuration
//
// Config is read from YAML and then from the environment:
//
//	cache_dir: /var/cache/astrocache     # ASTROCACHE_DIR
//	max_age: 720h                        # ASTROCACHE_MAX_AGE (also "30d")
//	max_memory: 8 GiB                    # ASTROCACHE_MAX_MEMORY
//	warning_fraction: 0.8                # ASTROCACHE_WARNING_FRACTION
//	subsample_threshold: 100000          # ASTROCACHE_SUBSAMPLE_THRESHOLD
//	compression: lz4                     # none, lz4, zstd
//	log_level: info
//
// # Failure Model
//
// Cache and governor failures never reach the caller as errors: a failed
// read is a miss, a failed write is logged and skipped. Spatial
// preconditions such as mismatched coordinate slices fail fast with
// ErrLengthMismatch.
//
// # Metrics
//
// Pass a MetricsCollector with WithMetricsCollector. BasicMetricsCollector
// keeps atomic counters in memory; the prommetrics package exports the same
// events to a Prometheus registry.
//
// # Concurrency
//
// Everything runs on the calling goroutine; no component starts background
// work. Store, Governor, memory.Map and spatial.Index are safe for concurrent
// use. Plain maps handed to memory.CleanupMap must be locked by the caller.
package astrocache
