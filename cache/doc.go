// Package cache provides a persistent disk cache with fingerprint-based invalidation.
//
// Expensive derived artifacts (merged catalogs, generated polygons, file-info
// tables) are stored one file per (name, fingerprint). The fingerprint is
// the ordered list of (path, modification time) pairs of every source file
// the artifact depends on, so touching any source produces a new key and the
// old variant simply ages out.
//
// # Usage
//
//	store := cache.New("", cache.WithMaxAge(30*24*time.Hour))
//	tiles := cache.NewTyped[[]Tile](store, codec.Gob{})
//
//	got, err := tiles.GetOrCompute(ctx, "merged_tiles", []string{catalogPath},
//	    func(ctx context.Context) ([]Tile, error) {
//	        return loadTiles(catalogPath)
//	    })
//
// # Failure model
//
// The cache degrades to "no caching" rather than failing callers:
//
//   - corrupt or undecodable entries are deleted and read as misses
//   - expired entries are deleted and read as misses
//   - write failures (disk full, read-only directory) are logged and dropped
//
// Only errors returned by the compute function reach the caller.
//
// # Concurrency
//
// Writes go to a temporary file in the cache directory and are renamed into
// place, so readers in any process observe either the previous entry or the
// complete new one. Within one process, concurrent GetOrCompute calls for the
// same key share a single compute.
//
// A fingerprinted source that no longer exists is left out of the
// fingerprint (and logged) instead of invalidating the entry.
package cache
