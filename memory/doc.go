// Package memory keeps process memory bounded while large datasets stay warm.
//
// A [Governor] measures whole-process resident memory (RSS) in constant time
// and, when it exceeds the warning threshold, evicts the least recently used
// entries of a caller-owned cache until RSS falls below the target.
//
//	┌──────────────────────────────────────────────────┐
//	│ MaxBytes (default 8 GiB)                         │
//	├──────────────────────────────────────────────────┤
//	│ WarningBytes = 0.8 × Max   cleanup starts above  │
//	│ TargetBytes  = 0.7 × Max   cleanup stops below   │
//	└──────────────────────────────────────────────────┘
//
// # Measurement
//
// On Linux RSS comes from /proc/self/statm. Elsewhere, or if that read fails,
// the Go runtime's mapped-and-retained total is used instead. Estimating the
// size of cached values by walking them is deliberately avoided: on large
// nested numeric tables it costs hundreds of milliseconds per call.
//
// # Usage
//
//	gov := memory.New(memory.WithMaxBytes(4 * memory.GiB))
//	datasets := memory.NewMap[*Catalog](gov, 10*time.Second)
//
//	datasets.Store("tile-102158", cat) // may evict older tiles
//	cat, ok := datasets.Load("tile-102158")
//
// For a plain map the caller already guards, use CleanupMap:
//
//	mu.Lock()
//	memory.CleanupMap(gov, cache)
//	mu.Unlock()
//
// # Thread Safety
//
// The governor's access record is guarded by a mutex. The Evictable handed to
// CleanupIfNeeded is not: it must be owned by one goroutine or locked by the
// caller for the duration of the call. [Map] does that locking itself.
//
// There is no background timer. Periodic checks are the caller's job.
package memory
