// Package compress frames cache entry bodies with an optional block codec.
//
// Two algorithms are supported:
//
//   - LZ4: fast, used by default for hot catalog artifacts
//   - ZSTD: better ratio for large, rarely rebuilt artifacts
//
// Every block carries a 16-byte header with the raw and compressed sizes, so
// Decode can reject truncated or tampered blocks without trusting the body.
// Blocks that do not compress well are stored raw behind the same header.
package compress
