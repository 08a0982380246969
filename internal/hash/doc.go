// Package hash provides checksums and digests for cache entry integrity.
//
// # CRC32-Castagnoli (CRC32C)
//
// Every cache entry body is protected by a CRC32C checksum stored in the
// entry header. A mismatch on read marks the entry corrupt; the cache then
// deletes it and reports a miss.
//
// Go's crc32 package uses hardware instructions (SSE4.2, ARM CRC) when
// available, so checksumming large catalog payloads stays cheap:
//
//	checksum := hash.CRC32C(data)
//
// # Key digests
//
// Digest derives deterministic, collision-resistant file names from a logical
// cache name and its source-file fingerprint:
//
//	d := hash.NewDigest()
//	d.WriteString("merged_catalog")
//	d.WriteUint64(uint64(modTime.UnixNano()))
//	name := d.Hex(16)
package hash
