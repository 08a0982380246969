package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"hash/crc32"
)

// crc32cTable is pre-computed for CRC32-Castagnoli polynomial.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// CRC32C computes the CRC32-Castagnoli checksum of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, crc32cTable)
}

// NewCRC32C returns a new CRC32-Castagnoli hash.Hash32.
func NewCRC32C() hash.Hash32 {
	return crc32.New(crc32cTable)
}

// Digest is a streaming SHA-256 used to derive stable cache file names.
// Parts are length-prefixed so ("ab","c") and ("a","bc") never collide.
type Digest struct {
	h hash.Hash
}

// NewDigest returns an empty Digest.
func NewDigest() *Digest {
	return &Digest{h: sha256.New()}
}

// WriteString appends a length-prefixed string part.
func (d *Digest) WriteString(s string) {
	d.WriteUint64(uint64(len(s)))
	_, _ = d.h.Write([]byte(s))
}

// WriteUint64 appends a fixed-width integer part.
func (d *Digest) WriteUint64(v uint64) {
	var b [8]byte
	for i := range b {
		b[i] = byte(v >> (8 * i))
	}
	_, _ = d.h.Write(b[:])
}

// Hex returns the first n hex characters of the digest (n <= 64).
func (d *Digest) Hex(n int) string {
	s := hex.EncodeToString(d.h.Sum(nil))
	if n > 0 && n < len(s) {
		return s[:n]
	}
	return s
}
