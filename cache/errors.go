package cache

import "errors"

var (
	// ErrCorrupt is returned when an entry fails its integrity checks
	// (bad magic, checksum mismatch, truncated body, undecodable payload).
	ErrCorrupt = errors.New("cache entry corrupt")

	// ErrIncompatibleFormat is returned when an entry was written by an
	// unsupported format version.
	ErrIncompatibleFormat = errors.New("incompatible cache entry format")

	// ErrCodecMismatch is returned when an entry was written with a different codec
	// than the one reading it.
	ErrCodecMismatch = errors.New("cache entry codec mismatch")

	// ErrNameTooLong is returned when a logical name does not fit the entry
	// header. Such names are never cached.
	ErrNameTooLong = errors.New("cache entry name too long")
)
