package astrocache

import (
	"github.com/hupe1980/astrocache/cache"
	"github.com/hupe1980/astrocache/memory"
	"github.com/hupe1980/astrocache/spatial"
)

var (
	// ErrCorrupt marks an unreadable cache entry. Readers never see it; it
	// appears in logs and in EntryInfo.
	ErrCorrupt = cache.ErrCorrupt

	// ErrIncompatibleFormat marks an entry written by another format version.
	ErrIncompatibleFormat = cache.ErrIncompatibleFormat

	// ErrNameTooLong marks a cache name that does not fit the entry header.
	ErrNameTooLong = cache.ErrNameTooLong

	// ErrLengthMismatch is returned when coordinate slices differ in length.
	ErrLengthMismatch = spatial.ErrLengthMismatch

	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = spatial.ErrInvalidK

	// ErrSamplerUnavailable is returned when the platform offers no memory measurement.
	ErrSamplerUnavailable = memory.ErrSamplerUnavailable
)

// LengthMismatchError carries the lengths of mismatched coordinate slices.
type LengthMismatchError = spatial.LengthMismatchError
