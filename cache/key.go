package cache

import (
	"strings"
	"time"

	"github.com/hupe1980/astrocache/internal/hash"
)

const (
	entrySuffix   = ".cache"
	tempPattern   = "tmp-*.partial"
	tempSuffix    = ".partial"
	maxSafeName   = 64
	nameDigestLen = 8
	keyDigestLen  = 16
)

// Source is one fingerprinted dependency of a cached artifact.
type Source struct {
	Path    string
	ModTime time.Time
}

// Key identifies a cache entry: a logical name plus the ordered
// fingerprint of every source file that still exists.
type Key struct {
	Name    string
	Sources []Source
}

// FileName returns the deterministic entry file name for k.
//
// Format: <safe-name>.<name-digest>.<key-digest>.cache
// Different fingerprints of the same name differ only in the key digest, so
// every variant of a name shares the prefix returned by namePrefix.
func (k Key) FileName() string {
	d := hash.NewDigest()
	d.WriteString(k.Name)
	d.WriteUint64(uint64(len(k.Sources)))
	for _, src := range k.Sources {
		d.WriteString(src.Path)
		d.WriteUint64(uint64(src.ModTime.UnixNano()))
	}
	return namePrefix(k.Name) + d.Hex(keyDigestLen) + entrySuffix
}

func namePrefix(name string) string {
	d := hash.NewDigest()
	d.WriteString(name)
	return safeName(name) + "." + d.Hex(nameDigestLen) + "."
}

// safeName keeps file names readable without letting the logical name
// inject separators or dots.
func safeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if b.Len() >= maxSafeName {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
