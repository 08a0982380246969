// Package codec defines how cached payloads are turned into bytes.
//
// A cache entry records the name of the codec that produced it. An entry
// written by one codec is never decoded by another: on mismatch the entry is
// treated as corrupt and recomputed.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	case "gob":
		return Gob{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// Default is the codec used when none is configured. Gob round-trips NaN and
// ±Inf, which JSON rejects, so float catalogs cache without extra setup.
var Default Codec = Gob{}
