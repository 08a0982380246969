package codec

import (
	"bytes"
	"encoding/gob"
)

// Gob is the default binary codec for cache entries.
// Unlike JSON it round-trips NaN and ±Inf, which catalog tables use for missing values.
// Empty and nil slices decode alike, and interface fields need gob.Register.
type Gob struct{}

// Marshal encodes the value with encoding/gob.
func (Gob) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes gob data into v, which must be a pointer.
func (Gob) Unmarshal(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}

// Name returns the unique name of the codec ("gob").
func (Gob) Name() string { return "gob" }
