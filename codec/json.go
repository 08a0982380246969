package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec. Its entries are tagged "json"
// and never decode through GoJSON, even though the bytes are compatible.
//
// JSON cannot represent NaN or ±Inf. Catalog columns with missing values
// should use Gob instead.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }
