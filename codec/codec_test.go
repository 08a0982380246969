package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogSlice struct {
	Name string
	RA   []float64
	Dec  []float64
}

func TestCodecs(t *testing.T) {
	in := catalogSlice{Name: "tile-42", RA: []float64{150.1, 150.2}, Dec: []float64{2.2, -2.3}}

	for _, c := range []Codec{JSON{}, GoJSON{}, Gob{}} {
		t.Run(c.Name(), func(t *testing.T) {
			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out catalogSlice
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)

			byName, ok := ByName(c.Name())
			require.True(t, ok)
			assert.Equal(t, c.Name(), byName.Name())
		})
	}
}

func TestGobKeepsNaN(t *testing.T) {
	data, err := Gob{}.Marshal([]float64{1, math.NaN(), math.Inf(1)})
	require.NoError(t, err)

	var out []float64
	require.NoError(t, Gob{}.Unmarshal(data, &out))
	require.Len(t, out, 3)
	assert.True(t, math.IsNaN(out[1]))
	assert.True(t, math.IsInf(out[2], 1))

	_, err = JSON{}.Marshal([]float64{math.NaN()})
	assert.Error(t, err)
	_, err = GoJSON{}.Marshal([]float64{math.Inf(-1)})
	assert.Error(t, err)
}

func TestByNameUnknown(t *testing.T) {
	_, ok := ByName("protobuf")
	assert.False(t, ok)
}

func TestMustMarshal(t *testing.T) {
	assert.Equal(t, `{"a":1}`, string(MustMarshal(GoJSON{}, map[string]int{"a": 1})))
	assert.Equal(t, Gob{}.Name(), Default.Name())

	var out map[string]int
	require.NoError(t, Default.Unmarshal(MustMarshal(nil, map[string]int{"a": 1}), &out))
	assert.Equal(t, map[string]int{"a": 1}, out)
	assert.Panics(t, func() { MustMarshal(JSON{}, make(chan int)) })
}
