package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	ID     uint64 `json:"id" msgpack:"id"`
	City   string `json:"city" msgpack:"city"`
	Offset uint32 `json:"offset" msgpack:"offset"`
}

func TestByName(t *testing.T) {
	for _, name := range []string{"json", "go-json", "msgpack"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("protobuf")
	assert.False(t, ok)
}

func TestRoundTrip(t *testing.T) {
	in := []testRecord{
		{ID: 1, City: "Berlin", Offset: 8},
		{ID: 2, City: "Hamburg", Offset: 17},
	}

	for _, name := range []string{"json", "go-json", "msgpack"} {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)

			data, err := c.Marshal(in)
			require.NoError(t, err)

			var out []testRecord
			require.NoError(t, c.Unmarshal(data, &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestUnmarshalGarbage(t *testing.T) {
	for _, name := range []string{"json", "go-json", "msgpack"} {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)

			var out []testRecord
			assert.Error(t, c.Unmarshal([]byte("\x00\xffnot a payload"), &out))
		})
	}
}

func TestDefaultIsRegistered(t *testing.T) {
	c, ok := ByName(Default.Name())
	require.True(t, ok)
	assert.Equal(t, Default.Name(), c.Name())
}

func TestMustMarshal(t *testing.T) {
	b := MustMarshal(nil, testRecord{ID: 7, City: "Kiel", Offset: 3})
	assert.NotEmpty(t, b)

	assert.Panics(t, func() {
		MustMarshal(JSON{}, make(chan int))
	})
}
