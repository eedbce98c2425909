package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docval/value"
)

func TestDetect(t *testing.T) {
	doc := sampleDocument()

	tests := []struct {
		name  string
		codec Codec
		want  string
	}{
		{"JSON", JSON{}, "json"},
		{"PrettyJSON", JSON{Format: true}, "json"},
		{"GoJSON", GoJSON{}, "json"},
		{"Pickle", Pickle{}, "pickle"},
		{"LZ4JSON", Compressed{Inner: JSON{}, Compression: CompressionLZ4}, "json+lz4"},
		{"ZSTDPickle", Compressed{Inner: Pickle{}, Compression: CompressionZSTD}, "pickle+zstd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := tt.codec.Marshal(doc)
			require.NoError(t, err)

			c := Detect(data)
			assert.Equal(t, tt.want, c.Name())

			back, err := c.Unmarshal(data)
			require.NoError(t, err)
			assert.True(t, value.Equal(doc, back))
		})
	}
}

func TestDetectEdgeCases(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"Empty":           {"", "json"},
		"Protocol0":       {"(lp0\nI1\na.", "pickle"},
		"Protocol0Space":  {"N.\n", "pickle"},
		"Protocol0Dict":   {"(dp0\nS'a'\np1\nI1\ns.", "pickle"},
		"CommentDot":      {"// done.", "json"},
		"TrailingComment": {`{"a":1} // written by hand.`, "json"},
		"ListComment":     {"[1, 2] // two.", "json"},
		"IndentedComment": {"  1 // one.", "json"},
		"Number":          {"12", "json"},
		"BrokenFrame":     {"\x01\x00", "json"},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect([]byte(tt.in)).Name())
		})
	}
}

func TestAuto(t *testing.T) {
	c, ok := ByName("auto")
	require.True(t, ok)
	assert.Equal(t, "auto", c.Name())

	_, ok = ByName("auto+lz4")
	assert.False(t, ok)

	data, err := c.Marshal(value.List(value.Int(1)))
	require.NoError(t, err)
	assert.Equal(t, "[1]", string(data))

	for _, in := range [][]byte{
		data,
		MustMarshal(Pickle{}, value.List(value.Int(1))),
		[]byte("(lp0\nI1\na."),
		[]byte("[1] // one."),
	} {
		v, err := c.Unmarshal(in)
		require.NoError(t, err)
		assert.True(t, value.Equal(value.List(value.Int(1)), v), "%q", in)
	}
}
