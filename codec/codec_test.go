package codec

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docval/testutil"
	"github.com/hupe1980/docval/value"
)

func sampleDocument() value.Value {
	return value.Dict(
		value.M("a", value.Int(1)),
		value.M("b", value.List(value.Bool(true), value.Null(), value.Float(2.5))),
		value.M("text", value.String(strings.Repeat("lorem ipsum ", 64))),
	)
}

func TestByName(t *testing.T) {
	for _, name := range []string{
		"json", "json-strict", "json-pretty", "go-json", "go-jsonc", "cbor", "pickle",
		"cbor+zstd", "json+lz4", "pickle+zstd", "json-pretty+zstd",
	} {
		t.Run(name, func(t *testing.T) {
			c, ok := ByName(name)
			require.True(t, ok)
			assert.Equal(t, name, c.Name())
		})
	}

	for _, name := range []string{"", "xml", "json+gzip", "json+none", "+lz4"} {
		_, ok := ByName(name)
		assert.False(t, ok, name)
	}
}

func TestCodecsRoundTrip(t *testing.T) {
	codecs := []Codec{
		JSON{}, JSON{Strict: true}, JSON{Format: true, SortKeys: true}, Pickle{}, CBOR{},
		Compressed{Inner: JSON{}, Compression: CompressionLZ4},
		Compressed{Inner: Pickle{}, Compression: CompressionZSTD},
	}

	docs := append(testutil.NewRNG(4711).Values(50, testutil.DefaultValueOptions()), sampleDocument())
	for _, c := range codecs {
		t.Run(c.Name(), func(t *testing.T) {
			for _, v := range docs {
				data, err := c.Marshal(v)
				require.NoError(t, err)
				back, err := c.Unmarshal(data)
				require.NoError(t, err)
				require.True(t, value.Equal(v, back), "%s != %s", v, back)
			}
		})
	}
}

func TestJSONStrict(t *testing.T) {
	_, err := JSON{Strict: true}.Unmarshal([]byte("[1,]"))
	assert.True(t, errors.Is(err, value.ErrParse))

	v, err := JSON{}.Unmarshal([]byte("[1,]"))
	require.NoError(t, err)
	assert.True(t, value.Equal(value.List(value.Int(1)), v))
}

func TestJSONFormat(t *testing.T) {
	b, err := JSON{Format: true}.Marshal(value.List(value.Int(1)))
	require.NoError(t, err)
	assert.Equal(t, "[\n  1\n]", string(b))
}

func TestGoJSON(t *testing.T) {
	c := GoJSON{}

	v, err := c.Unmarshal([]byte(`{"b":[true,null,2.5],"a":1,"big":1e3}`))
	require.NoError(t, err)

	want := value.Dict(
		value.M("a", value.Int(1)),
		value.M("b", value.List(value.Bool(true), value.Null(), value.Float(2.5))),
		value.M("big", value.Float(1000)),
	)
	assert.True(t, value.Equal(want, v), "got %s", v)

	m, err := v.AsDict()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "big"}, m.Keys())

	out, err := c.Marshal(want)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1,"b":[true,null,2.5],"big":1000}`, string(out))
}

func TestGoJSONErrors(t *testing.T) {
	c := GoJSON{}

	_, err := c.Unmarshal([]byte(`{"a":`))
	assert.True(t, errors.Is(err, value.ErrParse))

	_, err = c.Unmarshal([]byte(`1 2`))
	assert.True(t, errors.Is(err, value.ErrTrailingData))

	_, err = c.Unmarshal([]byte(`99999999999999999999`))
	assert.True(t, errors.Is(err, value.ErrOverflow))

	_, err = c.Marshal(value.Float(math.Inf(1)))
	assert.Error(t, err)
}

func TestCompress(t *testing.T) {
	data := bytes.Repeat([]byte("docval "), 1000)

	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(comp.String(), func(t *testing.T) {
			framed, err := Compress(data, comp)
			require.NoError(t, err)
			assert.Equal(t, byte(comp), framed[0])
			if comp != CompressionNone {
				assert.Less(t, len(framed), len(data))
			}

			back, err := Decompress(framed)
			require.NoError(t, err)
			assert.Equal(t, data, back)
		})
	}
}

func TestCompressIncompressible(t *testing.T) {
	data := []byte("ab")
	framed, err := Compress(data, CompressionZSTD)
	require.NoError(t, err)
	assert.Equal(t, byte(CompressionNone), framed[0])

	back, err := Decompress(framed)
	require.NoError(t, err)
	assert.Equal(t, data, back)
}

func TestDecompressCorrupt(t *testing.T) {
	tests := map[string][]byte{
		"Short":        {0x01},
		"UnknownAlgo":  {0x09, 0x01, 0x00, 0x00, 0x00, 'x'},
		"SizeMismatch": {0x00, 0x05, 0x00, 0x00, 0x00, 'x'},
		"BadLZ4":       {0x01, 0x10, 0x00, 0x00, 0x00, 0xff, 0xff},
		"BadZSTD":      {0x02, 0x10, 0x00, 0x00, 0x00, 0x00, 0x01, 0x02},
		"TooLarge":     {0x00, 0xff, 0xff, 0xff, 0xff},
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decompress(in)
			assert.ErrorIs(t, err, ErrCorruptFrame)
		})
	}
}

func TestMustMarshal(t *testing.T) {
	assert.Equal(t, "null", string(MustMarshal(nil, value.Null())))
	assert.Panics(t, func() { MustMarshal(GoJSON{}, value.Float(math.Inf(1))) })
}
