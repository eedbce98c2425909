package codec

import (
	"bytes"

	"github.com/hupe1980/docval/value"
)

// Detect guesses the codec that produced data.
//
// Pickles are recognized by the PROTO opcode (0x80) or, for protocol 0 and
// 1 streams, by a final STOP ('.') after a first byte that cannot start
// text. Compressed frames start with an
// algorithm byte that text never starts with; their payload is detected
// recursively. Everything else is treated as JSON text. CBOR is never
// detected since its headers overlap the pickle opcodes.
func Detect(data []byte) Codec {
	if len(data) == 0 {
		return Default
	}
	switch first := data[0]; {
	case first == 0x80:
		return Pickle{}
	case first <= byte(CompressionZSTD):
		raw, err := decompress(data, DefaultMaxDecodedSize)
		if err != nil {
			// Not a frame; let the text parser report the error.
			return Default
		}
		return Compressed{Inner: Detect(raw), Compression: Compression(first)}
	}

	trimmed := bytes.TrimRight(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[len(trimmed)-1] == '.' && !startsText(data[0]) {
		return Pickle{}
	}
	return Default
}

// startsText reports whether c can begin an extended JSON document.
func startsText(c byte) bool {
	switch c {
	case '{', '[', '"', '-', '+', 'n', 't', 'f', '/', ' ', '\t', '\r', '\n':
		return true
	}
	return c >= '0' && c <= '9'
}

// Auto decodes any format Detect recognizes and encodes with Default.
//
// It is meant for reading stores that mix codecs, e.g. during a migration.
type Auto struct{}

// Marshal encodes v with Default.
func (Auto) Marshal(v value.Value) ([]byte, error) { return Default.Marshal(v) }

// Unmarshal decodes data with the detected codec.
func (Auto) Unmarshal(data []byte) (value.Value, error) { return Detect(data).Unmarshal(data) }

// Name returns "auto".
func (Auto) Name() string { return "auto" }
