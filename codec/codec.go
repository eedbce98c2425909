// Package codec centralizes document encoding.
//
// Every codec maps a value.Value to bytes and back. Persisted documents do
// not record their codec, so the same codec (or one selected by the same
// name) must be used to read them back.
package codec

import (
	"fmt"
	"strings"

	"github.com/hupe1980/docval/value"
)

// Codec encodes/decodes documents.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v value.Value) ([]byte, error)
	Unmarshal(data []byte) (value.Value, error)
	Name() string
}

// Default is the default codec used by the library.
var Default Codec = JSON{}

// ByName returns a built-in codec by its stable name.
//
// Base names are "json", "json-strict", "json-pretty", "go-json",
// "go-jsonc", "cbor" and "pickle". A "+lz4" or "+zstd" suffix wraps the base codec in Compressed.
// "auto" selects Auto and takes no suffix.
func ByName(name string) (Codec, bool) {
	if name == "auto" {
		return Auto{}, true
	}
	base, suffix, compressed := strings.Cut(name, "+")

	var c Codec
	switch base {
	case "json":
		c = JSON{}
	case "json-strict":
		c = JSON{Strict: true}
	case "json-pretty":
		c = JSON{Format: true}
	case "go-json":
		c = GoJSON{}
	case "go-jsonc":
		c = GoJSON{Comments: true}
	case "cbor":
		c = CBOR{}
	case "pickle":
		c = Pickle{}
	default:
		return nil, false
	}
	if !compressed {
		return c, true
	}

	comp, ok := ParseCompression(suffix)
	if !ok || comp == CompressionNone {
		return nil, false
	}
	return Compressed{Inner: c, Compression: comp}, true
}

// Names lists the base codec names accepted by ByName.
func Names() []string {
	return []string{"json", "json-strict", "json-pretty", "go-json", "go-jsonc", "cbor", "pickle"}
}

// MustMarshal is a helper for internal tests/benchmarks.
func MustMarshal(c Codec, v value.Value) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
