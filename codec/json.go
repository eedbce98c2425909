package codec

import (
	"github.com/hupe1980/docval/text"
	"github.com/hupe1980/docval/value"
)

// JSON is the extended JSON text codec.
//
// Marshal writes standard JSON with UTF-8 bytes escaped as \u00HH. Unmarshal
// accepts the extended grammar (comments, trailing commas, hex integers)
// unless Strict is set.
type JSON struct {
	// Strict rejects the non-standard extensions on Unmarshal.
	Strict bool
	// Format pretty-prints with two-space indentation.
	Format bool
	// SortKeys writes dict keys in ascending order.
	SortKeys bool
}

func (c JSON) flags() text.Flags {
	var f text.Flags
	if c.Format {
		f |= text.Format
	}
	if c.SortKeys {
		f |= text.SortDictKeys
	}
	return f
}

// Marshal encodes the document as text.
func (c JSON) Marshal(v value.Value) ([]byte, error) { return text.Serialize(v, c.flags()), nil }

// Unmarshal decodes a single text document.
func (c JSON) Unmarshal(data []byte) (value.Value, error) { return text.Parse(data, c.Strict) }

// Name returns the unique name of the codec.
func (c JSON) Name() string {
	switch {
	case c.Strict:
		return "json-strict"
	case c.Format:
		return "json-pretty"
	default:
		return "json"
	}
}
