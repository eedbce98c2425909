package text

import (
	"math"
	"strconv"
	"strings"

	"github.com/hupe1980/docval/escape"
	"github.com/hupe1980/docval/value"
)

// Flags controls Serialize. Flags combine independently.
type Flags uint32

const (
	// Format renders one container element per line, indented by two
	// spaces per level.
	Format Flags = 1 << iota
	// HexIntegers renders integers as 0x-prefixed hexadecimal.
	HexIntegers
	// OneCharacterTrivialConstants renders null, true and false as n, t and f.
	OneCharacterTrivialConstants
	// SortDictKeys renders dict keys in ascending byte order instead of
	// insertion order.
	SortDictKeys
	// EscapeControlsOnly selects escape.ModeControls for strings.
	EscapeControlsOnly
	// HexEscapes selects escape.ModeHex for strings.
	HexEscapes
)

// Mode returns the string escape mode selected by f.
func (f Flags) Mode() escape.Mode {
	switch {
	case f&EscapeControlsOnly != 0:
		return escape.ModeControls
	case f&HexEscapes != 0:
		return escape.ModeHex
	default:
		return escape.ModeAll
	}
}

// Serialize renders v as text.
//
// Output produced without HexIntegers, OneCharacterTrivialConstants and
// HexEscapes is standard JSON, except for non-finite floats, which render
// as NaN, Infinity and -Infinity and cannot be parsed back.
func Serialize(v value.Value, flags Flags) []byte {
	return Append(nil, v, flags)
}

// SerializeString is Serialize returning a string.
func SerializeString(v value.Value, flags Flags) string {
	return string(Serialize(v, flags))
}

// SerializeMode is Serialize with an explicit string escape mode, which
// overrides EscapeControlsOnly and HexEscapes.
func SerializeMode(v value.Value, flags Flags, mode escape.Mode) []byte {
	w := writer{flags: flags, mode: mode}
	return w.appendValue(nil, v, 0)
}

// Append appends the text rendering of v to dst.
func Append(dst []byte, v value.Value, flags Flags) []byte {
	w := writer{flags: flags, mode: flags.Mode()}
	return w.appendValue(dst, v, 0)
}

type writer struct {
	flags Flags
	mode  escape.Mode
}

func (w *writer) appendValue(dst []byte, v value.Value, indent int) []byte {
	switch v.Kind() {
	case value.KindNull:
		return w.appendConstant(dst, "null")
	case value.KindBool:
		b, _ := v.AsBool()
		if b {
			return w.appendConstant(dst, "true")
		}
		return w.appendConstant(dst, "false")
	case value.KindInt:
		i, _ := v.AsInt()
		return w.appendInt(dst, i)
	case value.KindFloat:
		f, _ := v.AsFloat()
		return appendFloat(dst, f)
	case value.KindString:
		s, _ := v.AsString()
		return escape.AppendQuoted(dst, s, w.mode)
	case value.KindList:
		items, _ := v.AsList()
		return w.appendList(dst, items, indent)
	case value.KindDict:
		m, _ := v.AsDict()
		return w.appendDict(dst, m, indent)
	}
	return dst
}

func (w *writer) appendConstant(dst []byte, word string) []byte {
	if w.flags&OneCharacterTrivialConstants != 0 {
		return append(dst, word[0])
	}
	return append(dst, word...)
}

func (w *writer) appendInt(dst []byte, i int64) []byte {
	if w.flags&HexIntegers == 0 {
		return strconv.AppendInt(dst, i, 10)
	}
	mag := uint64(i)
	if i < 0 {
		dst = append(dst, '-')
		mag = uint64(-i)
	}
	dst = append(dst, '0', 'x')
	return append(dst, strings.ToUpper(strconv.FormatUint(mag, 16))...)
}

// appendFloat writes the shortest decimal that round-trips, without an
// exponent, and always with a decimal point.
func appendFloat(dst []byte, f float64) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "NaN"...)
	case math.IsInf(f, 1):
		return append(dst, "Infinity"...)
	case math.IsInf(f, -1):
		return append(dst, "-Infinity"...)
	}
	start := len(dst)
	dst = strconv.AppendFloat(dst, f, 'f', -1, 64)
	for _, c := range dst[start:] {
		if c == '.' {
			return dst
		}
	}
	return append(dst, '.', '0')
}

func (w *writer) appendList(dst []byte, items []value.Value, indent int) []byte {
	if len(items) == 0 {
		return append(dst, '[', ']')
	}
	format := w.flags&Format != 0
	dst = append(dst, '[')
	for i, item := range items {
		if i > 0 {
			dst = append(dst, ',')
		}
		if format {
			dst = appendNewline(dst, indent+2)
		}
		dst = w.appendValue(dst, item, indent+2)
	}
	if format {
		dst = appendNewline(dst, indent)
	}
	return append(dst, ']')
}

func (w *writer) appendDict(dst []byte, m *value.Map, indent int) []byte {
	if m.Len() == 0 {
		return append(dst, '{', '}')
	}
	var keys []string
	if w.flags&SortDictKeys != 0 {
		keys = m.SortedKeys()
	} else {
		keys = m.Keys()
	}
	format := w.flags&Format != 0
	dst = append(dst, '{')
	for i, k := range keys {
		if i > 0 {
			dst = append(dst, ',')
		}
		if format {
			dst = appendNewline(dst, indent+2)
		}
		dst = escape.AppendQuoted(dst, k, w.mode)
		dst = append(dst, ':')
		if format {
			dst = append(dst, ' ')
		}
		item, _ := m.Get(k)
		dst = w.appendValue(dst, item, indent+2)
	}
	if format {
		dst = appendNewline(dst, indent)
	}
	return append(dst, '}')
}

func appendNewline(dst []byte, indent int) []byte {
	dst = append(dst, '\n')
	for range indent {
		dst = append(dst, ' ')
	}
	return dst
}
