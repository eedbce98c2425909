// Package escape implements the string escaping rules shared by the text
// codec, plus diagnostic and Python-literal helpers.
//
// Strings are treated as raw 8-bit data. A JSON \uHHHH escape decodes to the
// single byte HH and is only accepted for code points up to 0xFF; wider code
// points are rejected rather than re-encoded as UTF-8.
package escape

import (
	"errors"
	"fmt"
)

// Mode selects how bytes outside printable ASCII are written.
type Mode uint8

const (
	// ModeAll escapes every control byte and every byte >= 0x7F as \u00HH.
	ModeAll Mode = iota
	// ModeControls escapes control bytes only. Bytes >= 0x80 are written
	// verbatim.
	ModeControls
	// ModeHex behaves like ModeAll but writes \xHH instead of \u00HH.
	ModeHex
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeAll:
		return "all"
	case ModeControls:
		return "controls"
	case ModeHex:
		return "hex"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// ParseMode returns the Mode named by s.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "all", "":
		return ModeAll, nil
	case "controls":
		return ModeControls, nil
	case "hex":
		return ModeHex, nil
	default:
		return 0, fmt.Errorf("unknown escape mode %q", s)
	}
}

const hexDigits = "0123456789abcdef"

// AppendQuoted appends s as a double-quoted JSON string literal to dst.
func AppendQuoted(dst []byte, s string, mode Mode) []byte {
	dst = append(dst, '"')
	dst = AppendEscaped(dst, s, mode)
	return append(dst, '"')
}

// Quote returns s as a double-quoted JSON string literal.
func Quote(s string, mode Mode) string {
	return string(AppendQuoted(make([]byte, 0, len(s)+2), s, mode))
}

// AppendEscaped appends the escaped body of s (without quotes) to dst.
func AppendEscaped(dst []byte, s string, mode Mode) []byte {
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' && (c < 0x7F || (mode == ModeControls && c >= 0x80)) {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			if mode == ModeHex {
				dst = append(dst, '\\', 'x', hexDigits[c>>4], hexDigits[c&0xF])
			} else {
				dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0xF])
			}
		}
		start = i + 1
	}
	return append(dst, s[start:]...)
}

// ErrWideUnicode is returned for a \uHHHH escape above 0xFF.
var ErrWideUnicode = errors.New("unicode escape above \\u00ff is not supported")

// SyntaxError reports an invalid escape at Offset within the escaped body.
type SyntaxError struct {
	Offset int
	Msg    string
	Err    error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Unescape decodes the JSON escapes in body (the text between the quotes).
// allowHex enables the non-standard \xHH escape.
func Unescape(body string, allowHex bool) (string, error) {
	buf := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			buf = append(buf, c)
			continue
		}
		b, n, err := unescapeAt(body, i, allowHex)
		if err != nil {
			return "", err
		}
		buf = append(buf, b)
		i += n - 1
	}
	return string(buf), nil
}

// UnescapeAt decodes the single escape sequence starting at body[i] (which
// must be a backslash). It returns the decoded byte and the length of the
// sequence.
func UnescapeAt(body string, i int, allowHex bool) (byte, int, error) {
	return unescapeAt(body, i, allowHex)
}

func unescapeAt(body string, i int, allowHex bool) (byte, int, error) {
	if i+1 >= len(body) {
		return 0, 0, &SyntaxError{Offset: i, Msg: "unterminated escape sequence"}
	}
	switch body[i+1] {
	case '"', '\\', '/':
		return body[i+1], 2, nil
	case 'b':
		return '\b', 2, nil
	case 'f':
		return '\f', 2, nil
	case 'n':
		return '\n', 2, nil
	case 'r':
		return '\r', 2, nil
	case 't':
		return '\t', 2, nil
	case 'x':
		if !allowHex {
			return 0, 0, &SyntaxError{Offset: i, Msg: "\\x escape not allowed"}
		}
		if i+4 > len(body) {
			return 0, 0, &SyntaxError{Offset: i, Msg: "truncated \\x escape"}
		}
		v, ok := parseHex(body[i+2 : i+4])
		if !ok {
			return 0, 0, &SyntaxError{Offset: i, Msg: fmt.Sprintf("invalid \\x escape %q", body[i:i+4])}
		}
		return byte(v), 4, nil
	case 'u':
		if i+6 > len(body) {
			return 0, 0, &SyntaxError{Offset: i, Msg: "truncated \\u escape"}
		}
		v, ok := parseHex(body[i+2 : i+6])
		if !ok {
			return 0, 0, &SyntaxError{Offset: i, Msg: fmt.Sprintf("invalid \\u escape %q", body[i:i+6])}
		}
		if v > 0xFF {
			return 0, 0, &SyntaxError{Offset: i, Msg: fmt.Sprintf("escape %q", body[i:i+6]), Err: ErrWideUnicode}
		}
		return byte(v), 6, nil
	default:
		return 0, 0, &SyntaxError{Offset: i, Msg: fmt.Sprintf("invalid escape character %q", body[i+1])}
	}
}

func parseHex(s string) (uint32, bool) {
	var v uint32
	for i := 0; i < len(s); i++ {
		d, ok := hexValue(s[i])
		if !ok {
			return 0, false
		}
		v = v<<4 | uint32(d)
	}
	return v, true
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// Controls renders b for diagnostics: printable ASCII is kept, common
// control characters use their short escapes and anything else is written
// as \xHH.
func Controls(b []byte) string {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		switch {
		case c == '\\':
			out = append(out, '\\', '\\')
		case c == '\n':
			out = append(out, '\\', 'n')
		case c == '\r':
			out = append(out, '\\', 'r')
		case c == '\t':
			out = append(out, '\\', 't')
		case c >= 0x20 && c < 0x7F:
			out = append(out, c)
		default:
			out = append(out, '\\', 'x', hexDigits[c>>4], hexDigits[c&0xF])
		}
	}
	return string(out)
}

// Snippet returns an escaped window of data around offset for error
// messages.
func Snippet(data []byte, offset, radius int) string {
	start := max(0, offset-radius)
	end := min(len(data), offset+radius)
	if start > end {
		start = end
	}
	return Controls(data[start:end])
}
