package escape

import (
	"fmt"
	"unicode/utf8"
)

// UnquotePython decodes a Python 2 str repr literal such as 'abc' or "a\x00".
// The result is raw bytes.
func UnquotePython(lit string) (string, error) {
	if len(lit) < 2 || (lit[0] != '\'' && lit[0] != '"') || lit[len(lit)-1] != lit[0] {
		return "", &SyntaxError{Offset: 0, Msg: "string literal is not quoted"}
	}
	body := lit[1 : len(lit)-1]
	buf := make([]byte, 0, len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			buf = append(buf, c)
			continue
		}
		i++
		if i >= len(body) {
			return "", &SyntaxError{Offset: i, Msg: "unterminated escape sequence"}
		}
		switch e := body[i]; e {
		case '\\', '\'', '"':
			buf = append(buf, e)
		case 'a':
			buf = append(buf, '\a')
		case 'b':
			buf = append(buf, '\b')
		case 'f':
			buf = append(buf, '\f')
		case 'n':
			buf = append(buf, '\n')
		case 'r':
			buf = append(buf, '\r')
		case 't':
			buf = append(buf, '\t')
		case 'v':
			buf = append(buf, '\v')
		case '\n':
			// line continuation
		case 'x':
			if i+3 > len(body) {
				return "", &SyntaxError{Offset: i, Msg: "truncated \\x escape"}
			}
			v, ok := parseHex(body[i+1 : i+3])
			if !ok {
				return "", &SyntaxError{Offset: i, Msg: fmt.Sprintf("invalid \\x escape %q", body[i-1:i+3])}
			}
			buf = append(buf, byte(v))
			i += 2
		default:
			if e < '0' || e > '7' {
				// Python keeps unknown escapes verbatim.
				buf = append(buf, '\\', e)
				continue
			}
			v := uint32(e - '0')
			for n := 1; n < 3 && i+1 < len(body) && body[i+1] >= '0' && body[i+1] <= '7'; n++ {
				i++
				v = v<<3 | uint32(body[i]-'0')
			}
			buf = append(buf, byte(v))
		}
	}
	return string(buf), nil
}

// DecodeRawUnicode decodes Python's raw-unicode-escape encoding. Bytes are
// read as Latin-1 code points, \uXXXX and \UXXXXXXXX are expanded, and the
// result is UTF-8.
func DecodeRawUnicode(b []byte) (string, error) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c == '\\' && i+1 < len(b) && (b[i+1] == 'u' || b[i+1] == 'U') {
			// An odd run of backslashes makes this one an escape.
			run := 0
			for j := i - 1; j >= 0 && b[j] == '\\'; j-- {
				run++
			}
			if run%2 == 0 {
				width := 4
				if b[i+1] == 'U' {
					width = 8
				}
				if i+2+width > len(b) {
					return "", &SyntaxError{Offset: i, Msg: "truncated unicode escape"}
				}
				v, ok := parseHex(string(b[i+2 : i+2+width]))
				if !ok || v > utf8.MaxRune {
					return "", &SyntaxError{Offset: i, Msg: fmt.Sprintf("invalid unicode escape %q", b[i:i+2+width])}
				}
				out = utf8.AppendRune(out, rune(v))
				i += 1 + width
				continue
			}
		}
		out = utf8.AppendRune(out, rune(c))
	}
	return string(out), nil
}
