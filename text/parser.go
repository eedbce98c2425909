package text

import (
	"bytes"
	"errors"
	"math"
	"strconv"

	"github.com/hupe1980/docval/escape"
	"github.com/hupe1980/docval/value"
)

// Parse decodes a single document from data.
//
// With strict set, only standard JSON is accepted. Otherwise the parser also
// accepts // line comments, trailing commas, 0x-prefixed integers, a leading
// '+', \xHH escapes and the one-character literals n, t and f.
//
// Anything but whitespace and comments after the document is an error
// wrapping value.ErrTrailingData. Containers nested deeper than
// value.MaxDepth fail with value.ErrTooDeep.
func Parse(data []byte, strict bool) (value.Value, error) {
	p := parser{data: data, strict: strict}
	i, err := p.skip(0)
	if err != nil {
		return value.Value{}, err
	}
	v, i, err := p.parseValue(i)
	if err != nil {
		return value.Value{}, err
	}
	i, err = p.skip(i)
	if err != nil {
		return value.Value{}, err
	}
	if i < len(data) {
		return value.Value{}, value.WrapParseError(i, value.ErrTrailingData,
			"unexpected data after document: %q", escape.Snippet(data, i+8, 8))
	}
	return v, nil
}

// ParseString is Parse for a string input.
func ParseString(s string, strict bool) (value.Value, error) {
	return Parse([]byte(s), strict)
}

// ParsePrefix decodes the first document in data and returns the offset just
// past it, without checking what follows.
func ParsePrefix(data []byte, strict bool) (value.Value, int, error) {
	p := parser{data: data, strict: strict}
	i, err := p.skip(0)
	if err != nil {
		return value.Value{}, i, err
	}
	return p.parseValue(i)
}

type parser struct {
	data   []byte
	strict bool
	depth  int
}

// skip advances past whitespace and, outside strict mode, // comments.
func (p *parser) skip(i int) (int, error) {
	n := len(p.data)
	for i < n {
		switch c := p.data[i]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '/' && !p.strict:
			if i+1 >= n || p.data[i+1] != '/' {
				return i, value.NewParseError(i, "unexpected character '/'")
			}
			for i < n && p.data[i] != '\n' {
				i++
			}
		default:
			return i, nil
		}
	}
	return i, nil
}

func (p *parser) eof(i int, what string) error {
	return value.WrapParseError(i, value.ErrUnexpectedEOF, "unterminated %s", what)
}

func (p *parser) parseValue(i int) (value.Value, int, error) {
	if i >= len(p.data) {
		return value.Value{}, i, value.WrapParseError(i, value.ErrUnexpectedEOF, "unexpected end of input")
	}
	switch c := p.data[i]; c {
	case '{', '[':
		if p.depth >= value.MaxDepth {
			return value.Value{}, i, value.WrapParseError(i, value.ErrTooDeep,
				"containers nested deeper than %d levels", value.MaxDepth)
		}
		p.depth++
		defer func() { p.depth-- }()
		if c == '{' {
			return p.parseDict(i + 1)
		}
		return p.parseList(i + 1)
	case '"':
		s, end, err := p.parseString(i)
		if err != nil {
			return value.Value{}, end, err
		}
		return value.String(s), end, nil
	case 'n':
		return p.parseLiteral(i, "null", value.Null())
	case 't':
		return p.parseLiteral(i, "true", value.Bool(true))
	case 'f':
		return p.parseLiteral(i, "false", value.Bool(false))
	default:
		if c == '-' || c == '+' || (c >= '0' && c <= '9') {
			return p.parseNumber(i)
		}
		return value.Value{}, i, value.NewParseError(i, "unexpected character %q", c)
	}
}

func (p *parser) parseLiteral(i int, word string, v value.Value) (value.Value, int, error) {
	end := i + len(word)
	if end <= len(p.data) && string(p.data[i:end]) == word {
		return v, end, nil
	}
	if !p.strict {
		// One-character shorthand, e.g. "n" for null.
		return v, i + 1, nil
	}
	return value.Value{}, i, value.NewParseError(i, "invalid literal, expected %q", word)
}

// parseDict parses an object; i points just past '{'.
func (p *parser) parseDict(i int) (value.Value, int, error) {
	start := i - 1
	m := value.NewMap(0)
	i, err := p.skip(i)
	if err != nil {
		return value.Value{}, i, err
	}
	for {
		if i >= len(p.data) {
			return value.Value{}, i, p.eof(start, "dict")
		}
		if p.data[i] == '}' {
			return value.FromMap(m), i + 1, nil
		}
		if p.data[i] != '"' {
			if k, _, kerr := p.parseValue(i); kerr == nil {
				return value.Value{}, i, value.NewParseError(i, "dict key must be a string, got %s", k.Kind())
			}
			return value.Value{}, i, value.NewParseError(i, "expected dict key, got %q", p.data[i])
		}
		key, next, err := p.parseString(i)
		if err != nil {
			return value.Value{}, next, err
		}
		if i, err = p.skip(next); err != nil {
			return value.Value{}, i, err
		}
		if i >= len(p.data) {
			return value.Value{}, i, p.eof(start, "dict")
		}
		if p.data[i] != ':' {
			return value.Value{}, i, value.NewParseError(i, "key %q has no value: expected ':', got %q", key, p.data[i])
		}
		if i, err = p.skip(i + 1); err != nil {
			return value.Value{}, i, err
		}
		if i >= len(p.data) {
			return value.Value{}, i, p.eof(start, "dict")
		}
		if p.data[i] == ',' || p.data[i] == '}' {
			return value.Value{}, i, value.NewParseError(i, "key %q has no value", key)
		}
		item, next, err := p.parseValue(i)
		if err != nil {
			return value.Value{}, next, err
		}
		m.Set(key, item)

		if i, err = p.skip(next); err != nil {
			return value.Value{}, i, err
		}
		if i >= len(p.data) {
			return value.Value{}, i, p.eof(start, "dict")
		}
		switch p.data[i] {
		case '}':
			return value.FromMap(m), i + 1, nil
		case ',':
			if i, err = p.skip(i + 1); err != nil {
				return value.Value{}, i, err
			}
			if p.strict && i < len(p.data) && p.data[i] == '}' {
				return value.Value{}, i, value.NewParseError(i, "trailing comma in dict")
			}
		default:
			return value.Value{}, i, value.NewParseError(i, "expected ',' or '}' in dict, got %q", p.data[i])
		}
	}
}

// parseList parses an array; i points just past '['.
func (p *parser) parseList(i int) (value.Value, int, error) {
	start := i - 1
	items := []value.Value{}
	i, err := p.skip(i)
	if err != nil {
		return value.Value{}, i, err
	}
	for {
		if i >= len(p.data) {
			return value.Value{}, i, p.eof(start, "list")
		}
		if p.data[i] == ']' {
			return value.List(items...), i + 1, nil
		}
		item, next, err := p.parseValue(i)
		if err != nil {
			return value.Value{}, next, err
		}
		items = append(items, item)

		if i, err = p.skip(next); err != nil {
			return value.Value{}, i, err
		}
		if i >= len(p.data) {
			return value.Value{}, i, p.eof(start, "list")
		}
		switch p.data[i] {
		case ']':
			return value.List(items...), i + 1, nil
		case ',':
			if i, err = p.skip(i + 1); err != nil {
				return value.Value{}, i, err
			}
			if p.strict && i < len(p.data) && p.data[i] == ']' {
				return value.Value{}, i, value.NewParseError(i, "trailing comma in list")
			}
		default:
			return value.Value{}, i, value.NewParseError(i, "expected ',' or ']' in list, got %q", p.data[i])
		}
	}
}

// parseString parses a quoted string starting at data[i] == '"'. It returns
// the decoded bytes and the offset past the closing quote.
func (p *parser) parseString(i int) (string, int, error) {
	start := i
	i++
	n := len(p.data)
	// Fast path: no escapes.
	for j := i; j < n; j++ {
		c := p.data[j]
		if c == '"' {
			return string(p.data[i:j]), j + 1, nil
		}
		if c == '\\' || (c < 0x20 && p.strict) {
			break
		}
	}

	var buf []byte
	for i < n {
		c := p.data[i]
		switch {
		case c == '"':
			return string(buf), i + 1, nil
		case c < 0x20 && p.strict:
			return "", i, value.NewParseError(i, "control character 0x%02x in string", c)
		case c != '\\':
			buf = append(buf, c)
			i++
		default:
			// The escape is decoded against the remaining input.
			b, size, err := escape.UnescapeAt(string(p.data[i:min(n, i+6)]), 0, !p.strict)
			if err != nil {
				var se *escape.SyntaxError
				if errors.As(err, &se) && se.Err == nil && isTruncation(se) && !p.closed(i+1) {
					return "", i, p.eof(start, "string")
				}
				return "", i, value.WrapParseError(i, err, "%v", errMsg(err))
			}
			buf = append(buf, b)
			i += size
		}
	}
	return "", n, p.eof(start, "string")
}

// closed reports whether a closing quote follows offset i.
func (p *parser) closed(i int) bool {
	return i < len(p.data) && bytes.IndexByte(p.data[i:], '"') >= 0
}

func isTruncation(se *escape.SyntaxError) bool {
	switch se.Msg {
	case "unterminated escape sequence", "truncated \\x escape", "truncated \\u escape":
		return true
	}
	return false
}

func errMsg(err error) string {
	var se *escape.SyntaxError
	if errors.As(err, &se) {
		if se.Err != nil {
			return se.Err.Error()
		}
		return se.Msg
	}
	return err.Error()
}

// parseNumber parses an integer or float literal starting at data[i].
func (p *parser) parseNumber(i int) (value.Value, int, error) {
	start := i
	n := len(p.data)
	negative := false
	switch p.data[i] {
	case '-':
		negative = true
		i++
	case '+':
		if p.strict {
			return value.Value{}, i, value.NewParseError(i, "unexpected character '+'")
		}
		i++
	}

	if !p.strict && i+1 < n && p.data[i] == '0' && (p.data[i+1] == 'x' || p.data[i+1] == 'X') {
		return p.parseHex(start, i+2, negative)
	}

	digits := i
	for i < n && isDigit(p.data[i]) {
		i++
	}
	if i == digits {
		if i >= n {
			return value.Value{}, i, p.eof(start, "number")
		}
		return value.Value{}, i, value.NewParseError(i, "invalid number: expected digit, got %q", p.data[i])
	}
	if p.strict && p.data[digits] == '0' && i-digits > 1 {
		return value.Value{}, digits, value.NewParseError(digits, "invalid number: leading zero")
	}
	intEnd := i

	isFloat := false
	if i < n && p.data[i] == '.' {
		isFloat = true
		i++
		frac := i
		for i < n && isDigit(p.data[i]) {
			i++
		}
		if i == frac {
			return value.Value{}, i, value.NewParseError(i, "invalid number: missing digit after '.'")
		}
	}
	mantissaEnd := i

	exponent := 0
	hasExponent := false
	if i < n && (p.data[i] == 'e' || p.data[i] == 'E') {
		hasExponent = true
		i++
		expNegative := false
		if i < n && (p.data[i] == '+' || p.data[i] == '-') {
			expNegative = p.data[i] == '-'
			i++
		}
		expStart := i
		for i < n && isDigit(p.data[i]) {
			if exponent < 100000 {
				exponent = exponent*10 + int(p.data[i]-'0')
			}
			i++
		}
		if i == expStart {
			return value.Value{}, i, value.NewParseError(i, "invalid number: missing digit in exponent")
		}
		if expNegative {
			exponent = -exponent
		}
	}

	if !isFloat && !hasExponent {
		v, err := parseDecimalInt(p.data[digits:intEnd], negative)
		if err != nil {
			return value.Value{}, start, value.WrapParseError(start, value.ErrOverflow,
				"integer %s out of range", p.data[start:intEnd])
		}
		return value.Int(v), i, nil
	}

	f, err := strconv.ParseFloat(string(p.data[digits:mantissaEnd]), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return value.Value{}, start, value.NewParseError(start, "invalid number %q", p.data[start:i])
	}
	f = applyExponent(f, exponent)
	if negative {
		f = -f
	}
	return value.Float(f), i, nil
}

// applyExponent scales f by 10^exp one step at a time.
func applyExponent(f float64, exp int) float64 {
	for ; exp > 0; exp-- {
		f *= 10
		if math.IsInf(f, 0) {
			return f
		}
	}
	for ; exp < 0; exp++ {
		f /= 10
		if f == 0 {
			return f
		}
	}
	return f
}

func (p *parser) parseHex(start, i int, negative bool) (value.Value, int, error) {
	n := len(p.data)
	digits := i
	var mag uint64
	overflow := false
	for i < n {
		d, ok := hexValue(p.data[i])
		if !ok {
			break
		}
		if mag > math.MaxUint64>>4 {
			overflow = true
		}
		mag = mag<<4 | uint64(d)
		i++
	}
	if i == digits {
		return value.Value{}, i, value.NewParseError(i, "invalid hex integer: no digits")
	}
	v, ok := signedMagnitude(mag, negative)
	if overflow || !ok {
		return value.Value{}, start, value.WrapParseError(start, value.ErrOverflow,
			"integer %s out of range", p.data[start:i])
	}
	return value.Int(v), i, nil
}

func parseDecimalInt(digits []byte, negative bool) (int64, error) {
	var mag uint64
	for _, c := range digits {
		d := uint64(c - '0')
		if mag > (math.MaxUint64-d)/10 {
			return 0, value.ErrOverflow
		}
		mag = mag*10 + d
	}
	v, ok := signedMagnitude(mag, negative)
	if !ok {
		return 0, value.ErrOverflow
	}
	return v, nil
}

func signedMagnitude(mag uint64, negative bool) (int64, bool) {
	if negative {
		if mag > 1<<63 {
			return 0, false
		}
		return int64(-mag), true
	}
	if mag > math.MaxInt64 {
		return 0, false
	}
	return int64(mag), true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

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
