package escape

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// u builds a backslash-u escape for the given hex digits.
func u(hex string) string { return `\` + "u" + hex }

func TestQuote(t *testing.T) {
	tests := []struct {
		name string
		in   string
		mode Mode
		want string
	}{
		{"Plain", "hello", ModeAll, `"hello"`},
		{"ShortEscapes", "a\"b\\c\n\t\r\b\f", ModeAll, `"a\"b\\c\n\t\r\b\f"`},
		{"SlashNotEscaped", "a/b", ModeAll, `"a/b"`},
		{"ControlAll", "\x01", ModeAll, `"\u0001"`},
		{"DeleteAll", "\x7f", ModeAll, `"\u007f"`},
		{"HighByteAll", "\xe9", ModeAll, `"` + u("00e9") + `"`},
		{"HighByteControls", "caf\xc3\xa9", ModeControls, "\"caf\xc3\xa9\""},
		{"ControlControls", "\x00", ModeControls, `"\u0000"`},
		{"HighByteHex", "\xe9\x01", ModeHex, `"\xe9\x01"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.in, tt.mode))
		})
	}
}

func TestUnescape(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		var all []byte
		for i := 0; i < 256; i++ {
			all = append(all, byte(i))
		}
		for _, mode := range []Mode{ModeAll, ModeControls, ModeHex} {
			q := Quote(string(all), mode)
			got, err := Unescape(q[1:len(q)-1], true)
			require.NoError(t, err, mode.String())
			assert.Equal(t, string(all), got, mode.String())
		}
	})

	t.Run("UnicodeWithinLatin1", func(t *testing.T) {
		got, err := Unescape(u("0041")+u("00ff"), false)
		require.NoError(t, err)
		assert.Equal(t, "A\xff", got)
	})

	t.Run("WideUnicodeRejected", func(t *testing.T) {
		_, err := Unescape("x"+u("0100"), false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrWideUnicode))

		var se *SyntaxError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, 1, se.Offset)
	})

	t.Run("HexNeedsPermission", func(t *testing.T) {
		_, err := Unescape(`\x41`, false)
		assert.Error(t, err)

		got, err := Unescape(`\x41`, true)
		require.NoError(t, err)
		assert.Equal(t, "A", got)
	})

	t.Run("Invalid", func(t *testing.T) {
		for _, in := range []string{`\q`, `\`, `\u12`, `\uzzzz`, `\x4`} {
			_, err := Unescape(in, true)
			assert.Error(t, err, in)
		}
	})
}

func TestControls(t *testing.T) {
	assert.Equal(t, `ab\n\x00\xff\\`, Controls([]byte("ab\n\x00\xff\\")))
	assert.Equal(t, "bcde", Snippet([]byte("abcdefg"), 3, 2))
}

func TestParseMode(t *testing.T) {
	for _, m := range []Mode{ModeAll, ModeControls, ModeHex} {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseMode("bogus")
	assert.Error(t, err)
}

func TestUnquotePython(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`'abc'`, "abc"},
		{`"it's"`, "it's"},
		{`'a\'b'`, "a'b"},
		{`'\x00\xff'`, "\x00\xff"},
		{`'\n\t\\'`, "\n\t\\"},
		{`'\101\0'`, "A\x00"},
		{`'\q'`, `\q`},
	}
	for _, tt := range tests {
		got, err := UnquotePython(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{`abc`, `'abc"`, `'`, `'\x4'`} {
		_, err := UnquotePython(bad)
		assert.Error(t, err, bad)
	}
}

func TestDecodeRawUnicode(t *testing.T) {
	got, err := DecodeRawUnicode([]byte("caf" + u("00e9")))
	require.NoError(t, err)
	assert.Equal(t, "caf\xc3\xa9", got)

	got, err = DecodeRawUnicode([]byte{'a', 0xe9})
	require.NoError(t, err)
	assert.Equal(t, "a\xc3\xa9", got)

	got, err = DecodeRawUnicode([]byte(`\U0001F600`))
	require.NoError(t, err)
	assert.Equal(t, "\U0001F600", got)

	got, err = DecodeRawUnicode([]byte(`\\u0041`))
	require.NoError(t, err)
	assert.Equal(t, `\\u0041`, got)

	_, err = DecodeRawUnicode([]byte(`\u12`))
	assert.Error(t, err)
}
