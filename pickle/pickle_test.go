package pickle

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

func exampleDocument() value.Value {
	return value.Dict(
		value.M("a", value.Int(1)),
		value.M("b", value.List(value.Bool(true), value.Null(), value.Float(2.5))),
	)
}

func TestSerializeLayout(t *testing.T) {
	got, err := Serialize(exampleDocument())
	require.NoError(t, err)

	want := []byte("\x80\x02(U\x01aK\x01U\x01b(\x88NG@\x04\x00\x00\x00\x00\x00\x00ld.")
	assert.Equal(t, want, got)
}

func TestSerializeIntegers(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "K\x00"},
		{255, "K\xff"},
		{256, "M\x00\x01"},
		{65535, "M\xff\xff"},
		{65536, "J\x00\x00\x01\x00"},
		{-1, "J\xff\xff\xff\xff"},
		{-5000, "Jx\xec\xff\xff"},
		{2000000000, "J\x00\x945w"},
		{math.MinInt32, "J\x00\x00\x00\x80"},
		{3000000000, "\x8a\x05\x00^\xd0\xb2\x00"},
		{-2147483649, "\x8a\x05\xff\xff\xff\x7f\xff"},
		{9000000000000, "\x8a\x06\x00\x90\xcdy/\x08"},
		{math.MaxInt64, "\x8a\x08\xff\xff\xff\xff\xff\xff\xff\x7f"},
		{math.MinInt64, "\x8a\x08\x00\x00\x00\x00\x00\x00\x00\x80"},
	}

	for _, tt := range tests {
		got, err := Serialize(value.Int(tt.in))
		require.NoError(t, err)
		assert.Equal(t, "\x80\x02"+tt.want+".", string(got), "%d", tt.in)

		back, err := Parse(got)
		require.NoError(t, err)
		assert.True(t, value.Equal(value.Int(tt.in), back), "%d", tt.in)
	}
}

func TestSerializeScalars(t *testing.T) {
	tests := []struct {
		name string
		in   value.Value
		want string
	}{
		{"Null", value.Null(), "N"},
		{"True", value.Bool(true), "\x88"},
		{"False", value.Bool(false), "\x89"},
		{"Float", value.Float(-1), "G\xbf\xf0\x00\x00\x00\x00\x00\x00"},
		{"EmptyString", value.String(""), "U\x00"},
		{"EmptyList", value.List(), "]"},
		{"EmptyDict", value.Dict(), "}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Serialize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, "\x80\x02"+tt.want+".", string(got))
		})
	}
}

func TestSerializeLongString(t *testing.T) {
	s := strings.Repeat("x", 256)
	got, err := Serialize(value.String(s))
	require.NoError(t, err)
	assert.Equal(t, "\x80\x02T\x00\x01\x00\x00"+s+".", string(got))

	short := strings.Repeat("y", 255)
	got, err = Serialize(value.String(short))
	require.NoError(t, err)
	assert.Equal(t, "\x80\x02U\xff"+short+".", string(got))
}

func TestStringHeaderLimit(t *testing.T) {
	got, err := appendStringHeader(nil, math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, []byte{byte(OpBinString), 0xff, 0xff, 0xff, 0x7f}, got)

	_, err = appendStringHeader(nil, math.MaxInt32+1)
	assert.Error(t, err)
	_, err = appendStringHeader(nil, math.MaxUint32)
	assert.Error(t, err)
}

// nestedLists is depth EMPTY_LISTs folded into each other with APPEND.
func nestedLists(depth int) []byte {
	var b []byte
	b = append(b, bytes.Repeat([]byte{byte(OpEmptyList)}, depth)...)
	return append(b, bytes.Repeat([]byte{byte(OpAppend)}, depth-1)...)
}

func TestNestingLimit(t *testing.T) {
	t.Run("Append", func(t *testing.T) {
		v, err := Parse(append(nestedLists(value.MaxDepth), byte(OpStop)))
		require.NoError(t, err)
		_, err = Serialize(v)
		require.NoError(t, err)

		_, err = Parse(append(nestedLists(value.MaxDepth+1), byte(OpStop)))
		assert.ErrorIs(t, err, value.ErrTooDeep)
		assert.ErrorIs(t, err, value.ErrParse)
	})

	t.Run("Huge", func(t *testing.T) {
		_, err := Parse(append(nestedLists(1<<20), byte(OpStop)))
		assert.ErrorIs(t, err, value.ErrTooDeep)
	})

	t.Run("MarkList", func(t *testing.T) {
		in := append(bytes.Repeat([]byte{byte(OpMark)}, value.MaxDepth+1), byte(OpEmptyList))
		in = append(in, bytes.Repeat([]byte{byte(OpList)}, value.MaxDepth+1)...)
		_, err := Parse(append(in, byte(OpStop)))
		assert.ErrorIs(t, err, value.ErrTooDeep)
	})

	t.Run("MemoGet", func(t *testing.T) {
		in := nestedLists(value.MaxDepth)
		in = append(in, byte(OpBinPut), 0, byte(OpBinGet), 0, byte(OpTuple1), byte(OpStop))
		_, err := Parse(in)
		assert.ErrorIs(t, err, value.ErrTooDeep)
	})

	t.Run("Serialize", func(t *testing.T) {
		v := value.List()
		for range value.MaxDepth {
			v = value.List(v)
		}
		_, err := Serialize(v)
		assert.ErrorIs(t, err, value.ErrTooDeep)
	})
}

func TestParsePythonOutput(t *testing.T) {
	want := exampleDocument()
	tests := []struct {
		name string
		in   string
	}{
		{"Protocol2", "\x80\x02}q\x00(X\x01\x00\x00\x00aq\x01K\x01X\x01\x00\x00\x00bq\x02]q\x03(\x88NG@\x04\x00\x00\x00\x00\x00\x00eu."},
		{"Protocol4", "\x80\x04\x95\x1e\x00\x00\x00\x00\x00\x00\x00}\x94(\x8c\x01a\x94K\x01\x8c\x01b\x94]\x94(\x88NG@\x04\x00\x00\x00\x00\x00\x00eu."},
		{"Protocol0", "(dp0\nVa\np1\nI1\nsVb\np2\n(I01\nNF2.5\nlp3\ns."},
		{"SetItemsAndAppend", "}(U\x01aK\x01U\x01b]\x88aNaG@\x04\x00\x00\x00\x00\x00\x00au."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.in))
			require.NoError(t, err)
			assert.True(t, value.Equal(want, got), "got %s", got)
		})
	}
}

func TestParseScalars(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want value.Value
	}{
		{"IntFalse", "I00\n.", value.Bool(false)},
		{"IntTrue", "I01\n.", value.Bool(true)},
		{"Int", "I12\n.", value.Int(12)},
		{"NegativeInt", "I-7\n.", value.Int(-7)},
		{"Long", "L123L\n.", value.Int(123)},
		{"LongNoSuffix", "L-5\n.", value.Int(-5)},
		{"Float", "F2.5\n.", value.Float(2.5)},
		{"BinInt", "J\xff\xff\xff\xff.", value.Int(-1)},
		{"Long1Empty", "\x8a\x00.", value.Int(0)},
		{"Long1Negative", "\x8a\x01\xff.", value.Int(-1)},
		{"Long4", "\x8b\x02\x00\x00\x00\x00\x01.", value.Int(256)},
		{"Long1SignExtension", "\x8a\x09\x00\x00\x00\x00\x00\x00\x00\x80\xff.", value.Int(math.MinInt64)},
		{"String", "S'abc'\np0\n.", value.String("abc")},
		{"StringEscapes", "S'a\\x00\\n'\n.", value.String("a\x00\n")},
		{"Unicode", "Vcaf\xe9\np0\n.", value.String("caf\xc3\xa9")},
		{"BinUnicode", "X\x02\x00\x00\x00hi.", value.String("hi")},
		{"BinUnicode8", "\x8d\x02\x00\x00\x00\x00\x00\x00\x00hi.", value.String("hi")},
		{"BinBytes", "B\x02\x00\x00\x00\x00\xff.", value.String("\x00\xff")},
		{"ShortBinBytes", "C\x01z.", value.String("z")},
		{"BinBytes8", "\x8e\x01\x00\x00\x00\x00\x00\x00\x00z.", value.String("z")},
		{"ByteArray8", "\x96\x01\x00\x00\x00\x00\x00\x00\x00z.", value.String("z")},
		{"Tuple", "(K\x01K\x02t.", value.List(value.Int(1), value.Int(2))},
		{"EmptyTuple", ").", value.List()},
		{"Tuple1", "K\x01\x85.", value.List(value.Int(1))},
		{"Tuple3", "K\x01K\x02K\x03\x87.", value.List(value.Int(1), value.Int(2), value.Int(3))},
		{"Pop", "K\x01K\x020.", value.Int(1)},
		{"PopMark", "K\x01(K\x02K\x031.", value.Int(1)},
		{"PopEmptyMark", "K\x01(0.", value.Int(1)},
		{"Dup", "]2\x86.", value.List(value.List(), value.List())},
		{"MemoizeGet", "\x80\x04]\x94h\x00\x86.", value.List(value.List(), value.List())},
		{"LongBinPutGet", "K\x07r\x05\x00\x00\x00j\x05\x00\x00\x00\x86.", value.List(value.Int(7), value.Int(7))},
		{"PutGet", "K\x07p3\ng3\n\x86.", value.List(value.Int(7), value.Int(7))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.in))
			require.NoError(t, err)
			assert.True(t, value.Equal(tt.want, got), "got %s", got)
			assert.Equal(t, tt.want.Kind(), got.Kind())
		})
	}
}

func TestParseMemo(t *testing.T) {
	t.Run("SharedReference", func(t *testing.T) {
		// [l, l] with l = [1], as written by Python.
		got, err := Parse([]byte("\x80\x02]q\x00(]q\x01K\x01ah\x01e."))
		require.NoError(t, err)

		inner := value.List(value.Int(1))
		assert.True(t, value.Equal(value.List(inner, inner), got), "got %s", got)
	})

	t.Run("GetCopies", func(t *testing.T) {
		// Appending to the fetched copy leaves the memoized list alone.
		got, err := Parse([]byte("]q\x00h\x00K\x01a\x86."))
		require.NoError(t, err)
		assert.True(t, value.Equal(value.List(value.List(), value.List(value.Int(1))), got), "got %s", got)
	})

	t.Run("SeesLaterAppends", func(t *testing.T) {
		// The memo entry is stored before the list is filled.
		got, err := Parse([]byte("]q\x00K\x01ah\x00\x86."))
		require.NoError(t, err)
		one := value.List(value.Int(1))
		assert.True(t, value.Equal(value.List(one, one), got), "got %s", got)
	})

	t.Run("MissingIndex", func(t *testing.T) {
		_, err := Parse([]byte("h\x03."))
		require.Error(t, err)
		assert.True(t, errors.Is(err, value.ErrParse))
		assert.False(t, errors.Is(err, value.ErrNotFound))
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		offset int
		cause  error
	}{
		{"Empty", "", 0, value.ErrUnexpectedEOF},
		{"MissingStop", "\x80\x02N", 3, value.ErrUnexpectedEOF},
		{"TrailingData", "N.N", 2, value.ErrTrailingData},
		{"TwoItemsAtStop", "NN.", 2, nil},
		{"EmptyStackAtStop", ".", 0, nil},
		{"UnclosedMark", "(N.", 2, nil},
		{"UnknownOpcode", "\xff", 0, nil},
		{"Global", "\x80\x02c__builtin__\nset\n.", 2, value.ErrUnsupportedOpcode},
		{"Reduce", "NNR.", 2, value.ErrUnsupportedOpcode},
		{"StackGlobal", "\x93", 0, value.ErrUnsupportedOpcode},
		{"EmptySet", "\x8f.", 0, value.ErrUnsupportedOpcode},
		{"PersID", "Pid\n.", 0, value.ErrUnsupportedOpcode},
		{"TruncatedBinInt", "J\x01\x02", 0, value.ErrUnexpectedEOF},
		{"TruncatedBinString", "T\x05\x00\x00\x00ab", 0, value.ErrUnexpectedEOF},
		{"NegativeBinString", "T\xff\xff\xff\xff.", 0, nil},
		{"HugeBinBytes8", "\x8e\xff\xff\xff\xff\xff\xff\xff\xff", 0, value.ErrUnexpectedEOF},
		{"MissingNewline", "I12", 0, value.ErrUnexpectedEOF},
		{"BadInt", "Iabc\n.", 0, nil},
		{"IntOverflow", "I99999999999999999999\n.", 0, value.ErrOverflow},
		{"Long1Overflow", "\x8a\x09\x00\x00\x00\x00\x00\x00\x00\x00\x01.", 0, value.ErrOverflow},
		{"Long1SignMismatch", "\x8a\x09\xff\xff\xff\xff\xff\xff\xff\x7f\xff.", 0, value.ErrOverflow},
		{"TruncatedLong1", "\x8a\x04\x00", 0, value.ErrUnexpectedEOF},
		{"PopEmpty", "0", 0, nil},
		{"ListWithoutMark", "Nl.", 1, nil},
		{"AppendToDict", "}Na.", 2, nil},
		{"AppendUnderflow", "]a.", 1, nil},
		{"SetItemToList", "]U\x01aNs.", 5, nil},
		{"OddDict", "(U\x01ad.", 4, nil},
		{"NonStringKey", "(K\x01Nd.", 4, nil},
		{"TupleUnderflow", "N\x86.", 1, nil},
		{"AppendAcrossMark", "](Na.", 3, nil},
		{"BadProtocol", "\x80\x09N.", 0, nil},
		{"BadFrame", "\x95\xff\x00\x00\x00\x00\x00\x00\x00N.", 0, value.ErrUnexpectedEOF},
		{"BadString", "Sabc\n.", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			require.Error(t, err)

			var pe *value.ParseError
			require.True(t, errors.As(err, &pe), "%T", err)
			assert.Equal(t, tt.offset, pe.Offset, pe.Error())
			assert.True(t, errors.Is(err, value.ErrParse))
			if tt.cause != nil {
				assert.True(t, errors.Is(err, tt.cause), pe.Error())
			}
		})
	}
}

func TestUnknownOpcodeMessage(t *testing.T) {
	_, err := Parse([]byte{0xff})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown opcode 0xff")
	assert.False(t, errors.Is(err, value.ErrUnsupportedOpcode))
}

func TestRoundTrip(t *testing.T) {
	rng := testutil.NewRNG(4711)
	opts := testutil.DefaultValueOptions()
	opts.NonFinite = true

	for _, v := range rng.Values(300, opts) {
		data, err := Serialize(v)
		require.NoError(t, err)

		back, err := Parse(data)
		require.NoError(t, err)
		assertSameDocument(t, v, back)

		again, err := Serialize(back)
		require.NoError(t, err)
		assert.Equal(t, data, again)
	}
}

// assertSameDocument is value.Equal that also treats NaN as equal to NaN.
func assertSameDocument(t *testing.T, want, got value.Value) {
	t.Helper()
	a, err := Serialize(want)
	require.NoError(t, err)
	b, err := Serialize(got)
	require.NoError(t, err)
	require.True(t, bytes.Equal(a, b), "%s != %s", want, got)
}

func TestDisassemble(t *testing.T) {
	data, err := Serialize(exampleDocument())
	require.NoError(t, err)

	ins, err := Disassemble(data)
	require.NoError(t, err)

	var ops []string
	for _, in := range ins {
		ops = append(ops, in.Op.String())
	}
	assert.Equal(t, []string{
		"PROTO", "MARK", "SHORT_BINSTRING", "BININT1", "SHORT_BINSTRING",
		"MARK", "NEWTRUE", "NONE", "BINFLOAT", "LIST", "DICT", "STOP",
	}, ops)
	assert.Equal(t, "2", ins[0].Arg)
	assert.Equal(t, `"a"`, ins[2].Arg)
	assert.Equal(t, "2.5", ins[8].Arg)
	assert.Equal(t, 0, ins[0].Offset)
	assert.Equal(t, len(data)-1, ins[len(ins)-1].Offset)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf, data))
	assert.Contains(t, buf.String(), "BININT1")
	assert.Equal(t, len(ins), strings.Count(buf.String(), "\n"))
}

func TestDisassembleUnsupported(t *testing.T) {
	ins, err := Disassemble([]byte("c__builtin__\nset\n."))
	require.NoError(t, err)
	require.Len(t, ins, 2)
	assert.Equal(t, OpGlobal, ins[0].Op)
	assert.Equal(t, "__builtin__ set", ins[0].Arg)
	assert.True(t, ins[0].Op.Unsupported())
}

func TestOpcodeString(t *testing.T) {
	assert.Equal(t, "LONG1", OpLong1.String())
	assert.Equal(t, "UNKNOWN(0xff)", Opcode(0xff).String())
	assert.False(t, Opcode(0xff).Known())
	assert.False(t, OpList.Unsupported())
}

func FuzzParse(f *testing.F) {
	f.Add([]byte("\x80\x02(U\x01aK\x01U\x01b(\x88NG@\x04\x00\x00\x00\x00\x00\x00ld."))
	f.Add([]byte("\x80\x02]q\x00(]q\x01K\x01ah\x01e."))
	f.Add([]byte("(dp0\nVa\np1\nI1\ns."))

	f.Fuzz(func(t *testing.T, data []byte) {
		v, err := Parse(data)
		if err != nil {
			var pe *value.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("unexpected error type %T", err)
			}
			return
		}
		out, err := Serialize(v)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := Parse(out); err != nil {
			t.Fatalf("reparse: %v", err)
		}
	})
}

func BenchmarkSerialize(b *testing.B) {
	v := testutil.NewRNG(1).Value(testutil.DefaultValueOptions())
	b.ReportAllocs()
	for b.Loop() {
		_, _ = Serialize(v)
	}
}

func BenchmarkParse(b *testing.B) {
	data, _ := Serialize(testutil.NewRNG(1).Value(testutil.DefaultValueOptions()))
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		_, _ = Parse(data)
	}
}
