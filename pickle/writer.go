package pickle

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/hupe1980/docval/value"
)

// Protocol is the protocol number written in the stream header.
const Protocol = 2

// maxStringLen is the largest string BINSTRING can frame. Readers take the
// length as a signed 32-bit integer.
const maxStringLen = math.MaxInt32

// Serialize encodes v as a protocol 2 pickle.
//
// Strings are written as byte strings (SHORT_BINSTRING or BINSTRING), so a
// Python 3 reader needs encoding="bytes" or "latin1" for non-ASCII data.
func Serialize(v value.Value) ([]byte, error) {
	return Append(make([]byte, 0, 64), v)
}

// Append appends the pickle encoding of v to dst.
func Append(dst []byte, v value.Value) ([]byte, error) {
	dst = append(dst, byte(OpProto), Protocol)
	dst, err := appendValue(dst, v, 0)
	if err != nil {
		return nil, err
	}
	return append(dst, byte(OpStop)), nil
}

func appendValue(dst []byte, v value.Value, depth int) ([]byte, error) {
	if (v.IsList() || v.IsDict()) && depth >= value.MaxDepth {
		return nil, fmt.Errorf("pickle: %w: containers nested deeper than %d levels", value.ErrTooDeep, value.MaxDepth)
	}
	switch v.Kind() {
	case value.KindNull:
		return append(dst, byte(OpNone)), nil
	case value.KindBool:
		b, _ := v.AsBool()
		if b {
			return append(dst, byte(OpNewTrue)), nil
		}
		return append(dst, byte(OpNewFalse)), nil
	case value.KindInt:
		i, _ := v.AsInt()
		return appendInt(dst, i), nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		dst = append(dst, byte(OpBinFloat))
		return binary.BigEndian.AppendUint64(dst, math.Float64bits(f)), nil
	case value.KindString:
		s, _ := v.AsString()
		return appendString(dst, s)
	case value.KindList:
		items, _ := v.AsList()
		if len(items) == 0 {
			return append(dst, byte(OpEmptyList)), nil
		}
		dst = append(dst, byte(OpMark))
		var err error
		for _, item := range items {
			if dst, err = appendValue(dst, item, depth+1); err != nil {
				return nil, err
			}
		}
		return append(dst, byte(OpList)), nil
	case value.KindDict:
		m, _ := v.AsDict()
		if m.Len() == 0 {
			return append(dst, byte(OpEmptyDict)), nil
		}
		dst = append(dst, byte(OpMark))
		var err error
		for k, item := range m.All() {
			if dst, err = appendString(dst, k); err != nil {
				return nil, err
			}
			if dst, err = appendValue(dst, item, depth+1); err != nil {
				return nil, err
			}
		}
		return append(dst, byte(OpDict)), nil
	}
	return nil, fmt.Errorf("pickle: cannot encode kind %s", v.Kind())
}

func appendString(dst []byte, s string) ([]byte, error) {
	dst, err := appendStringHeader(dst, uint64(len(s)))
	if err != nil {
		return nil, err
	}
	return append(dst, s...), nil
}

func appendStringHeader(dst []byte, n uint64) ([]byte, error) {
	switch {
	case n <= math.MaxUint8:
		return append(dst, byte(OpShortBinString), byte(n)), nil
	case n <= maxStringLen:
		dst = append(dst, byte(OpBinString))
		return binary.LittleEndian.AppendUint32(dst, uint32(n)), nil
	}
	return nil, fmt.Errorf("pickle: string of %d bytes exceeds the BINSTRING limit", n)
}

// appendInt picks the smallest opcode that holds i.
func appendInt(dst []byte, i int64) []byte {
	switch {
	case i >= 0 && i <= math.MaxUint8:
		return append(dst, byte(OpBinInt1), byte(i))
	case i >= 0 && i <= math.MaxUint16:
		dst = append(dst, byte(OpBinInt2))
		return binary.LittleEndian.AppendUint16(dst, uint16(i))
	case int64(int32(i)) == i:
		dst = append(dst, byte(OpBinInt))
		return binary.LittleEndian.AppendUint32(dst, uint32(int32(i)))
	}

	// LONG1 with a minimal two's-complement payload. The length byte is
	// patched once the payload is written.
	dst = append(dst, byte(OpLong1), 0)
	lenAt := len(dst) - 1
	n := 0
	for {
		b := byte(i)
		dst = append(dst, b)
		n++
		i >>= 8
		if (i == 0 && b&0x80 == 0) || (i == -1 && b&0x80 != 0) {
			break
		}
	}
	dst[lenAt] = byte(n)
	return dst
}
