package pickle

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/hupe1980/docval/value"
)

// argKind describes the encoding of an opcode argument.
type argKind uint8

const (
	argNone argKind = iota
	argUint1
	argUint2
	argInt4
	argUint4
	argUint8
	argFloat8
	argLine
	argTwoLines
	argBytes1
	argBytes4
	argSignedBytes4
	argBytes8
)

var opArgs = map[Opcode]argKind{
	OpProto:           argUint1,
	OpFrame:           argUint8,
	OpInt:             argLine,
	OpBinInt:          argInt4,
	OpBinInt1:         argUint1,
	OpBinInt2:         argUint2,
	OpLong:            argLine,
	OpLong1:           argBytes1,
	OpLong4:           argSignedBytes4,
	OpFloat:           argLine,
	OpBinFloat:        argFloat8,
	OpString:          argLine,
	OpBinString:       argSignedBytes4,
	OpShortBinString:  argBytes1,
	OpUnicode:         argLine,
	OpBinUnicode:      argBytes4,
	OpShortBinUnicode: argBytes1,
	OpBinUnicode8:     argBytes8,
	OpBinBytes:        argBytes4,
	OpShortBinBytes:   argBytes1,
	OpBinBytes8:       argBytes8,
	OpByteArray8:      argBytes8,
	OpGet:             argLine,
	OpBinGet:          argUint1,
	OpLongBinGet:      argUint4,
	OpPut:             argLine,
	OpBinPut:          argUint1,
	OpLongBinPut:      argUint4,
	OpGlobal:          argTwoLines,
	OpInst:            argTwoLines,
	OpPersID:          argLine,
	OpExt1:            argUint1,
	OpExt2:            argUint2,
	OpExt4:            argInt4,
}

// arg is a decoded opcode argument. Which field is set depends on the
// opcode's argKind.
type arg struct {
	u uint64
	i int64
	f float64
	b []byte
}

// scanner reads opcodes and their raw arguments with bounds checking.
type scanner struct {
	data []byte
	pos  int
}

func (s *scanner) done() bool { return s.pos >= len(s.data) }

func (s *scanner) remaining() int { return len(s.data) - s.pos }

// next reads the opcode at the current position and its argument. It
// returns the offset of the opcode.
func (s *scanner) next() (Opcode, arg, int, error) {
	at := s.pos
	op := Opcode(s.data[s.pos])
	s.pos++
	if !op.Known() {
		return op, arg{}, at, value.NewParseError(at, "unknown opcode 0x%02x", byte(op))
	}
	a, err := s.arg(op, at)
	return op, a, at, err
}

func (s *scanner) take(op Opcode, at, n int) ([]byte, error) {
	if n < 0 || n > s.remaining() {
		return nil, value.WrapParseError(at, value.ErrUnexpectedEOF,
			"%s: need %d bytes, have %d", op, n, s.remaining())
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

func (s *scanner) line(op Opcode, at int) ([]byte, error) {
	i := bytes.IndexByte(s.data[s.pos:], '\n')
	if i < 0 {
		return nil, value.WrapParseError(at, value.ErrUnexpectedEOF, "%s: missing newline", op)
	}
	b := s.data[s.pos : s.pos+i]
	s.pos += i + 1
	return b, nil
}

func (s *scanner) arg(op Opcode, at int) (arg, error) {
	switch opArgs[op] {
	case argNone:
		return arg{}, nil
	case argUint1:
		b, err := s.take(op, at, 1)
		if err != nil {
			return arg{}, err
		}
		return arg{u: uint64(b[0])}, nil
	case argUint2:
		b, err := s.take(op, at, 2)
		if err != nil {
			return arg{}, err
		}
		return arg{u: uint64(binary.LittleEndian.Uint16(b))}, nil
	case argInt4:
		b, err := s.take(op, at, 4)
		if err != nil {
			return arg{}, err
		}
		return arg{i: int64(int32(binary.LittleEndian.Uint32(b)))}, nil
	case argUint4:
		b, err := s.take(op, at, 4)
		if err != nil {
			return arg{}, err
		}
		return arg{u: uint64(binary.LittleEndian.Uint32(b))}, nil
	case argUint8:
		b, err := s.take(op, at, 8)
		if err != nil {
			return arg{}, err
		}
		return arg{u: binary.LittleEndian.Uint64(b)}, nil
	case argFloat8:
		b, err := s.take(op, at, 8)
		if err != nil {
			return arg{}, err
		}
		return arg{f: math.Float64frombits(binary.BigEndian.Uint64(b))}, nil
	case argLine:
		b, err := s.line(op, at)
		return arg{b: b}, err
	case argTwoLines:
		first, err := s.line(op, at)
		if err != nil {
			return arg{}, err
		}
		second, err := s.line(op, at)
		if err != nil {
			return arg{}, err
		}
		// Joined with a space, the way pickletools shows them.
		b := make([]byte, 0, len(first)+1+len(second))
		b = append(append(append(b, first...), ' '), second...)
		return arg{b: b}, nil
	case argBytes1:
		n, err := s.take(op, at, 1)
		if err != nil {
			return arg{}, err
		}
		b, err := s.take(op, at, int(n[0]))
		return arg{b: b}, err
	case argBytes4, argSignedBytes4:
		n, err := s.take(op, at, 4)
		if err != nil {
			return arg{}, err
		}
		size := binary.LittleEndian.Uint32(n)
		if opArgs[op] == argSignedBytes4 && int32(size) < 0 {
			return arg{}, value.NewParseError(at, "%s: negative length %d", op, int32(size))
		}
		if uint64(size) > uint64(s.remaining()) {
			return arg{}, value.WrapParseError(at, value.ErrUnexpectedEOF,
				"%s: need %d bytes, have %d", op, size, s.remaining())
		}
		b, err := s.take(op, at, int(size))
		return arg{b: b}, err
	case argBytes8:
		n, err := s.take(op, at, 8)
		if err != nil {
			return arg{}, err
		}
		size := binary.LittleEndian.Uint64(n)
		if size > uint64(s.remaining()) {
			return arg{}, value.WrapParseError(at, value.ErrUnexpectedEOF,
				"%s: need %d bytes, have %d", op, size, s.remaining())
		}
		b, err := s.take(op, at, int(size))
		return arg{b: b}, err
	}
	return arg{}, nil
}
