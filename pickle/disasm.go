package pickle

import (
	"fmt"
	"io"
	"strconv"

	"github.com/hupe1980/docval/escape"
	"github.com/hupe1980/docval/value"
)

// Instruction is one decoded opcode of a pickle stream.
type Instruction struct {
	Offset int
	Op     Opcode
	// Arg is the rendered argument, empty for opcodes without one.
	Arg string
}

// String formats the instruction like pickletools.dis.
func (in Instruction) String() string {
	if in.Arg == "" {
		return fmt.Sprintf("%5d: %s", in.Offset, in.Op)
	}
	return fmt.Sprintf("%5d: %-16s %s", in.Offset, in.Op, in.Arg)
}

// Disassemble decodes the opcodes of data without executing them. Decoding
// stops after STOP; any bytes that follow are reported as trailing data.
// Object reconstruction opcodes are listed like any other opcode.
func Disassemble(data []byte) ([]Instruction, error) {
	s := scanner{data: data}
	var out []Instruction
	for !s.done() {
		op, a, at, err := s.next()
		if err != nil {
			return out, err
		}
		out = append(out, Instruction{Offset: at, Op: op, Arg: renderArg(op, a)})
		if op == OpStop {
			if !s.done() {
				return out, value.WrapParseError(s.pos, value.ErrTrailingData,
					"%d bytes after STOP", s.remaining())
			}
			return out, nil
		}
	}
	return out, value.WrapParseError(len(data), value.ErrUnexpectedEOF, "missing STOP opcode")
}

// Dump writes the disassembly of data to w, one instruction per line.
func Dump(w io.Writer, data []byte) error {
	ins, err := Disassemble(data)
	for _, in := range ins {
		if _, werr := fmt.Fprintln(w, in); werr != nil {
			return werr
		}
	}
	return err
}

func renderArg(op Opcode, a arg) string {
	switch opArgs[op] {
	case argNone:
		return ""
	case argUint1, argUint2, argUint4, argUint8:
		return strconv.FormatUint(a.u, 10)
	case argInt4:
		return strconv.FormatInt(a.i, 10)
	case argFloat8:
		return strconv.FormatFloat(a.f, 'g', -1, 64)
	case argLine, argTwoLines:
		return escape.Controls(a.b)
	}
	if op == OpLong1 || op == OpLong4 {
		if i, err := decodeLong(a.b); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return "long(" + escape.Controls(a.b) + ")"
	}
	return strconv.Quote(string(a.b))
}
