package pickle

import "fmt"

// Opcode is a single pickle instruction byte.
type Opcode byte

// Data opcodes understood by the reader. Protocol numbers note the protocol
// that introduced each opcode.
const (
	OpMark           Opcode = '(' // push a mark onto the mark stack
	OpStop           Opcode = '.' // end of pickle
	OpPop            Opcode = '0' // discard the top stack item
	OpPopMark        Opcode = '1' // discard everything up to the top mark
	OpDup            Opcode = '2' // duplicate the top stack item
	OpFloat          Opcode = 'F' // newline-terminated decimal float
	OpInt            Opcode = 'I' // newline-terminated decimal int, "00"/"01" are bools
	OpBinInt         Opcode = 'J' // 4-byte signed little-endian int
	OpBinInt1        Opcode = 'K' // 1-byte unsigned int
	OpLong           Opcode = 'L' // newline-terminated decimal long with optional L suffix
	OpBinInt2        Opcode = 'M' // 2-byte unsigned little-endian int
	OpNone           Opcode = 'N'
	OpString         Opcode = 'S' // newline-terminated repr string
	OpBinString      Opcode = 'T' // 4-byte length-prefixed bytes
	OpShortBinString Opcode = 'U' // 1-byte length-prefixed bytes
	OpUnicode        Opcode = 'V' // newline-terminated raw-unicode-escape text
	OpBinUnicode     Opcode = 'X' // 4-byte length-prefixed UTF-8
	OpAppend         Opcode = 'a'
	OpEmptyDict      Opcode = '}'
	OpAppends        Opcode = 'e'
	OpGet            Opcode = 'g' // newline-terminated decimal memo index
	OpBinGet         Opcode = 'h'
	OpLongBinGet     Opcode = 'j'
	OpList           Opcode = 'l'
	OpEmptyList      Opcode = ']'
	OpPut            Opcode = 'p'
	OpBinPut         Opcode = 'q'
	OpLongBinPut     Opcode = 'r'
	OpSetItem        Opcode = 's'
	OpTuple          Opcode = 't'
	OpEmptyTuple     Opcode = ')'
	OpSetItems       Opcode = 'u'
	OpBinFloat       Opcode = 'G' // 8-byte big-endian IEEE 754 double
	OpDict           Opcode = 'd'

	// Protocol 2.
	OpProto    Opcode = 0x80
	OpTuple1   Opcode = 0x85
	OpTuple2   Opcode = 0x86
	OpTuple3   Opcode = 0x87
	OpNewTrue  Opcode = 0x88
	OpNewFalse Opcode = 0x89
	OpLong1    Opcode = 0x8a
	OpLong4    Opcode = 0x8b

	// Protocol 3.
	OpBinBytes      Opcode = 'B'
	OpShortBinBytes Opcode = 'C'

	// Protocol 4.
	OpShortBinUnicode Opcode = 0x8c
	OpBinUnicode8     Opcode = 0x8d
	OpBinBytes8       Opcode = 0x8e
	OpMemoize         Opcode = 0x94
	OpFrame           Opcode = 0x95

	// Protocol 5.
	OpByteArray8 Opcode = 0x96
)

// Object reconstruction opcodes. The reader rejects them.
const (
	OpGlobal         Opcode = 'c'
	OpReduce         Opcode = 'R'
	OpBuild          Opcode = 'b'
	OpInst           Opcode = 'i'
	OpObj            Opcode = 'o'
	OpPersID         Opcode = 'P'
	OpBinPersID      Opcode = 'Q'
	OpNewObj         Opcode = 0x81
	OpExt1           Opcode = 0x82
	OpExt2           Opcode = 0x83
	OpExt4           Opcode = 0x84
	OpEmptySet       Opcode = 0x8f
	OpAddItems       Opcode = 0x90
	OpFrozenSet      Opcode = 0x91
	OpNewObjEx       Opcode = 0x92
	OpStackGlobal    Opcode = 0x93
	OpNextBuffer     Opcode = 0x97
	OpReadonlyBuffer Opcode = 0x98
)

// HighestProtocol is the newest protocol whose data opcodes are supported.
const HighestProtocol = 5

var opNames = map[Opcode]string{
	OpMark:            "MARK",
	OpStop:            "STOP",
	OpPop:             "POP",
	OpPopMark:         "POP_MARK",
	OpDup:             "DUP",
	OpFloat:           "FLOAT",
	OpInt:             "INT",
	OpBinInt:          "BININT",
	OpBinInt1:         "BININT1",
	OpLong:            "LONG",
	OpBinInt2:         "BININT2",
	OpNone:            "NONE",
	OpString:          "STRING",
	OpBinString:       "BINSTRING",
	OpShortBinString:  "SHORT_BINSTRING",
	OpUnicode:         "UNICODE",
	OpBinUnicode:      "BINUNICODE",
	OpAppend:          "APPEND",
	OpEmptyDict:       "EMPTY_DICT",
	OpAppends:         "APPENDS",
	OpGet:             "GET",
	OpBinGet:          "BINGET",
	OpLongBinGet:      "LONG_BINGET",
	OpList:            "LIST",
	OpEmptyList:       "EMPTY_LIST",
	OpPut:             "PUT",
	OpBinPut:          "BINPUT",
	OpLongBinPut:      "LONG_BINPUT",
	OpSetItem:         "SETITEM",
	OpTuple:           "TUPLE",
	OpEmptyTuple:      "EMPTY_TUPLE",
	OpSetItems:        "SETITEMS",
	OpBinFloat:        "BINFLOAT",
	OpDict:            "DICT",
	OpProto:           "PROTO",
	OpTuple1:          "TUPLE1",
	OpTuple2:          "TUPLE2",
	OpTuple3:          "TUPLE3",
	OpNewTrue:         "NEWTRUE",
	OpNewFalse:        "NEWFALSE",
	OpLong1:           "LONG1",
	OpLong4:           "LONG4",
	OpBinBytes:        "BINBYTES",
	OpShortBinBytes:   "SHORT_BINBYTES",
	OpShortBinUnicode: "SHORT_BINUNICODE",
	OpBinUnicode8:     "BINUNICODE8",
	OpBinBytes8:       "BINBYTES8",
	OpMemoize:         "MEMOIZE",
	OpFrame:           "FRAME",
	OpByteArray8:      "BYTEARRAY8",
	OpGlobal:          "GLOBAL",
	OpReduce:          "REDUCE",
	OpBuild:           "BUILD",
	OpInst:            "INST",
	OpObj:             "OBJ",
	OpPersID:          "PERSID",
	OpBinPersID:       "BINPERSID",
	OpNewObj:          "NEWOBJ",
	OpExt1:            "EXT1",
	OpExt2:            "EXT2",
	OpExt4:            "EXT4",
	OpEmptySet:        "EMPTY_SET",
	OpAddItems:        "ADDITEMS",
	OpFrozenSet:       "FROZENSET",
	OpNewObjEx:        "NEWOBJ_EX",
	OpStackGlobal:     "STACK_GLOBAL",
	OpNextBuffer:      "NEXT_BUFFER",
	OpReadonlyBuffer:  "READONLY_BUFFER",
}

// String returns the pickletools name of the opcode.
func (op Opcode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(0x%02x)", byte(op))
}

// Known reports whether op is a defined pickle opcode.
func (op Opcode) Known() bool {
	_, ok := opNames[op]
	return ok
}

// Unsupported reports whether op reconstructs a host-language object.
func (op Opcode) Unsupported() bool {
	switch op {
	case OpGlobal, OpReduce, OpBuild, OpInst, OpObj, OpPersID, OpBinPersID,
		OpNewObj, OpExt1, OpExt2, OpExt4, OpEmptySet, OpAddItems, OpFrozenSet,
		OpNewObjEx, OpStackGlobal, OpNextBuffer, OpReadonlyBuffer:
		return true
	}
	return false
}
