// Package pickle reads and writes the data subset of the Python pickle
// format.
//
// Parse runs the unpickling stack machine over protocol 0 to 5 data
// opcodes: scalars, byte and text strings, lists, tuples, dicts and the
// memo. Opcodes that would import or construct host objects (GLOBAL,
// REDUCE, BUILD and friends) are rejected with value.ErrUnsupportedOpcode.
//
// Serialize writes protocol 2, which Python 2.3 and later can read:
//
//	b, err := pickle.Serialize(value.Dict(value.M("a", value.Int(1))))
//
// Integers must fit in 64 bits. LONG payloads that exceed that range fail
// with value.ErrOverflow.
package pickle
