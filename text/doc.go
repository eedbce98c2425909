// Package text implements the extended JSON text format for value.Value.
//
// The grammar is JSON plus a few non-standard extensions that are enabled
// unless strict parsing is requested:
//
//   - // line comments wherever whitespace is allowed
//   - a trailing comma before } or ]
//   - 0x-prefixed hexadecimal integers and a leading '+'
//   - the one-character literals n, t and f
//   - \xHH byte escapes in strings
//
// Strings are byte strings. A \uHHHH escape is only accepted for code points
// up to 0xFF and decodes to that single byte.
//
// Serialization is controlled by Flags:
//
//	b := text.Serialize(v, text.Format|text.SortDictKeys)
package text
