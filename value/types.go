package value

import (
	"strconv"
	"strings"
)

// Kind identifies the concrete type stored in a Value.
type Kind uint8

const (
	// KindNull represents a null value.
	KindNull Kind = iota
	// KindBool represents a boolean value.
	KindBool
	// KindInt represents a 64-bit signed integer value.
	KindInt
	// KindFloat represents a 64-bit IEEE float value.
	KindFloat
	// KindString represents a byte string value.
	KindString
	// KindList represents an ordered list of values.
	KindList
	// KindDict represents a string-keyed mapping of values.
	KindDict
)

// String returns the kind name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a dynamically typed document node.
//
// The zero Value is Null. Copying a Value is shallow: a List or Dict copy
// shares its children with the original. Use Clone for an independent tree.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	dict *Map
}

// Member is a single key/value pair used to build a Dict.
type Member struct {
	Key   string
	Value Value
}

// M returns a Member.
func M(key string, v Value) Member { return Member{Key: key, Value: v} }

// Null returns a null Value.
func Null() Value { return Value{} }

// Bool returns a boolean Value.
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int returns an int64 Value.
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float returns a float64 Value.
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// String returns a string Value. The string is treated as raw bytes.
func String(v string) Value { return Value{kind: KindString, s: v} }

// List returns a list Value holding items.
//
// A nil or empty argument list yields an empty (non-nil) list.
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, list: items}
}

// Dict returns a dict Value built from members.
// Later members overwrite earlier ones with the same key.
func Dict(members ...Member) Value {
	m := NewMap(len(members))
	for _, mb := range members {
		m.Set(mb.Key, mb.Value)
	}
	return Value{kind: KindDict, dict: m}
}

// FromMap returns a dict Value backed by m. A nil map yields an empty dict.
func FromMap(m *Map) Value {
	if m == nil {
		m = NewMap(0)
	}
	return Value{kind: KindDict, dict: m}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsBool reports whether v is a boolean.
func (v Value) IsBool() bool { return v.kind == KindBool }

// IsInt reports whether v is an integer.
func (v Value) IsInt() bool { return v.kind == KindInt }

// IsFloat reports whether v is a float.
func (v Value) IsFloat() bool { return v.kind == KindFloat }

// IsNumber reports whether v is an integer or a float.
func (v Value) IsNumber() bool { return v.kind == KindInt || v.kind == KindFloat }

// IsString reports whether v is a string.
func (v Value) IsString() bool { return v.kind == KindString }

// IsList reports whether v is a list.
func (v Value) IsList() bool { return v.kind == KindList }

// IsDict reports whether v is a dict.
func (v Value) IsDict() bool { return v.kind == KindDict }

// IsContainer reports whether v is a list or a dict.
func (v Value) IsContainer() bool { return v.kind == KindList || v.kind == KindDict }

// Clone returns a deep copy of v. The copy shares no List or Dict storage
// with v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindList:
		items := make([]Value, len(v.list))
		for i := range v.list {
			items[i] = v.list[i].Clone()
		}
		return Value{kind: KindList, list: items}
	case KindDict:
		return Value{kind: KindDict, dict: v.dict.Clone()}
	default:
		return v
	}
}

// String renders v in a compact, human readable form for debugging.
// It is not a serialization format; use the text package for that.
func (v Value) String() string {
	var sb strings.Builder
	v.debug(&sb)
	return sb.String()
}

func (v Value) debug(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
	case KindString:
		sb.WriteString(strconv.Quote(v.s))
	case KindList:
		sb.WriteByte('[')
		for i := range v.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			v.list[i].debug(sb)
		}
		sb.WriteByte(']')
	case KindDict:
		sb.WriteByte('{')
		for i, k := range v.dict.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Quote(k))
			sb.WriteString(": ")
			v.dict.m[k].debug(sb)
		}
		sb.WriteByte('}')
	}
}
