package pickle

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/hupe1980/docval/escape"
	"github.com/hupe1980/docval/value"
)

// Parse decodes a pickle stream holding exactly one object.
//
// Tuples decode as lists, and bytes, bytearray and str objects all decode
// as strings. Opcodes that reconstruct arbitrary objects fail with an error
// wrapping value.ErrUnsupportedOpcode, and lists or dicts nested deeper than
// value.MaxDepth with value.ErrTooDeep.
func Parse(data []byte) (value.Value, error) {
	m := machine{scanner: scanner{data: data}, memo: make(map[uint64]*node)}
	return m.run()
}

// machine holds the unpickler state.
//
// The memo references live stack nodes so that items appended after a PUT
// are visible to a later GET. GET pushes a deep copy, which keeps the
// result a tree.
type machine struct {
	scanner
	stack []*node
	marks []int
	memo  map[uint64]*node
}

// node is a stack entry. depth is the container nesting of v, 0 for
// scalars.
type node struct {
	v     value.Value
	depth int
}

func (m *machine) run() (value.Value, error) {
	for !m.done() {
		if op := Opcode(m.data[m.pos]); op.Unsupported() {
			return value.Value{}, value.WrapParseError(m.pos, value.ErrUnsupportedOpcode,
				"unsupported opcode %s", op)
		}
		op, a, at, err := m.next()
		if err != nil {
			return value.Value{}, err
		}
		if op == OpStop {
			return m.stop(at)
		}
		if err := m.exec(op, a, at); err != nil {
			return value.Value{}, err
		}
	}
	return value.Value{}, value.WrapParseError(len(m.data), value.ErrUnexpectedEOF, "missing STOP opcode")
}

func (m *machine) stop(at int) (value.Value, error) {
	if len(m.marks) != 0 {
		return value.Value{}, value.NewParseError(at, "STOP with %d unclosed marks", len(m.marks))
	}
	if len(m.stack) != 1 {
		return value.Value{}, value.NewParseError(at, "STOP with %d stack items, want 1", len(m.stack))
	}
	if !m.done() {
		return value.Value{}, value.WrapParseError(m.pos, value.ErrTrailingData,
			"%d bytes after STOP", m.remaining())
	}
	return m.stack[0].v, nil
}

func (m *machine) exec(op Opcode, a arg, at int) error {
	switch op {
	case OpProto:
		if a.u > HighestProtocol {
			return value.NewParseError(at, "unsupported protocol %d", a.u)
		}
	case OpFrame:
		if a.u > uint64(m.remaining()) {
			return value.WrapParseError(at, value.ErrUnexpectedEOF,
				"frame of %d bytes exceeds remaining %d", a.u, m.remaining())
		}
	case OpMark:
		m.marks = append(m.marks, len(m.stack))
	case OpPop:
		if m.avail() == 0 && len(m.marks) > 0 {
			m.marks = m.marks[:len(m.marks)-1]
			return nil
		}
		_, err := m.pop(op, at)
		return err
	case OpPopMark:
		_, err := m.popMark(op, at)
		return err
	case OpDup:
		top, err := m.top(op, at)
		if err != nil {
			return err
		}
		m.pushNode(top.v.Clone(), top.depth)

	case OpNone:
		m.push(value.Null())
	case OpNewTrue:
		m.push(value.Bool(true))
	case OpNewFalse:
		m.push(value.Bool(false))
	case OpInt:
		switch string(a.b) {
		case "00":
			m.push(value.Bool(false))
		case "01":
			m.push(value.Bool(true))
		default:
			i, err := parseDecimal(a.b, at, op)
			if err != nil {
				return err
			}
			m.push(value.Int(i))
		}
	case OpLong:
		i, err := parseDecimal(bytes.TrimSuffix(a.b, []byte("L")), at, op)
		if err != nil {
			return err
		}
		m.push(value.Int(i))
	case OpBinInt:
		m.push(value.Int(a.i))
	case OpBinInt1, OpBinInt2:
		m.push(value.Int(int64(a.u)))
	case OpLong1, OpLong4:
		i, err := decodeLong(a.b)
		if err != nil {
			return value.WrapParseError(at, err, "%s: %d byte integer does not fit in 64 bits", op, len(a.b))
		}
		m.push(value.Int(i))
	case OpFloat:
		f, err := strconv.ParseFloat(string(a.b), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return value.NewParseError(at, "%s: invalid float %q", op, a.b)
		}
		m.push(value.Float(f))
	case OpBinFloat:
		m.push(value.Float(a.f))

	case OpString:
		s, err := escape.UnquotePython(string(a.b))
		if err != nil {
			return value.WrapParseError(at, err, "%s: %v", op, err)
		}
		m.push(value.String(s))
	case OpUnicode:
		s, err := escape.DecodeRawUnicode(a.b)
		if err != nil {
			return value.WrapParseError(at, err, "%s: %v", op, err)
		}
		m.push(value.String(s))
	case OpBinString, OpShortBinString, OpBinUnicode, OpShortBinUnicode, OpBinUnicode8,
		OpBinBytes, OpShortBinBytes, OpBinBytes8, OpByteArray8:
		m.push(value.String(string(a.b)))

	case OpEmptyList, OpEmptyTuple:
		m.push(value.List())
	case OpEmptyDict:
		m.push(value.Dict())
	case OpList, OpTuple:
		items, err := m.popMark(op, at)
		if err != nil {
			return err
		}
		depth, err := nest(items, 0, op, at)
		if err != nil {
			return err
		}
		m.pushNode(value.List(deref(items)...), depth)
	case OpTuple1, OpTuple2, OpTuple3:
		n := int(op-OpTuple1) + 1
		if m.avail() < n {
			return m.underflow(op, at, n)
		}
		items := m.stack[len(m.stack)-n:]
		depth, err := nest(items, 0, op, at)
		if err != nil {
			return err
		}
		m.stack = m.stack[:len(m.stack)-n]
		m.pushNode(value.List(deref(items)...), depth)
	case OpDict:
		items, err := m.popMark(op, at)
		if err != nil {
			return err
		}
		d := &node{v: value.Dict(), depth: 1}
		if err := setItems(d, items, op, at); err != nil {
			return err
		}
		m.stack = append(m.stack, d)
	case OpAppend:
		if m.avail() < 2 {
			return m.underflow(op, at, 2)
		}
		item, _ := m.pop(op, at)
		target, _ := m.top(op, at)
		return appendItems(target, []*node{item}, op, at)
	case OpAppends:
		items, err := m.popMark(op, at)
		if err != nil {
			return err
		}
		target, err := m.top(op, at)
		if err != nil {
			return err
		}
		return appendItems(target, items, op, at)
	case OpSetItem:
		if m.avail() < 3 {
			return m.underflow(op, at, 3)
		}
		items := m.stack[len(m.stack)-2:]
		m.stack = m.stack[:len(m.stack)-2]
		target, _ := m.top(op, at)
		return setItems(target, items, op, at)
	case OpSetItems:
		items, err := m.popMark(op, at)
		if err != nil {
			return err
		}
		target, err := m.top(op, at)
		if err != nil {
			return err
		}
		return setItems(target, items, op, at)

	case OpPut, OpBinPut, OpLongBinPut, OpMemoize:
		top, err := m.top(op, at)
		if err != nil {
			return err
		}
		idx, err := memoIndex(op, a, at, uint64(len(m.memo)))
		if err != nil {
			return err
		}
		m.memo[idx] = top
	case OpGet, OpBinGet, OpLongBinGet:
		idx, err := memoIndex(op, a, at, 0)
		if err != nil {
			return err
		}
		n, ok := m.memo[idx]
		if !ok {
			return value.NewParseError(at, "%s: memo index %d is not set", op, idx)
		}
		m.pushNode(n.v.Clone(), n.depth)
	default:
		return value.NewParseError(at, "unknown opcode 0x%02x", byte(op))
	}
	return nil
}

func (m *machine) push(v value.Value) {
	depth := 0
	if v.IsList() || v.IsDict() {
		depth = 1
	}
	m.pushNode(v, depth)
}

func (m *machine) pushNode(v value.Value, depth int) {
	m.stack = append(m.stack, &node{v: v, depth: depth})
}

// avail is the number of stack items above the innermost mark.
func (m *machine) avail() int {
	if len(m.marks) == 0 {
		return len(m.stack)
	}
	return len(m.stack) - m.marks[len(m.marks)-1]
}

func (m *machine) underflow(op Opcode, at, need int) error {
	return value.NewParseError(at, "%s: stack underflow, need %d items, have %d", op, need, m.avail())
}

func (m *machine) pop(op Opcode, at int) (*node, error) {
	if m.avail() < 1 {
		return nil, m.underflow(op, at, 1)
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *machine) top(op Opcode, at int) (*node, error) {
	if m.avail() < 1 {
		return nil, m.underflow(op, at, 1)
	}
	return m.stack[len(m.stack)-1], nil
}

// popMark removes the innermost mark and returns the items above it.
func (m *machine) popMark(op Opcode, at int) ([]*node, error) {
	if len(m.marks) == 0 {
		return nil, value.NewParseError(at, "%s: no mark on the stack", op)
	}
	k := m.marks[len(m.marks)-1]
	m.marks = m.marks[:len(m.marks)-1]
	items := m.stack[k:]
	m.stack = m.stack[:k]
	return items, nil
}

func deref(items []*node) []value.Value {
	out := make([]value.Value, len(items))
	for i, n := range items {
		out[i] = n.v
	}
	return out
}

// nest returns the depth of a container holding items, which is at least
// floor, or an error wrapping value.ErrTooDeep past value.MaxDepth.
func nest(items []*node, floor int, op Opcode, at int) (int, error) {
	depth := max(floor, 1)
	for _, n := range items {
		depth = max(depth, n.depth+1)
	}
	if depth > value.MaxDepth {
		return 0, value.WrapParseError(at, value.ErrTooDeep,
			"%s: containers nested deeper than %d levels", op, value.MaxDepth)
	}
	return depth, nil
}

func appendItems(target *node, items []*node, op Opcode, at int) error {
	if !target.v.IsList() {
		return value.NewParseError(at, "%s: target is %s, not list", op, target.v.Kind())
	}
	depth, err := nest(items, target.depth, op, at)
	if err != nil {
		return err
	}
	if err := target.v.Append(deref(items)...); err != nil {
		return err
	}
	target.depth = depth
	return nil
}

func setItems(target *node, items []*node, op Opcode, at int) error {
	if !target.v.IsDict() {
		return value.NewParseError(at, "%s: target is %s, not dict", op, target.v.Kind())
	}
	if len(items)%2 != 0 {
		return value.NewParseError(at, "%s: odd number of items (%d) for key/value pairs", op, len(items))
	}
	depth, err := nest(items, target.depth, op, at)
	if err != nil {
		return err
	}
	for i := 0; i < len(items); i += 2 {
		key, err := items[i].v.AsString()
		if err != nil {
			return value.NewParseError(at, "%s: dict key must be a string, got %s", op, items[i].v.Kind())
		}
		if err := target.v.Set(key, items[i+1].v); err != nil {
			return err
		}
	}
	target.depth = depth
	return nil
}

func memoIndex(op Opcode, a arg, at int, next uint64) (uint64, error) {
	switch op {
	case OpMemoize:
		return next, nil
	case OpPut, OpGet:
		idx, err := strconv.ParseUint(string(a.b), 10, 64)
		if err != nil {
			return 0, value.NewParseError(at, "%s: invalid memo index %q", op, a.b)
		}
		return idx, nil
	default:
		return a.u, nil
	}
}

func parseDecimal(b []byte, at int, op Opcode) (int64, error) {
	i, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, value.WrapParseError(at, value.ErrOverflow, "%s: %s does not fit in 64 bits", op, b)
		}
		return 0, value.NewParseError(at, "%s: invalid integer %q", op, b)
	}
	return i, nil
}

// decodeLong decodes a little-endian two's-complement integer. Payloads
// longer than eight bytes are accepted when the extra bytes only extend
// the sign.
func decodeLong(b []byte) (int64, error) {
	n := len(b)
	if n == 0 {
		return 0, nil
	}
	if n > 8 {
		ext := byte(0)
		if b[n-1]&0x80 != 0 {
			ext = 0xFF
		}
		for _, c := range b[8:] {
			if c != ext {
				return 0, value.ErrOverflow
			}
		}
		if b[7]&0x80 != ext&0x80 {
			return 0, value.ErrOverflow
		}
		n = 8
	}
	var u uint64
	for i := n - 1; i >= 0; i-- {
		u = u<<8 | uint64(b[i])
	}
	if n < 8 && b[n-1]&0x80 != 0 {
		u |= ^uint64(0) << (8 * n)
	}
	return int64(u), nil
}
