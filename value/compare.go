package value

import (
	"math"
	"strings"
)

// Equal reports deep structural equality.
//
// Int and Float compare by numeric value. Dict equality ignores key order,
// List equality does not. Values of any other differing kinds are never
// equal.
func Equal(a, b Value) bool {
	c, ok := Compare(a, b)
	return ok && c == 0
}

// Equal reports whether v and other are structurally equal.
func (v Value) Equal(other Value) bool { return Equal(v, other) }

// Compare orders a and b. It returns -1, 0 or +1 and ok=true when the pair
// is ordered, and ok=false when it is not (different kinds other than
// Int/Float, NaN, or two unequal dicts).
func Compare(a, b Value) (int, bool) {
	if a.IsNumber() && b.IsNumber() {
		return compareNumbers(a, b)
	}
	if a.kind != b.kind {
		return 0, false
	}
	switch a.kind {
	case KindNull:
		return 0, true
	case KindBool:
		switch {
		case a.b == b.b:
			return 0, true
		case !a.b:
			return -1, true
		default:
			return 1, true
		}
	case KindString:
		return strings.Compare(a.s, b.s), true
	case KindList:
		n := min(len(a.list), len(b.list))
		for i := 0; i < n; i++ {
			c, ok := Compare(a.list[i], b.list[i])
			if !ok {
				return 0, false
			}
			if c != 0 {
				return c, true
			}
		}
		return cmpInt(len(a.list), len(b.list)), true
	case KindDict:
		if dictEqual(a.dict, b.dict) {
			return 0, true
		}
		return 0, false
	}
	return 0, false
}

func dictEqual(a, b *Map) bool {
	if a.Len() != b.Len() {
		return false
	}
	for k, av := range a.All() {
		bv, ok := b.Get(k)
		if !ok || !Equal(av, bv) {
			return false
		}
	}
	return true
}

func compareNumbers(a, b Value) (int, bool) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		return cmpInt64(a.i, b.i), true
	case a.kind == KindFloat && b.kind == KindFloat:
		if math.IsNaN(a.f) || math.IsNaN(b.f) {
			return 0, false
		}
		return cmpFloat(a.f, b.f), true
	case a.kind == KindInt:
		return compareIntFloat(a.i, b.f)
	default:
		c, ok := compareIntFloat(b.i, a.f)
		return -c, ok
	}
}

// compareIntFloat compares an integer with a float by exact value, without
// rounding the integer to the nearest representable float.
func compareIntFloat(i int64, f float64) (int, bool) {
	if math.IsNaN(f) {
		return 0, false
	}
	if f >= 0x1p63 {
		return -1, true
	}
	if f < -0x1p63 {
		return 1, true
	}
	t := math.Trunc(f)
	if c := cmpInt64(i, int64(t)); c != 0 {
		return c, true
	}
	return cmpFloat(0, f-t), true
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
