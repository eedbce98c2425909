package value

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Value
		equal bool
	}{
		{"IntFloatCross", Int(3), Float(3.0), true},
		{"IntFloatFraction", Int(3), Float(3.5), false},
		{"BoolIsNotInt", Bool(true), Int(1), false},
		{"NullNull", Null(), Null(), true},
		{"NullFalse", Null(), Bool(false), false},
		{"Strings", String("a"), String("a"), true},
		{"DictOrderIgnored",
			Dict(M("a", Int(1)), M("b", Int(2))),
			Dict(M("b", Int(2)), M("a", Int(1))), true},
		{"DictDifferentKeys",
			Dict(M("a", Int(1))),
			Dict(M("b", Int(1))), false},
		{"DictNumericCross",
			Dict(M("a", Int(1))),
			Dict(M("a", Float(1))), true},
		{"ListOrderMatters", List(Int(1), Int(2)), List(Int(2), Int(1)), false},
		{"ListDeep",
			List(List(Int(1)), Dict(M("x", Null()))),
			List(List(Float(1)), Dict(M("x", Null()))), true},
		{"NaN", Float(math.NaN()), Float(math.NaN()), false},
		{"LargeIntNotRounded", Int(1<<53 + 1), Float(1 << 53), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, Equal(tt.a, tt.b))
			assert.Equal(t, tt.equal, Equal(tt.b, tt.a))
		})
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
		ok   bool
	}{
		{"IntLess", Int(1), Int(2), -1, true},
		{"IntFloatGreater", Int(3), Float(2.5), 1, true},
		{"FloatIntLess", Float(-2.5), Int(-2), -1, true},
		{"HugeFloat", Int(math.MaxInt64), Float(1e19), -1, true},
		{"TinyFloat", Int(math.MinInt64), Float(-1e19), 1, true},
		{"BoolOrder", Bool(false), Bool(true), -1, true},
		{"StringOrder", String("abc"), String("abd"), -1, true},
		{"ListPrefix", List(Int(1)), List(Int(1), Int(0)), -1, true},
		{"ListElement", List(Int(2)), List(Int(1), Int(9)), 1, true},
		{"ListUnorderedElement", List(String("a")), List(Int(1)), 0, false},
		{"CrossKind", String("1"), Int(1), 0, false},
		{"UnequalDicts", Dict(M("a", Int(1))), Dict(M("a", Int(2))), 0, false},
		{"NaN", Float(math.NaN()), Int(0), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Compare(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
