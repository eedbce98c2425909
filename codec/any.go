package codec

import (
	"fmt"
	"maps"
	"math"
	"slices"

	gojson "github.com/goccy/go-json"

	"github.com/hupe1980/docval/value"
)

// ToAny converts v to plain Go values: nil, bool, int64, float64, string,
// []any and map[string]any. Non-finite floats are rejected because JSON
// cannot represent them.
func ToAny(v value.Value) (any, error) {
	return toAny(v, false)
}

func toAny(v value.Value, nonFinite bool) (any, error) {
	switch v.Kind() {
	case value.KindNull:
		return nil, nil
	case value.KindBool:
		return v.AsBool()
	case value.KindInt:
		return v.AsInt()
	case value.KindFloat:
		f, _ := v.AsFloat()
		if !nonFinite && (math.IsNaN(f) || math.IsInf(f, 0)) {
			return nil, fmt.Errorf("codec: unsupported float value %v", f)
		}
		return f, nil
	case value.KindString:
		return v.AsString()
	case value.KindList:
		items, _ := v.AsList()
		out := make([]any, len(items))
		for i, item := range items {
			x, err := toAny(item, nonFinite)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case value.KindDict:
		m, _ := v.AsDict()
		out := make(map[string]any, m.Len())
		for k, item := range m.All() {
			x, err := toAny(item, nonFinite)
			if err != nil {
				return nil, err
			}
			out[k] = x
		}
		return out, nil
	}
	return nil, fmt.Errorf("codec: unknown kind %s", v.Kind())
}

// FromAny converts the result of a generic JSON or CBOR decode back into a
// document. Map keys are inserted in sorted order. Byte slices become
// strings.
func FromAny(x any) (value.Value, error) {
	switch t := x.(type) {
	case nil:
		return value.Null(), nil
	case bool:
		return value.Bool(t), nil
	case int:
		return value.Int(int64(t)), nil
	case int64:
		return value.Int(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return value.Value{}, value.WrapParseError(0, value.ErrOverflow, "integer %d out of range", t)
		}
		return value.Int(int64(t)), nil
	case float32:
		return value.Float(float64(t)), nil
	case float64:
		return value.Float(t), nil
	case string:
		return value.String(t), nil
	case []byte:
		return value.String(string(t)), nil
	case gojson.Number:
		return fromNumber(string(t))
	case []any:
		items := make([]value.Value, len(t))
		for i, item := range t {
			v, err := FromAny(item)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		return value.List(items...), nil
	case map[string]any:
		m := value.NewMap(len(t))
		for _, k := range slices.Sorted(maps.Keys(t)) {
			v, err := FromAny(t[k])
			if err != nil {
				return value.Value{}, err
			}
			m.Set(k, v)
		}
		return value.FromMap(m), nil
	}
	return value.Value{}, fmt.Errorf("codec: unsupported type %T", x)
}
