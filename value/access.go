package value

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, error) {
	if v.kind != KindBool {
		return false, &TypeError{Want: KindBool, Got: v.kind}
	}
	return v.b, nil
}

// AsInt returns the integer payload. A Float is truncated toward zero;
// values outside the int64 range saturate.
func (v Value) AsInt() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindFloat:
		return truncFloat(v.f), nil
	default:
		return 0, &TypeError{Want: KindInt, Got: v.kind}
	}
}

// AsFloat returns the float payload. An Int is widened, which is exact up
// to 2^53 and rounds beyond that.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	default:
		return 0, &TypeError{Want: KindFloat, Got: v.kind}
	}
}

// AsString returns the string payload.
func (v Value) AsString() (string, error) {
	if v.kind != KindString {
		return "", &TypeError{Want: KindString, Got: v.kind}
	}
	return v.s, nil
}

// AsList returns the list items. The slice aliases v's storage.
func (v Value) AsList() ([]Value, error) {
	if v.kind != KindList {
		return nil, &TypeError{Want: KindList, Got: v.kind}
	}
	return v.list, nil
}

// AsDict returns the underlying map. The map aliases v's storage.
func (v Value) AsDict() (*Map, error) {
	if v.kind != KindDict {
		return nil, &TypeError{Want: KindDict, Got: v.kind}
	}
	return v.dict, nil
}

// Len returns the number of items in a List or entries in a Dict.
func (v Value) Len() (int, error) {
	switch v.kind {
	case KindList:
		return len(v.list), nil
	case KindDict:
		return v.dict.Len(), nil
	default:
		return 0, &TypeError{Got: v.kind, Op: "len"}
	}
}

// Empty reports whether a List or Dict has no entries.
func (v Value) Empty() (bool, error) {
	n, err := v.Len()
	if err != nil {
		return false, &TypeError{Got: v.kind, Op: "empty"}
	}
	return n == 0, nil
}

// Index returns the list item at i.
func (v Value) Index(i int) (Value, error) {
	if v.kind != KindList {
		return Value{}, &TypeError{Want: KindList, Got: v.kind, Op: "index"}
	}
	if i < 0 || i >= len(v.list) {
		return Value{}, &LookupError{Index: i, Len: len(v.list), IsIndex: true}
	}
	return v.list[i], nil
}

// Key returns the dict entry stored under key.
func (v Value) Key(key string) (Value, error) {
	if v.kind != KindDict {
		return Value{}, &TypeError{Want: KindDict, Got: v.kind, Op: "key lookup"}
	}
	item, ok := v.dict.Get(key)
	if !ok {
		return Value{}, &LookupError{Key: key}
	}
	return item, nil
}

// Append adds items to the end of a List.
func (v *Value) Append(items ...Value) error {
	if v.kind != KindList {
		return &TypeError{Want: KindList, Got: v.kind, Op: "append"}
	}
	v.list = append(v.list, items...)
	return nil
}

// Set stores item under key in a Dict.
func (v *Value) Set(key string, item Value) error {
	if v.kind != KindDict {
		return &TypeError{Want: KindDict, Got: v.kind, Op: "set"}
	}
	v.dict.Set(key, item)
	return nil
}

func truncFloat(f float64) int64 {
	switch {
	case f != f:
		return 0
	case f >= 9223372036854775807:
		return 9223372036854775807
	case f <= -9223372036854775808:
		return -9223372036854775808
	default:
		return int64(f)
	}
}
