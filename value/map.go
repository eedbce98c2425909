package value

import (
	"iter"
	"slices"
)

// Map is a string-keyed mapping that remembers insertion order. The zero
// value is an empty map ready to use.
//
// Insertion order only affects iteration (and therefore default
// serialization order); it plays no part in equality.
type Map struct {
	keys []string
	m    map[string]Value
}

// NewMap returns an empty Map with room for size entries.
func NewMap(size int) *Map {
	return &Map{
		keys: make([]string, 0, size),
		m:    make(map[string]Value, size),
	}
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.m[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores v under key. An existing key keeps its position.
func (m *Map) Set(key string, v Value) {
	if m.m == nil {
		m.m = make(map[string]Value)
	}
	if _, ok := m.m[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.m[key] = v
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) bool {
	if _, ok := m.m[key]; !ok {
		return false
	}
	delete(m.m, key)
	if i := slices.Index(m.keys, key); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
	return true
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// SortedKeys returns the keys in ascending byte order.
func (m *Map) SortedKeys() []string {
	keys := m.Keys()
	slices.Sort(keys)
	return keys
}

// All iterates over the entries in insertion order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.m[k]) {
				return
			}
		}
	}
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	if m == nil {
		return NewMap(0)
	}
	c := NewMap(len(m.keys))
	for _, k := range m.keys {
		c.keys = append(c.keys, k)
		c.m[k] = m.m[k].Clone()
	}
	return c
}
