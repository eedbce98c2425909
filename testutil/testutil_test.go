package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/docval/value"
)

func TestValueDeterministic(t *testing.T) {
	rng := NewRNG(4711)
	v1 := rng.Values(16, DefaultValueOptions())

	rng.Reset()
	v2 := rng.Values(16, DefaultValueOptions())

	require.Len(t, v2, 16)
	for i := range v1 {
		assert.True(t, value.Equal(v1[i], v2[i]), "document %d", i)
	}
}

func TestValueScalarsOnly(t *testing.T) {
	rng := NewRNG(1)
	opts := DefaultValueOptions()
	opts.MaxDepth = 0

	for range 200 {
		v := rng.Value(opts)
		assert.False(t, v.IsContainer())
	}
}

func TestValueFinite(t *testing.T) {
	rng := NewRNG(7)
	for _, v := range rng.Values(500, ValueOptions{}) {
		if f, err := v.AsFloat(); err == nil && v.IsFloat() {
			assert.False(t, math.IsNaN(f) || math.IsInf(f, 0))
		}
	}
}

func TestValueASCII(t *testing.T) {
	rng := NewRNG(9)
	opts := ValueOptions{MaxStringLen: 32, ASCII: true}
	for _, v := range rng.Values(200, opts) {
		if s, err := v.AsString(); err == nil {
			for i := 0; i < len(s); i++ {
				assert.True(t, s[i] >= 0x20 && s[i] < 0x7F)
			}
		}
	}
}

func TestZipf(t *testing.T) {
	rng := NewRNG(4711)
	counts := make([]int, 5)
	for range 1000 {
		k := rng.Zipf(5, 1.5)
		require.True(t, k >= 0 && k < 5)
		counts[k]++
	}
	assert.Greater(t, counts[0], counts[4])
}
