package testutil

import (
	"math"
	"math/rand"
	"strconv"
	"sync"

	"github.com/hupe1980/docval/value"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Zipf returns a Zipfian-distributed value in [0, n).
// s=1.0 gives standard Zipf, larger s gives a heavier head.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// ValueOptions shapes the documents produced by RNG.Value.
type ValueOptions struct {
	// MaxDepth bounds container nesting. Zero yields scalars only.
	MaxDepth int
	// MaxWidth bounds the number of elements per container.
	MaxWidth int
	// MaxStringLen bounds string and key lengths in bytes.
	MaxStringLen int
	// NonFinite allows NaN and infinite floats.
	NonFinite bool
	// ASCII restricts strings to printable ASCII.
	ASCII bool
}

// DefaultValueOptions returns options suited for round-trip tests.
func DefaultValueOptions() ValueOptions {
	return ValueOptions{
		MaxDepth:     4,
		MaxWidth:     6,
		MaxStringLen: 16,
	}
}

// Value generates a random document. Container widths follow a Zipf
// distribution so that small containers dominate.
func (r *RNG) Value(opts ValueOptions) value.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.valueLocked(opts, opts.MaxDepth)
}

// Values generates num random documents.
func (r *RNG) Values(num int, opts ValueOptions) []value.Value {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]value.Value, num)
	for i := range out {
		out[i] = r.valueLocked(opts, opts.MaxDepth)
	}
	return out
}

func (r *RNG) valueLocked(opts ValueOptions, depth int) value.Value {
	kinds := 5
	if depth > 0 {
		kinds = 7
	}
	switch r.rand.Intn(kinds) {
	case 0:
		return value.Null()
	case 1:
		return value.Bool(r.rand.Intn(2) == 1)
	case 2:
		return value.Int(r.intLocked())
	case 3:
		return value.Float(r.floatLocked(opts))
	case 4:
		return value.String(r.stringLocked(opts))
	case 5:
		n := r.zipfLocked(opts.MaxWidth+1, 1.2)
		items := make([]value.Value, n)
		for i := range items {
			items[i] = r.valueLocked(opts, depth-1)
		}
		return value.List(items...)
	default:
		n := r.zipfLocked(opts.MaxWidth+1, 1.2)
		m := value.NewMap(n)
		for i := 0; i < n; i++ {
			m.Set(r.stringLocked(opts)+strconv.Itoa(i), r.valueLocked(opts, depth-1))
		}
		return value.FromMap(m)
	}
}

// intLocked spreads values across the encoding size classes.
func (r *RNG) intLocked() int64 {
	switch r.rand.Intn(4) {
	case 0:
		return int64(r.rand.Intn(256))
	case 1:
		return int64(r.rand.Intn(1<<17)) - 1<<16
	case 2:
		return int64(r.rand.Uint32()) - 1<<31
	default:
		return int64(r.rand.Uint64())
	}
}

func (r *RNG) floatLocked(opts ValueOptions) float64 {
	if opts.NonFinite && r.rand.Intn(8) == 0 {
		return []float64{math.NaN(), math.Inf(1), math.Inf(-1)}[r.rand.Intn(3)]
	}
	switch r.rand.Intn(3) {
	case 0:
		return float64(r.rand.Intn(2000)-1000) / 8
	case 1:
		return r.rand.NormFloat64() * 1e6
	default:
		return math.Float64frombits(r.rand.Uint64()&^(0x7FF<<52) | uint64(r.rand.Intn(0x7FE)+1)<<52)
	}
}

func (r *RNG) stringLocked(opts ValueOptions) string {
	n := 0
	if opts.MaxStringLen > 0 {
		n = r.rand.Intn(opts.MaxStringLen + 1)
	}
	b := make([]byte, n)
	for i := range b {
		if opts.ASCII {
			b[i] = byte(0x20 + r.rand.Intn(0x5F))
		} else {
			b[i] = byte(r.rand.Intn(256))
		}
	}
	return string(b)
}
