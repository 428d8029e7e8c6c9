package particle

// FastRand is a xorshift64 source; deterministic for a given seed
type FastRand struct {
	state uint64
}

// NewFastRand creates a source; zero seed is replaced since xorshift sticks at 0
func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// Float32 returns a value in [0,1)
func (r *FastRand) Float32() float32 {
	return float32(r.Next()>>40) / (1 << 24)
}

// Range returns a value in [lo,hi)
func (r *FastRand) Range(lo, hi float32) float32 {
	return lo + (hi-lo)*r.Float32()
}

// Signed returns a value in [-m,m)
func (r *FastRand) Signed(m float32) float32 {
	return (r.Float32()*2 - 1) * m
}
