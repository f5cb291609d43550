package triklops

import (
	"math/rand/v2"
)

// Streams hands out deterministic random sub-streams keyed by position in
// the search: slot, generation and individual index. Two runs with the same
// seed draw identical values for the same key no matter which goroutine
// asks or in which order.
type Streams struct {
	seed uint64
}

// NewStreams derives all sub-streams from a single seed.
func NewStreams(seed uint64) Streams {
	return Streams{seed: seed}
}

// RandomSeed draws a seed from the runtime's entropy source.
func RandomSeed() uint64 {
	return rand.Uint64()
}

// Seed returns the seed the streams were derived from.
func (s Streams) Seed() uint64 {
	return s.seed
}

// For returns the generator owned by individual idx of generation gen in
// the given slot.
func (s Streams) For(slot, gen, idx int) *rand.Rand {
	key := mix(mix(mix(s.seed^uint64(slot)) ^ uint64(gen)) ^ uint64(idx))
	return rand.New(rand.NewPCG(s.seed, key))
}

// mix is the splitmix64 finalizer.
func mix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
