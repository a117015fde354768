package testutil

import "math/rand/v2"

// NewRand returns a PCG source seeded with seed, the same way the dataset
// generator seeds its sampler.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}
