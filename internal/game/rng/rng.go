// Package rng provides the seeded randomness primitives for battle
// resolution. Every draw is a pure function of an explicit seed value;
// there is no process-wide generator and no hidden state, so two runs
// with the same seed produce bit-identical results.
package rng

// splitmix64 finalizer constants.
const (
	gamma = 0x9E3779B97F4A7C15
	mix1  = 0xBF58476D1CE4E5B9
	mix2  = 0x94D049BB133111EB
)

// fnv-1a constants, used to fold salt material into derived seeds.
const (
	fnvOffset uint64 = 0xcbf29ce484222325
	fnvPrime  uint64 = 0x100000001b3
)

// Uniform returns a deterministic draw in [0, 1) for the given seed.
// The same seed always yields the same value.
//
// Postcondition: 0 <= result < 1.
func Uniform(seed uint64) float64 {
	z := seed + gamma
	z = (z ^ (z >> 30)) * mix1
	z = (z ^ (z >> 27)) * mix2
	z ^= z >> 31
	// 53 high bits give a uniform double in [0, 1).
	return float64(z>>11) / (1 << 53)
}

// Derive produces an independent sub-seed from a base seed, a call-site
// label, and any number of integer discriminators (round, turn index,
// path cell, ...). Distinct inputs produce distinct streams, so each
// draw site in the combat core owns its own deterministic sequence.
//
// Postcondition: Derive(s, site, ks...) is a pure function of its inputs.
func Derive(seed uint64, site string, ks ...int) uint64 {
	h := fnvOffset
	for i := 0; i < 8; i++ {
		h ^= (seed >> (8 * i)) & 0xff
		h *= fnvPrime
	}
	for i := 0; i < len(site); i++ {
		h ^= uint64(site[i])
		h *= fnvPrime
	}
	for _, k := range ks {
		u := uint64(int64(k))
		for i := 0; i < 8; i++ {
			h ^= (u >> (8 * i)) & 0xff
			h *= fnvPrime
		}
	}
	return h
}

// Roll reports whether a seeded draw succeeds against chance in [0, 1].
// chance <= 0 never succeeds; chance >= 1 always succeeds.
func Roll(seed uint64, chance float64) bool {
	return Uniform(seed) < chance
}
