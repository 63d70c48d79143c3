package ports

import (
	"math/rand"
)

// RNGFactory hands out independently seeded random streams. Stochastic
// components never touch process-wide RNG state; every draw comes from a
// stream obtained here, so a fixed base seed reproduces entire experiments.
type RNGFactory interface {
	// Stream returns a deterministic stream for a named operation.
	Stream(name string, seed int64) *rand.Rand
}

// SeededFactory derives stream seeds from a base seed and the operation name.
type SeededFactory struct {
	Base int64
}

// Stream mixes the base seed, the per-call seed and the name into one stream.
func (f SeededFactory) Stream(name string, seed int64) *rand.Rand {
	mixed := f.Base ^ seed
	for _, r := range name {
		mixed = mixed*31 + int64(r)
	}
	return rand.New(rand.NewSource(mixed))
}
