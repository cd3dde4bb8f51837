// Package dice provides the randomness abstraction used by the encounter simulation:
// strafe ranges, patience delays, attack cooldowns, attack variants and takeover rolls.
package dice

// Source is the randomness provider for every randomized combat decision.
//
// Implementations are not required to be safe for concurrent use; an Encounter owns its Source.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// Range returns a uniformly distributed value in [lo, hi).
//
// Precondition: src must be non-nil.
// Postcondition: Returns lo when hi <= lo.
func Range(src Source, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + src.Float64()*(hi-lo)
}

// Percent rolls a percentage chance.
//
// Postcondition: Returns true with probability chance/100; chance <= 0 never fires, chance >= 100 always fires.
func Percent(src Source, chance float64) bool {
	if chance <= 0 {
		return false
	}
	if chance >= 100 {
		return true
	}
	return src.Float64()*100 < chance
}

// Coin returns true or false with equal probability.
func Coin(src Source) bool {
	return src.Intn(2) == 0
}

// Pick returns a random element of options.
//
// Precondition: len(options) > 0.
func Pick[T any](src Source, options []T) T {
	return options[src.Intn(len(options))]
}
