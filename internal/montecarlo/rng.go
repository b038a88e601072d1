// Package montecarlo validates the protocol's claimed per-tier detection
// rates by stochastic simulation of the layered detection pipeline, with
// Wilson-score confidence intervals and a Gaussian-copula variant for
// correlated layer failures.
package montecarlo

// DefaultSeed is used when a caller leaves the seed unset. Runs with the
// same seed are bit-identical by contract: test suites assert exact
// output for a fixed seed.
const DefaultSeed = 42

// lcg is a 32-bit linear congruential generator with explicit state.
// It is deliberately hand-specified rather than math/rand: the stream
// must stay bit-identical across Go versions, and the state is owned by
// one simulation run, never shared.
type lcg struct {
	state uint32
}

func newLCG(seed uint64) *lcg {
	if seed == 0 {
		seed = DefaultSeed
	}
	// Fold the high word in so seeds differing only above bit 31 still
	// produce distinct streams.
	return &lcg{state: uint32(seed ^ seed>>32)}
}

// next advances the generator: state = 1664525*state + 1013904223 mod 2^32.
func (g *lcg) next() uint32 {
	g.state = g.state*1664525 + 1013904223
	return g.state
}

// Float64 returns a uniform draw in [0, 1).
func (g *lcg) Float64() float64 {
	return float64(g.next()) / (1 << 32)
}
