// Package evolution provides evolutionary-stability analysis and
// discrete-time replicator simulation for the honest/dishonest strategy
// pair, including a Byzantine-adversary variant with detection evasion.
//
// Strategy indices are fixed: 0 is honest, 1 is dishonest. Payoff
// matrices are indexed [rowStrategy][opponentStrategy].
package evolution

import (
	"fmt"
	"math"

	"agenttrust/internal/gametheory"
)

// NashEqualityTolerance is the band within which two payoffs are treated
// as equal when testing the strict-Nash condition. Load-bearing: the
// Bishop-Cannings fallback triggers only inside this band.
const NashEqualityTolerance = 1e-12

// Honest and Dishonest are the fixed strategy indices.
const (
	Honest    = 0
	Dishonest = 1
)

// PayoffMatrix is a 2x2 payoff table indexed [row][opponent].
type PayoffMatrix [2][2]float64

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", gametheory.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// ESSParameters configures the evolutionary-stability test of the honest
// strategy against a dishonest mutant.
type ESSParameters struct {
	PopulationSize int     // N, >= 2
	MutantFraction float64 // epsilon, in the open interval (0, 1)
	Payoffs        PayoffMatrix
}

// Validate checks every field against its documented range.
func (p ESSParameters) Validate() error {
	if p.PopulationSize < 2 {
		return invalidf("populationSize must be >= 2, got %d", p.PopulationSize)
	}
	if p.MutantFraction <= 0 || p.MutantFraction >= 1 {
		return invalidf("mutantFraction must be in (0, 1), got %g", p.MutantFraction)
	}
	return nil
}

// ESSResult reports the stability analysis.
type ESSResult struct {
	IsESS                         bool
	StrictNashCondition           bool    // E(h,h) > E(d,h)
	StabilityCondition            bool    // E(h,d) > E(d,d) (Bishop-Cannings)
	InvasionFitness               float64 // mutant minus honest fitness at the configured fraction
	CriticalMutantFraction        float64 // [0, 1]
	ExpectedExtinctionGenerations float64 // may be +Inf
	Derivation                    string
}

// AnalyzeESS tests whether the honest strategy is evolutionarily stable.
//
// Honest is an ESS when E(h,h) > E(d,h) strictly, or when the two are
// equal within NashEqualityTolerance and the Bishop-Cannings condition
// E(h,d) > E(d,d) holds.
func AnalyzeESS(p ESSParameters) (ESSResult, error) {
	if err := p.Validate(); err != nil {
		return ESSResult{}, err
	}

	hh := p.Payoffs[Honest][Honest]
	hd := p.Payoffs[Honest][Dishonest]
	dh := p.Payoffs[Dishonest][Honest]
	dd := p.Payoffs[Dishonest][Dishonest]

	nashDiff := hh - dh
	strictNash := nashDiff > NashEqualityTolerance
	nashEquality := math.Abs(nashDiff) <= NashEqualityTolerance
	stability := hd > dd

	invasion := invasionFitness(p.Payoffs, p.MutantFraction)
	critical := criticalMutantFraction(p.Payoffs)
	extinction := expectedExtinctionGenerations(p, invasion)

	return ESSResult{
		IsESS:                         strictNash || (nashEquality && stability),
		StrictNashCondition:           strictNash,
		StabilityCondition:            stability,
		InvasionFitness:               invasion,
		CriticalMutantFraction:        critical,
		ExpectedExtinctionGenerations: extinction,
		Derivation: fmt.Sprintf(
			"E(h,h)=%g E(h,d)=%g E(d,h)=%g E(d,d)=%g; strict Nash iff E(h,h) > E(d,h): %t; "+
				"Bishop-Cannings E(h,d) > E(d,d): %t; invasion fitness at eps=%g: %g; "+
				"critical mutant fraction: %g",
			hh, hd, dh, dd, strictNash, stability, p.MutantFraction, invasion, critical),
	}, nil
}

// invasionFitness returns mutant minus honest fitness at mutant fraction
// eps under linear mixing.
func invasionFitness(m PayoffMatrix, eps float64) float64 {
	honest := (1-eps)*m[Honest][Honest] + eps*m[Honest][Dishonest]
	mutant := (1-eps)*m[Dishonest][Honest] + eps*m[Dishonest][Dishonest]
	return mutant - honest
}

// criticalMutantFraction solves mutantFitness(eps) = honestFitness(eps).
//
// The fitness difference is linear in eps: a*(1-eps) + b*eps with
// a = E(d,h)-E(h,h) and b = E(d,d)-E(h,d). A near-zero linear coefficient
// means the difference never crosses zero: the root degenerates to 1 when
// honest strictly dominates and 0 otherwise. Interior roots are clamped
// to [0, 1].
func criticalMutantFraction(m PayoffMatrix) float64 {
	a := m[Dishonest][Honest] - m[Honest][Honest]
	b := m[Dishonest][Dishonest] - m[Honest][Dishonest]
	coeff := b - a

	if math.Abs(coeff) <= NashEqualityTolerance {
		if a < 0 {
			return 1
		}
		return 0
	}

	root := -a / coeff
	return math.Min(1, math.Max(0, root))
}

// expectedExtinctionGenerations estimates how long a mutant lineage
// persists, Wright-Fisher style: (1/s)*ln(max(1, N*eps)) with selection
// coefficient s = -invasionFitness/averageFitness. Neutral invasions
// report N generations; favorable mutants never go extinct (+Inf).
// Informational only.
func expectedExtinctionGenerations(p ESSParameters, invasion float64) float64 {
	if math.Abs(invasion) <= NashEqualityTolerance {
		return float64(p.PopulationSize)
	}
	if invasion > 0 {
		return math.Inf(1)
	}

	eps := p.MutantFraction
	honest := (1-eps)*p.Payoffs[Honest][Honest] + eps*p.Payoffs[Honest][Dishonest]
	mutant := (1-eps)*p.Payoffs[Dishonest][Honest] + eps*p.Payoffs[Dishonest][Dishonest]
	average := (1-eps)*honest + eps*mutant

	if average <= 0 {
		// Selection coefficient undefined for non-positive mean fitness.
		return math.Inf(1)
	}

	s := -invasion / average
	return (1 / s) * math.Log(math.Max(1, float64(p.PopulationSize)*eps))
}
