package evolution

import "math"

// AdversaryStrategy selects how Byzantine agents deploy their detection
// evasion capability over the course of a run.
type AdversaryStrategy string

const (
	// StrategyRandom applies the configured capability as a constant.
	StrategyRandom AdversaryStrategy = "random"
	// StrategyStrategic scales evasion with the current Byzantine
	// population fraction, capped at 1: more adversaries pool more
	// evasion resources.
	StrategyStrategic AdversaryStrategy = "strategic"
	// StrategyAdaptive starts at 10% of capability and grows 2% per
	// generation, capped at the configured capability: models learning.
	StrategyAdaptive AdversaryStrategy = "adaptive"
)

// ByzantineAdversaryParams configures the evasion-adjusted replicator run.
type ByzantineAdversaryParams struct {
	InitialByzantineFraction float64 // (0, 1)
	Payoffs                  PayoffMatrix
	Generations              int     // >= 1
	BaseDetectionRate        float64 // [0, 1]
	EvasionCapability        float64 // [0, 1]
	Strategy                 AdversaryStrategy
}

// Validate checks every field against its documented range.
func (p ByzantineAdversaryParams) Validate() error {
	if p.InitialByzantineFraction <= 0 || p.InitialByzantineFraction >= 1 {
		return invalidf("initialByzantineFraction must be in (0, 1), got %g", p.InitialByzantineFraction)
	}
	if p.Generations < 1 {
		return invalidf("generations must be >= 1, got %d", p.Generations)
	}
	if p.BaseDetectionRate < 0 || p.BaseDetectionRate > 1 {
		return invalidf("baseDetectionRate must be in [0, 1], got %g", p.BaseDetectionRate)
	}
	if p.EvasionCapability < 0 || p.EvasionCapability > 1 {
		return invalidf("evasionCapability must be in [0, 1], got %g", p.EvasionCapability)
	}
	switch p.Strategy {
	case StrategyRandom, StrategyStrategic, StrategyAdaptive:
		return nil
	default:
		return invalidf("unknown adversary strategy %q", p.Strategy)
	}
}

// ByzantineSnapshot records one generation of the adversary simulation.
type ByzantineSnapshot struct {
	Generation         int
	HonestFraction     float64
	ByzantineFraction  float64
	HonestFitness      float64
	ByzantineFitness   float64
	Evasion            float64
	EffectiveDetection float64
}

// ByzantineSimulationResult is the trajectory plus the closed-form Nash
// equilibrium honest fraction at the initial evasion level.
type ByzantineSimulationResult struct {
	Snapshots                     []ByzantineSnapshot
	ByzantineExtinct              bool
	ExtinctionGeneration          int // first generation crossing the threshold; -1 if none
	NashEquilibriumHonestFraction float64
}

// SimulateByzantineAdversary runs replicator dynamics where the dishonest
// strategy carries a time-varying, strategy-dependent evasion term.
//
// Effective detection is baseRate*(1-evasion). A detected Byzantine
// agent's payoff is replaced by the fixed penalty -|E(dishonest,honest)|;
// undetected agents keep the standard dishonest payoff. Extinction uses
// the same threshold/snap rule as the plain replicator.
func SimulateByzantineAdversary(p ByzantineAdversaryParams) (ByzantineSimulationResult, error) {
	if err := p.Validate(); err != nil {
		return ByzantineSimulationResult{}, err
	}

	penalty := -math.Abs(p.Payoffs[Dishonest][Honest])
	shift := positivityShift(
		p.Payoffs[0][0], p.Payoffs[0][1], p.Payoffs[1][0], p.Payoffs[1][1], penalty)

	result := ByzantineSimulationResult{
		Snapshots:            make([]ByzantineSnapshot, 0, p.Generations),
		ExtinctionGeneration: -1,
	}

	byzantine := p.InitialByzantineFraction
	for gen := 1; gen <= p.Generations; gen++ {
		honest := 1 - byzantine
		evasion := currentEvasion(p.Strategy, p.EvasionCapability, byzantine, gen-1)
		detection := p.BaseDetectionRate * (1 - evasion)

		honestFitness := honest*p.Payoffs[Honest][Honest] + byzantine*p.Payoffs[Honest][Dishonest]
		undetected := honest*p.Payoffs[Dishonest][Honest] + byzantine*p.Payoffs[Dishonest][Dishonest]
		byzantineFitness := detection*penalty + (1-detection)*undetected

		// The shift is a constant on every base payoff, so it passes
		// through the detection expectation unchanged.
		shiftedAverage := honest*(honestFitness+shift) + byzantine*(byzantineFitness+shift)
		byzantine = byzantine * (byzantineFitness + shift) / shiftedAverage
		honest = 1 - byzantine

		if byzantine < ExtinctionThreshold {
			byzantine = 0
			honest = 1
			if !result.ByzantineExtinct {
				result.ByzantineExtinct = true
				result.ExtinctionGeneration = gen
			}
		}

		result.Snapshots = append(result.Snapshots, ByzantineSnapshot{
			Generation:         gen,
			HonestFraction:     honest,
			ByzantineFraction:  byzantine,
			HonestFitness:      honestFitness,
			ByzantineFitness:   byzantineFitness,
			Evasion:            evasion,
			EffectiveDetection: detection,
		})
	}

	result.NashEquilibriumHonestFraction = nashHonestFraction(p, penalty)
	return result, nil
}

// currentEvasion computes the evasion level for one generation.
//
// The adaptive formula multiplies capability by an already
// capability-scaled initial fraction plus the linear learning term, then
// re-clamps to capability. The double scaling is intentional and kept
// verbatim; it is asymmetric with the strategic variant on purpose.
func currentEvasion(strategy AdversaryStrategy, capability, byzantineFraction float64, elapsed int) float64 {
	switch strategy {
	case StrategyStrategic:
		return math.Min(1, capability*(1+byzantineFraction))
	case StrategyAdaptive:
		return math.Min(capability, capability*(0.1*capability+0.02*float64(elapsed)))
	default: // StrategyRandom
		return capability
	}
}

// nashHonestFraction solves honestFitness(h) = byzantineFitness(h) at the
// initial evasion level. The difference is linear in h; a near-zero slope
// degenerates to 0 or 1 by the sign of the intercept, matching the
// critical-mutant-fraction derivation.
func nashHonestFraction(p ByzantineAdversaryParams, penalty float64) float64 {
	evasion := currentEvasion(p.Strategy, p.EvasionCapability, p.InitialByzantineFraction, 0)
	detection := p.BaseDetectionRate * (1 - evasion)
	survive := 1 - detection

	// honestFitness(h) - byzantineFitness(h) = slope*h + intercept
	slope := (p.Payoffs[Honest][Honest] - survive*p.Payoffs[Dishonest][Honest]) -
		(p.Payoffs[Honest][Dishonest] - survive*p.Payoffs[Dishonest][Dishonest])
	intercept := p.Payoffs[Honest][Dishonest] - survive*p.Payoffs[Dishonest][Dishonest] - detection*penalty

	if math.Abs(slope) <= NashEqualityTolerance {
		if intercept > 0 {
			return 1
		}
		return 0
	}

	return math.Min(1, math.Max(0, -intercept/slope))
}
