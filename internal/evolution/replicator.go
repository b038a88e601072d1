package evolution

// ExtinctionThreshold is the population fraction below which a strategy is
// snapped to exactly 0 (and its complement to 1). Load-bearing: without
// the snap, floating-point residue keeps a dead strategy alive forever
// and convergence assertions never fire.
const ExtinctionThreshold = 1e-6

// EvolutionSimulationParams configures a discrete-time replicator run.
type EvolutionSimulationParams struct {
	InitialHonestFraction float64 // (0, 1)
	Payoffs               PayoffMatrix
	Generations           int // >= 1
}

// Validate checks every field against its documented range.
func (p EvolutionSimulationParams) Validate() error {
	if p.InitialHonestFraction <= 0 || p.InitialHonestFraction >= 1 {
		return invalidf("initialHonestFraction must be in (0, 1), got %g", p.InitialHonestFraction)
	}
	if p.Generations < 1 {
		return invalidf("generations must be >= 1, got %d", p.Generations)
	}
	return nil
}

// GenerationSnapshot records one generation of the simulation. Fractions
// are post-update; fitness values are those of the mix that produced the
// update, in the original (unshifted) payoff scale.
type GenerationSnapshot struct {
	Generation        int
	HonestFraction    float64
	DishonestFraction float64
	HonestFitness     float64
	DishonestFitness  float64
	AverageFitness    float64
}

// EvolutionSimulationResult is the full trajectory plus extinction flags.
type EvolutionSimulationResult struct {
	Snapshots            []GenerationSnapshot
	HonestExtinct        bool
	DishonestExtinct     bool
	ExtinctionGeneration int // first generation crossing the threshold; -1 if none
}

// SimulateReplicatorDynamics runs the discrete replicator update
// x_i(t+1) = x_i(t) * f_i(t) / fbar(t).
//
// The multiplicative update requires positive fitness, so payoffs are
// shifted internally by a constant making all four entries >= 1. The
// shift cancels out of fixed points and ordering; reported fitness values
// use the original payoffs.
func SimulateReplicatorDynamics(p EvolutionSimulationParams) (EvolutionSimulationResult, error) {
	if err := p.Validate(); err != nil {
		return EvolutionSimulationResult{}, err
	}

	shift := positivityShift(p.Payoffs[0][0], p.Payoffs[0][1], p.Payoffs[1][0], p.Payoffs[1][1])

	result := EvolutionSimulationResult{
		Snapshots:            make([]GenerationSnapshot, 0, p.Generations),
		ExtinctionGeneration: -1,
	}

	honest := p.InitialHonestFraction
	for gen := 1; gen <= p.Generations; gen++ {
		dishonest := 1 - honest

		honestFitness := honest*p.Payoffs[Honest][Honest] + dishonest*p.Payoffs[Honest][Dishonest]
		dishonestFitness := honest*p.Payoffs[Dishonest][Honest] + dishonest*p.Payoffs[Dishonest][Dishonest]
		averageFitness := honest*honestFitness + dishonest*dishonestFitness

		shiftedAverage := averageFitness + shift
		honest = honest * (honestFitness + shift) / shiftedAverage
		dishonest = 1 - honest

		// Snap vanishing fractions to exact extinction.
		if dishonest < ExtinctionThreshold {
			dishonest = 0
			honest = 1
			if !result.DishonestExtinct {
				result.DishonestExtinct = true
				if result.ExtinctionGeneration < 0 {
					result.ExtinctionGeneration = gen
				}
			}
		} else if honest < ExtinctionThreshold {
			honest = 0
			dishonest = 1
			if !result.HonestExtinct {
				result.HonestExtinct = true
				if result.ExtinctionGeneration < 0 {
					result.ExtinctionGeneration = gen
				}
			}
		}

		result.Snapshots = append(result.Snapshots, GenerationSnapshot{
			Generation:        gen,
			HonestFraction:    honest,
			DishonestFraction: dishonest,
			HonestFitness:     honestFitness,
			DishonestFitness:  dishonestFitness,
			AverageFitness:    averageFitness,
		})
	}

	return result, nil
}

// positivityShift returns the constant to add so every payoff is >= 1.
func positivityShift(payoffs ...float64) float64 {
	min := payoffs[0]
	for _, v := range payoffs[1:] {
		if v < min {
			min = v
		}
	}
	if min >= 1 {
		return 0
	}
	return 1 - min
}
