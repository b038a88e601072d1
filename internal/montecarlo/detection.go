package montecarlo

import (
	"fmt"
	"math"

	"agenttrust/internal/gametheory"
)

// Per-layer catch probabilities of the detection pipeline. A violation is
// tested layer by layer until one catches it or the tier's layers are
// exhausted: runtime always runs; attestation runs at the bilateral and
// network tiers; the network layer runs five independent verifiers and
// detects if at least one succeeds.
const (
	RuntimeLayerRate     = 0.65
	AttestationLayerRate = 0.70
	NetworkVerifierCount = 5
	NetworkVerifierRate  = 0.50
)

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", gametheory.ErrInvalidInput, fmt.Sprintf(format, args...))
}

// DetectionValidationParams configures a Monte Carlo validation run.
type DetectionValidationParams struct {
	SimulationRuns       int     // >= 1
	AgentCount           int     // >= 1
	InteractionsPerAgent int     // >= 1
	ViolationProbability float64 // [0, 1]
	Seed                 uint64  // 0 selects DefaultSeed
}

// Validate checks every field against its documented range.
func (p DetectionValidationParams) Validate() error {
	if p.SimulationRuns < 1 {
		return invalidf("simulationRuns must be >= 1, got %d", p.SimulationRuns)
	}
	if p.AgentCount < 1 {
		return invalidf("agentCount must be >= 1, got %d", p.AgentCount)
	}
	if p.InteractionsPerAgent < 1 {
		return invalidf("interactionsPerAgent must be >= 1, got %d", p.InteractionsPerAgent)
	}
	if p.ViolationProbability < 0 || p.ViolationProbability > 1 {
		return invalidf("violationProbability must be in [0, 1], got %g", p.ViolationProbability)
	}
	return nil
}

// seedOrDefault resolves the effective seed.
func (p DetectionValidationParams) seedOrDefault() uint64 {
	if p.Seed == 0 {
		return DefaultSeed
	}
	return p.Seed
}

// TierValidationResult reports one tier's empirical detection rate against
// its claimed range.
type TierValidationResult struct {
	Tier               gametheory.Tier
	TotalViolations    int
	DetectedViolations int
	EmpiricalRate      float64
	ConfidenceLow      float64 // 95% Wilson interval
	ConfidenceHigh     float64
	ClaimedLow         float64
	ClaimedHigh        float64
	Passed             bool // CI overlaps the claimed range
}

// DetectionValidationResult aggregates all three tiers.
type DetectionValidationResult struct {
	Tiers     []TierValidationResult // solo, bilateral, network order
	AllPassed bool
	Seed      uint64 // effective seed used for the run
}

// validatedTiers is the fixed evaluation order with claimed bands.
var validatedTiers = []struct {
	tier      gametheory.Tier
	low, high float64
}{
	{gametheory.TierSolo, gametheory.SoloDetectionFloor, gametheory.SoloDetectionCeiling},
	{gametheory.TierBilateral, gametheory.BilateralDetectionFloor, gametheory.BilateralDetectionCeiling},
	{gametheory.TierNetwork, gametheory.NetworkDetectionFloor, gametheory.NetworkDetectionCeiling},
}

// ValidateDetectionRates empirically checks the layered pipeline against
// the claimed per-tier detection-rate ranges (solo 60-70%, bilateral
// 85-95%, network 99-99.9%).
//
// The generator is created fresh for the invocation and consumed across
// the three tiers in fixed order, so two calls with identical parameters
// and seed are bit-identical.
func ValidateDetectionRates(p DetectionValidationParams) (DetectionValidationResult, error) {
	if err := p.Validate(); err != nil {
		return DetectionValidationResult{}, err
	}

	seed := p.seedOrDefault()
	rng := newLCG(seed)
	interactions := p.SimulationRuns * p.AgentCount * p.InteractionsPerAgent

	result := DetectionValidationResult{
		Tiers:     make([]TierValidationResult, 0, len(validatedTiers)),
		AllPassed: true,
		Seed:      seed,
	}

	for _, vt := range validatedTiers {
		var total, detected int
		for i := 0; i < interactions; i++ {
			if rng.Float64() >= p.ViolationProbability {
				continue
			}
			total++
			if runLayers(rng, vt.tier) {
				detected++
			}
		}

		tr := summarizeTier(vt.tier, total, detected, vt.low, vt.high)
		result.AllPassed = result.AllPassed && tr.Passed
		result.Tiers = append(result.Tiers, tr)
	}

	return result, nil
}

// runLayers draws a violation through the tier's detection layers,
// stopping at the first catch.
func runLayers(rng *lcg, tier gametheory.Tier) bool {
	if rng.Float64() < RuntimeLayerRate {
		return true
	}
	if tier == gametheory.TierSolo {
		return false
	}
	if rng.Float64() < AttestationLayerRate {
		return true
	}
	if tier != gametheory.TierNetwork {
		return false
	}
	for v := 0; v < NetworkVerifierCount; v++ {
		if rng.Float64() < NetworkVerifierRate {
			return true
		}
	}
	return false
}

// summarizeTier builds the per-tier record with its Wilson interval and
// overlap verdict.
func summarizeTier(tier gametheory.Tier, total, detected int, claimedLow, claimedHigh float64) TierValidationResult {
	rate := 0.0
	if total > 0 {
		rate = float64(detected) / float64(total)
	}
	lo, hi := WilsonInterval(detected, total)

	return TierValidationResult{
		Tier:               tier,
		TotalViolations:    total,
		DetectedViolations: detected,
		EmpiricalRate:      rate,
		ConfidenceLow:      lo,
		ConfidenceHigh:     hi,
		ClaimedLow:         claimedLow,
		ClaimedHigh:        claimedHigh,
		Passed:             lo <= claimedHigh && hi >= claimedLow,
	}
}

// ExpectedTierRate returns the analytic detection probability of a tier's
// layer stack, used by reports to show the target the simulation should
// converge to.
func ExpectedTierRate(tier gametheory.Tier) float64 {
	miss := 1 - RuntimeLayerRate
	if tier == gametheory.TierSolo {
		return 1 - miss
	}
	miss *= 1 - AttestationLayerRate
	if tier == gametheory.TierBilateral {
		return 1 - miss
	}
	miss *= math.Pow(1-NetworkVerifierRate, NetworkVerifierCount)
	return 1 - miss
}
