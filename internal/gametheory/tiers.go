package gametheory

import (
	"fmt"
	"math"
)

// Tier names the three adoption tiers of the trust protocol. Each tier
// carries a fixed detection band and a stake-adjustment rule.
type Tier string

const (
	TierSolo      Tier = "solo"      // single agent, no strategic interaction
	TierBilateral Tier = "bilateral" // two counterparties with mutual attestation
	TierNetwork   Tier = "network"   // full network verification
)

// Detection floor/ceiling per tier. The bands match the claimed empirical
// detection ranges the Monte Carlo validator checks against.
const (
	SoloDetectionFloor        = 0.60
	SoloDetectionCeiling      = 0.70
	BilateralDetectionFloor   = 0.85
	BilateralDetectionCeiling = 0.95
	NetworkDetectionFloor     = 0.99
	NetworkDetectionCeiling   = 0.999
)

// TierAnalysis reports the equilibrium assessment for one tier.
type TierAnalysis struct {
	Tier                 Tier
	DetectionFloor       float64
	DetectionCeiling     float64
	EffectiveDetection   float64 // base rate clamped into the tier band
	AdjustedStake        float64
	HonestEquilibrium    bool // adjustedStake * effectiveDetection > breachGain
	GameTheoryApplicable bool // false for solo: no strategic interaction
	Derivation           string
}

// AnalyzeTier evaluates whether staking sustains honesty at a given tier.
//
// Stake adjustment: solo x1.0, bilateral x1.5, network x sqrt(participants).
// The base detection rate is clamped into the tier's [floor, ceiling] band.
func AnalyzeTier(tier Tier, baseDetectionRate, stake, breachGain float64, participants int) (TierAnalysis, error) {
	if err := checkProbability("baseDetectionRate", baseDetectionRate); err != nil {
		return TierAnalysis{}, err
	}
	if err := checkNonNegative("stake", stake); err != nil {
		return TierAnalysis{}, err
	}
	if err := checkNonNegative("breachGain", breachGain); err != nil {
		return TierAnalysis{}, err
	}
	if participants < 1 {
		return TierAnalysis{}, invalidf("participants must be >= 1, got %d", participants)
	}

	var floor, ceiling, stakeMultiplier float64
	switch tier {
	case TierSolo:
		floor, ceiling = SoloDetectionFloor, SoloDetectionCeiling
		stakeMultiplier = 1.0
	case TierBilateral:
		floor, ceiling = BilateralDetectionFloor, BilateralDetectionCeiling
		stakeMultiplier = 1.5
	case TierNetwork:
		floor, ceiling = NetworkDetectionFloor, NetworkDetectionCeiling
		stakeMultiplier = math.Sqrt(float64(participants))
	default:
		return TierAnalysis{}, invalidf("unknown tier %q", tier)
	}

	effectiveDetection := math.Min(ceiling, math.Max(floor, baseDetectionRate))
	adjustedStake := stake * stakeMultiplier

	return TierAnalysis{
		Tier:                 tier,
		DetectionFloor:       floor,
		DetectionCeiling:     ceiling,
		EffectiveDetection:   effectiveDetection,
		AdjustedStake:        adjustedStake,
		HonestEquilibrium:    adjustedStake*effectiveDetection > breachGain,
		GameTheoryApplicable: tier != TierSolo,
		Derivation: fmt.Sprintf(
			"tier %s: effective detection = clamp(%g, [%g, %g]) = %g; "+
				"adjusted stake = %g*%g = %g; honest iff %g*%g > %g",
			tier, baseDetectionRate, floor, ceiling, effectiveDetection,
			stake, stakeMultiplier, adjustedStake,
			adjustedStake, effectiveDetection, breachGain),
	}, nil
}
