package gametheory

import (
	"fmt"
	"math"
)

// HonestyParameters describes a single agent's stake-backed trust position.
//
// The expected cost of breaching is stake*detection + reputation + burn;
// honesty is a dominant strategy when that cost strictly exceeds the
// maximum gain obtainable by violating.
type HonestyParameters struct {
	Stake                float64 // collateral at risk, >= 0
	DetectionProbability float64 // probability a violation is caught, [0, 1]
	ReputationValue      float64 // discounted value of future reputation, >= 0
	MaxViolationGain     float64 // best payoff achievable by violating, >= 0
	Coburn               float64 // coordinated burn on detected breach, >= 0
}

// Validate checks every field against its documented range.
func (p HonestyParameters) Validate() error {
	if err := checkNonNegative("stake", p.Stake); err != nil {
		return err
	}
	if err := checkProbability("detectionProbability", p.DetectionProbability); err != nil {
		return err
	}
	if err := checkNonNegative("reputationValue", p.ReputationValue); err != nil {
		return err
	}
	if err := checkNonNegative("maxViolationGain", p.MaxViolationGain); err != nil {
		return err
	}
	return checkNonNegative("coburn", p.Coburn)
}

// HonestyProof is the result of the static dominance analysis.
type HonestyProof struct {
	IsDominantStrategy bool
	Margin             float64 // breach cost minus violation gain
	RequiredStake      float64 // minimum stake making honesty dominant (may be +Inf)
	RequiredDetection  float64 // minimum detection probability at the given stake
	Derivation         string
}

// ProveHonesty performs the single-shot dominance analysis.
//
// Margin exactly 0 is NOT dominant: ties are resolved in the adversary's
// favor so a proof never rests on an agent being indifferent.
func ProveHonesty(p HonestyParameters) (HonestyProof, error) {
	if err := p.Validate(); err != nil {
		return HonestyProof{}, err
	}

	cost := p.Stake*p.DetectionProbability + p.ReputationValue + p.Coburn
	margin := cost - p.MaxViolationGain

	requiredStake, err := MinimumStake(p.DetectionProbability, p.ReputationValue, p.MaxViolationGain, p.Coburn)
	if err != nil {
		return HonestyProof{}, err
	}
	requiredDetection, err := MinimumDetection(p.Stake, p.ReputationValue, p.MaxViolationGain, p.Coburn)
	if err != nil {
		return HonestyProof{}, err
	}

	proof := HonestyProof{
		IsDominantStrategy: margin > 0,
		Margin:             margin,
		RequiredStake:      requiredStake,
		RequiredDetection:  requiredDetection,
		Derivation: fmt.Sprintf(
			"breach cost = stake(%g)*detection(%g) + reputation(%g) + burn(%g) = %g; "+
				"margin = cost - maxGain(%g) = %g; dominant iff margin > 0",
			p.Stake, p.DetectionProbability, p.ReputationValue, p.Coburn,
			cost, p.MaxViolationGain, margin),
	}
	return proof, nil
}

// HonestyMargin returns breach cost minus maximum violation gain.
// Positive margin means honesty strictly dominates.
func HonestyMargin(p HonestyParameters) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	cost := p.Stake*p.DetectionProbability + p.ReputationValue + p.Coburn
	return cost - p.MaxViolationGain, nil
}

// ExpectedCostOfBreach returns the recoverable expected cost of a breach:
// stake*detection + burn. Reputation is excluded — it deters, but it is
// not a cost the protocol can seize.
func ExpectedCostOfBreach(p HonestyParameters) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	return p.Stake*p.DetectionProbability + p.Coburn, nil
}

// MinimumStake returns the smallest stake at which honesty becomes
// dominant given the other parameters.
//
// Division-by-zero policy: when detectionProbability is 0 no finite stake
// can compensate, so the result is +Inf.
func MinimumStake(detectionProbability, reputationValue, maxViolationGain, coburn float64) (float64, error) {
	if err := checkProbability("detectionProbability", detectionProbability); err != nil {
		return 0, err
	}
	if err := checkNonNegative("reputationValue", reputationValue); err != nil {
		return 0, err
	}
	if err := checkNonNegative("maxViolationGain", maxViolationGain); err != nil {
		return 0, err
	}
	if err := checkNonNegative("coburn", coburn); err != nil {
		return 0, err
	}

	if detectionProbability == 0 {
		return math.Inf(1), nil
	}
	return math.Max(0, (maxViolationGain-reputationValue-coburn)/detectionProbability), nil
}

// MinimumDetection returns the smallest detection probability at which
// honesty becomes dominant given the other parameters, clamped to [0, 1].
//
// When stake is 0 the result is 1: with nothing at risk only certain
// detection deters.
func MinimumDetection(stake, reputationValue, maxViolationGain, coburn float64) (float64, error) {
	if err := checkNonNegative("stake", stake); err != nil {
		return 0, err
	}
	if err := checkNonNegative("reputationValue", reputationValue); err != nil {
		return 0, err
	}
	if err := checkNonNegative("maxViolationGain", maxViolationGain); err != nil {
		return 0, err
	}
	if err := checkNonNegative("coburn", coburn); err != nil {
		return 0, err
	}

	if stake == 0 {
		return 1, nil
	}
	required := (maxViolationGain - reputationValue - coburn) / stake
	return math.Min(1, math.Max(0, required)), nil
}
