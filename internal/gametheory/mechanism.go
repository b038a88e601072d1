package gametheory

import (
	"fmt"
	"math"
)

// MechanismDesignResult reports the minimum penalty that makes honesty
// incentive-compatible.
type MechanismDesignResult struct {
	MinimumPenalty float64 // may be +Inf when no finite penalty works
	Enforceable    bool
	Derivation     string
}

// MinimumPenalty computes the smallest detected-breach penalty under which
// a rational agent prefers honesty.
//
// Edge policy: if the net gain from dishonesty is already <= 0, a zero
// penalty suffices. If detection is impossible and the net gain is
// positive, no finite penalty works.
func MinimumPenalty(dishonestGain, intrinsicHonestyCost, detectionProbability float64) (MechanismDesignResult, error) {
	if err := checkNonNegative("dishonestGain", dishonestGain); err != nil {
		return MechanismDesignResult{}, err
	}
	if err := checkNonNegative("intrinsicHonestyCost", intrinsicHonestyCost); err != nil {
		return MechanismDesignResult{}, err
	}
	if err := checkProbability("detectionProbability", detectionProbability); err != nil {
		return MechanismDesignResult{}, err
	}

	netGain := dishonestGain - intrinsicHonestyCost

	if netGain <= 0 {
		return MechanismDesignResult{
			MinimumPenalty: 0,
			Enforceable:    true,
			Derivation: fmt.Sprintf(
				"net gain = %g - %g = %g <= 0; honesty is already preferred, penalty 0 suffices",
				dishonestGain, intrinsicHonestyCost, netGain),
		}, nil
	}

	if detectionProbability == 0 {
		return MechanismDesignResult{
			MinimumPenalty: math.Inf(1),
			Enforceable:    false,
			Derivation: fmt.Sprintf(
				"net gain = %g > 0 with detection 0; no finite penalty deters an undetectable breach",
				netGain),
		}, nil
	}

	penalty := netGain / detectionProbability
	return MechanismDesignResult{
		MinimumPenalty: penalty,
		Enforceable:    true,
		Derivation: fmt.Sprintf(
			"penalty_min = max(0, %g - %g) / %g = %g",
			dishonestGain, intrinsicHonestyCost, detectionProbability, penalty),
	}, nil
}

// PrincipalAgentParams models an operator (principal) deciding how much to
// spend monitoring an autonomous agent.
type PrincipalAgentParams struct {
	BaseBreachRate          float64 // breach probability with no monitoring, [0, 1]
	MonitoringEffectiveness float64 // fraction of breaches prevented, [0, 1]
	BreachCost              float64 // loss per realized breach, >= 0
	MonitoringBudget        float64 // current monitoring spend, >= 0
	MonitoringUnitCost      float64 // spend at which effectiveness reaches 50%, > 0
	LiabilityExposure       float64 // loss ceiling the operator accepts, >= 0
}

// Validate checks every field against its documented range.
func (p PrincipalAgentParams) Validate() error {
	if err := checkProbability("baseBreachRate", p.BaseBreachRate); err != nil {
		return err
	}
	if err := checkProbability("monitoringEffectiveness", p.MonitoringEffectiveness); err != nil {
		return err
	}
	if err := checkNonNegative("breachCost", p.BreachCost); err != nil {
		return err
	}
	if err := checkNonNegative("monitoringBudget", p.MonitoringBudget); err != nil {
		return err
	}
	if err := checkPositive("monitoringUnitCost", p.MonitoringUnitCost); err != nil {
		return err
	}
	return checkNonNegative("liabilityExposure", p.LiabilityExposure)
}

// PrincipalAgentResult reports the operator cost model.
type PrincipalAgentResult struct {
	BreachProbability      float64
	ExpectedOperatorCost   float64
	OptimalMonitoringSpend float64
	IncentiveCompatible    bool
	Derivation             string
}

// AnalyzePrincipalAgent evaluates the operator's expected cost and the
// closed-form optimal monitoring spend.
//
// Effectiveness follows the diminishing-returns curve
// spend/(spend + unitCost); minimizing
// baseRate*(1 - eff(spend))*breachCost + spend gives
// spend* = max(0, sqrt(baseRate*breachCost*unitCost) - unitCost).
func AnalyzePrincipalAgent(p PrincipalAgentParams) (PrincipalAgentResult, error) {
	if err := p.Validate(); err != nil {
		return PrincipalAgentResult{}, err
	}

	breachProbability := p.BaseBreachRate * (1 - p.MonitoringEffectiveness)
	expectedCost := breachProbability*p.BreachCost + p.MonitoringBudget
	optimalSpend := math.Max(0, math.Sqrt(p.BaseBreachRate*p.BreachCost*p.MonitoringUnitCost)-p.MonitoringUnitCost)

	return PrincipalAgentResult{
		BreachProbability:      breachProbability,
		ExpectedOperatorCost:   expectedCost,
		OptimalMonitoringSpend: optimalSpend,
		IncentiveCompatible:    expectedCost < p.LiabilityExposure,
		Derivation: fmt.Sprintf(
			"breachProb = %g*(1-%g) = %g; expected cost = %g*%g + %g = %g; "+
				"spend* = max(0, sqrt(%g*%g*%g) - %g) = %g; IC iff cost < liability %g",
			p.BaseBreachRate, p.MonitoringEffectiveness, breachProbability,
			breachProbability, p.BreachCost, p.MonitoringBudget, expectedCost,
			p.BaseBreachRate, p.BreachCost, p.MonitoringUnitCost, p.MonitoringUnitCost,
			optimalSpend, p.LiabilityExposure),
	}, nil
}
