package gametheory

import "fmt"

// RepeatedGameParams describes a symmetric 2x2 stage game played
// indefinitely with discounting. The payoffs must form a strict
// prisoner's dilemma: Temptation > Cooperate > Defect > Sucker.
type RepeatedGameParams struct {
	CooperatePayoff  float64 // R: both cooperate
	DefectPayoff     float64 // P: both defect
	TemptationPayoff float64 // T: defect against a cooperator
	SuckerPayoff     float64 // S: cooperate against a defector
	DiscountFactor   float64 // delta, in the open interval (0, 1)
}

// Validate checks the strict dilemma ordering and the discount factor.
func (p RepeatedGameParams) Validate() error {
	if err := checkDilemmaOrdering(p.TemptationPayoff, p.CooperatePayoff, p.DefectPayoff, p.SuckerPayoff); err != nil {
		return err
	}
	return checkOpenUnitInterval("discountFactor", p.DiscountFactor)
}

// FolkTheoremResult reports the grim-trigger sustainability analysis.
type FolkTheoremResult struct {
	MinDiscountFactor      float64 // delta_min = (T-R)/(T-P)
	CooperationSustainable bool    // delta >= delta_min (equality sustains)
	Margin                 float64 // delta - delta_min
	Derivation             string
}

// AnalyzeFolkTheorem computes the grim-trigger discount threshold.
//
// Cooperation is sustainable iff delta >= delta_min. Unlike the static
// dominance tie-break, equality here IS sustainable: at the threshold the
// agent is exactly indifferent and the trigger still holds.
func AnalyzeFolkTheorem(p RepeatedGameParams) (FolkTheoremResult, error) {
	if err := p.Validate(); err != nil {
		return FolkTheoremResult{}, err
	}

	minDiscount := (p.TemptationPayoff - p.CooperatePayoff) / (p.TemptationPayoff - p.DefectPayoff)

	return FolkTheoremResult{
		MinDiscountFactor:      minDiscount,
		CooperationSustainable: p.DiscountFactor >= minDiscount,
		Margin:                 p.DiscountFactor - minDiscount,
		Derivation: fmt.Sprintf(
			"delta_min = (T-R)/(T-P) = (%g-%g)/(%g-%g) = %g; delta = %g; "+
				"cooperation sustainable iff delta >= delta_min",
			p.TemptationPayoff, p.CooperatePayoff, p.TemptationPayoff, p.DefectPayoff,
			minDiscount, p.DiscountFactor),
	}, nil
}
