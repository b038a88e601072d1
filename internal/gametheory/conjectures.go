package gametheory

import (
	"fmt"
	"math"
)

// ConjectureStatus classifies how well-supported a catalog entry is.
type ConjectureStatus string

const (
	StatusConjecture       ConjectureStatus = "conjecture"
	StatusInformalArgument ConjectureStatus = "informal-argument"
	StatusFormallyProven   ConjectureStatus = "formally-proven"
)

// Conjecture is a named impossibility claim about stake-based trust
// protocols. The catalog is data, not computation.
type Conjecture struct {
	Name          string
	Statement     string
	Status        ConjectureStatus
	Confidence    float64 // [0, 1]
	Justification string
}

// Conjectures returns the catalog of the four named impossibility
// conjectures underpinning the protocol's security argument.
func Conjectures() []Conjecture {
	return []Conjecture{
		{
			Name: "observation-bound",
			Statement: "No monitoring scheme can detect violations with probability " +
				"exceeding the fraction of agent actions it can observe.",
			Status:     StatusInformalArgument,
			Confidence: 0.85,
			Justification: "A violation confined entirely to unobserved actions is " +
				"information-theoretically indistinguishable from honest behavior; " +
				"detection probability is therefore bounded by observable coverage.",
		},
		{
			Name: "trust-privacy-tradeoff",
			Statement: "Detection probability and agent privacy cannot both be driven " +
				"to their maximum: their product is bounded.",
			Status:     StatusConjecture,
			Confidence: 0.6,
			Justification: "Raising detection requires inspecting more of the agent's " +
				"behavior, which by definition consumes privacy budget. No construction " +
				"achieving both near 1 simultaneously is known; no impossibility proof exists either.",
		},
		{
			Name: "composition-limit",
			Statement: "End-to-end assurance across a chain of delegating agents decays " +
				"at least geometrically in the chain depth.",
			Status:     StatusInformalArgument,
			Confidence: 0.75,
			Justification: "Each delegation hop is an independent detection opportunity " +
				"that can fail; with per-hop detection p, a violation laundered through " +
				"k hops survives all of them with probability at least (1-p)^k's complement " +
				"shortfall, so composite assurance is at most p^k-shaped.",
		},
		{
			Name: "collateralization-theorem",
			Statement: "Honesty is a dominant strategy iff stake times detection " +
				"probability (plus reputation and burn) exceeds the maximum violation gain.",
			Status:     StatusFormallyProven,
			Confidence: 1.0,
			Justification: "Direct consequence of expected-utility comparison for a " +
				"risk-neutral agent; the static dominance analyzer is its constructive form.",
		},
	}
}

// ConjectureBoundParams supplies concrete protocol parameters against
// which the conjecture bounds are instantiated.
type ConjectureBoundParams struct {
	Stake                 float64 // >= 0
	DetectionProbability  float64 // [0, 1]
	MaxViolationGain      float64 // >= 0
	ObservableActionShare float64 // fraction of agent actions observable, [0, 1]
	PrivacyBudget         float64 // retained privacy fraction, [0, 1]
	CompositionDepth      int     // delegation chain length, >= 1
}

// Validate checks every field against its documented range.
func (p ConjectureBoundParams) Validate() error {
	if err := checkNonNegative("stake", p.Stake); err != nil {
		return err
	}
	if err := checkProbability("detectionProbability", p.DetectionProbability); err != nil {
		return err
	}
	if err := checkNonNegative("maxViolationGain", p.MaxViolationGain); err != nil {
		return err
	}
	if err := checkProbability("observableActionShare", p.ObservableActionShare); err != nil {
		return err
	}
	if err := checkProbability("privacyBudget", p.PrivacyBudget); err != nil {
		return err
	}
	if p.CompositionDepth < 1 {
		return invalidf("compositionDepth must be >= 1, got %d", p.CompositionDepth)
	}
	return nil
}

// ConjectureBound instantiates one conjecture numerically. The ratios are
// heuristic tightness estimates, not rigorous verification: they show how
// close the supplied parameters sit to each claimed bound.
type ConjectureBound struct {
	Conjecture string
	Achieved   float64 // value realized by the supplied parameters
	Bound      float64 // value the conjecture claims cannot be exceeded/undershot
	Ratio      float64 // achieved/bound; may be +Inf when the bound is 0
	Satisfied  bool
	Note       string
}

// EvaluateConjectureBounds computes concrete numeric bounds for the
// catalog against specific protocol parameters.
func EvaluateConjectureBounds(p ConjectureBoundParams) ([]ConjectureBound, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	bounds := make([]ConjectureBound, 0, 4)

	// Observation bound: detection <= observable share.
	bounds = append(bounds, ConjectureBound{
		Conjecture: "observation-bound",
		Achieved:   p.DetectionProbability,
		Bound:      p.ObservableActionShare,
		Ratio:      ratio(p.DetectionProbability, p.ObservableActionShare),
		Satisfied:  p.DetectionProbability <= p.ObservableActionShare,
		Note:       "claimed detection probability against observable action coverage",
	})

	// Trust-privacy tradeoff: detection * privacy <= 1.
	product := p.DetectionProbability * p.PrivacyBudget
	bounds = append(bounds, ConjectureBound{
		Conjecture: "trust-privacy-tradeoff",
		Achieved:   product,
		Bound:      1,
		Ratio:      product,
		Satisfied:  product <= 1,
		Note:       "detection x privacy product against the unit bound",
	})

	// Composition limit: composite assurance decays as detection^depth.
	composite := math.Pow(p.DetectionProbability, float64(p.CompositionDepth))
	bounds = append(bounds, ConjectureBound{
		Conjecture: "composition-limit",
		Achieved:   composite,
		Bound:      p.DetectionProbability,
		Ratio:      ratio(composite, p.DetectionProbability),
		Satisfied:  composite <= p.DetectionProbability,
		Note: fmt.Sprintf("assurance after %d delegation hops against single-hop assurance",
			p.CompositionDepth),
	})

	// Collateralization: stake * detection >= maxGain.
	collateral := p.Stake * p.DetectionProbability
	bounds = append(bounds, ConjectureBound{
		Conjecture: "collateralization-theorem",
		Achieved:   collateral,
		Bound:      p.MaxViolationGain,
		Ratio:      ratio(collateral, p.MaxViolationGain),
		Satisfied:  collateral >= p.MaxViolationGain,
		Note:       "expected seizable breach cost against maximum violation gain",
	})

	return bounds, nil
}

// ratio returns a/b with the 0-denominator convention: 0/0 is 1
// (trivially tight), x/0 for x > 0 is +Inf.
func ratio(a, b float64) float64 {
	if b == 0 {
		if a == 0 {
			return 1
		}
		return math.Inf(1)
	}
	return a / b
}
