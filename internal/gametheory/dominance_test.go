package gametheory

import (
	"errors"
	"math"
	"testing"
)

func TestProveHonesty_Dominant(t *testing.T) {
	proof, err := ProveHonesty(HonestyParameters{
		Stake:                1000,
		DetectionProbability: 0.8,
		ReputationValue:      200,
		MaxViolationGain:     500,
	})
	if err != nil {
		t.Fatalf("ProveHonesty failed: %v", err)
	}

	// cost = 1000*0.8 + 200 = 1000, margin = 500
	if !proof.IsDominantStrategy {
		t.Error("expected honesty to be dominant")
	}
	if proof.Margin != 500 {
		t.Errorf("expected margin 500, got %f", proof.Margin)
	}
}

// TestProveHonesty_ZeroMarginNotDominant verifies the tie-break: a margin
// of exactly 0 resolves in the adversary's favor.
func TestProveHonesty_ZeroMarginNotDominant(t *testing.T) {
	proof, err := ProveHonesty(HonestyParameters{
		Stake:                500,
		DetectionProbability: 1.0,
		MaxViolationGain:     500,
	})
	if err != nil {
		t.Fatalf("ProveHonesty failed: %v", err)
	}

	if proof.Margin != 0 {
		t.Fatalf("expected margin 0, got %f", proof.Margin)
	}
	if proof.IsDominantStrategy {
		t.Error("zero margin must not count as dominant")
	}
}

// TestProveHonesty_InverseConsistency verifies that re-running the proof
// with the reported required stake (plus a nudge) yields dominance.
func TestProveHonesty_InverseConsistency(t *testing.T) {
	params := HonestyParameters{
		Stake:                10,
		DetectionProbability: 0.5,
		ReputationValue:      50,
		MaxViolationGain:     400,
	}

	proof, err := ProveHonesty(params)
	if err != nil {
		t.Fatalf("ProveHonesty failed: %v", err)
	}
	if proof.IsDominantStrategy {
		t.Fatal("expected underprovisioned position to not be dominant")
	}

	params.Stake = proof.RequiredStake + 1e-9
	reproof, err := ProveHonesty(params)
	if err != nil {
		t.Fatalf("ProveHonesty at required stake failed: %v", err)
	}
	if !reproof.IsDominantStrategy {
		t.Errorf("expected dominance at stake %f, margin %g", params.Stake, reproof.Margin)
	}
}

func TestMinimumStake_ZeroDetection(t *testing.T) {
	stake, err := MinimumStake(0, 100, 500, 0)
	if err != nil {
		t.Fatalf("MinimumStake failed: %v", err)
	}
	if !math.IsInf(stake, 1) {
		t.Errorf("expected +Inf for undetectable violations, got %f", stake)
	}
}

func TestMinimumStake_ClampedToZero(t *testing.T) {
	// Reputation alone already exceeds the gain.
	stake, err := MinimumStake(0.5, 1000, 500, 0)
	if err != nil {
		t.Fatalf("MinimumStake failed: %v", err)
	}
	if stake != 0 {
		t.Errorf("expected 0 when reputation covers the gain, got %f", stake)
	}
}

func TestMinimumStake_Exact(t *testing.T) {
	stake, err := MinimumStake(0.5, 100, 500, 0)
	if err != nil {
		t.Fatalf("MinimumStake failed: %v", err)
	}
	// (500 - 100) / 0.5 = 800
	if stake != 800 {
		t.Errorf("expected 800, got %f", stake)
	}
}

func TestMinimumDetection_ZeroStake(t *testing.T) {
	det, err := MinimumDetection(0, 0, 500, 0)
	if err != nil {
		t.Fatalf("MinimumDetection failed: %v", err)
	}
	if det != 1 {
		t.Errorf("expected 1 with nothing at risk, got %f", det)
	}
}

func TestMinimumDetection_Clamped(t *testing.T) {
	// Required detection (500-0)/100 = 5 clamps to 1.
	det, err := MinimumDetection(100, 0, 500, 0)
	if err != nil {
		t.Fatalf("MinimumDetection failed: %v", err)
	}
	if det != 1 {
		t.Errorf("expected clamp to 1, got %f", det)
	}

	// Reputation covers everything: clamp to 0.
	det, err = MinimumDetection(100, 1000, 500, 0)
	if err != nil {
		t.Fatalf("MinimumDetection failed: %v", err)
	}
	if det != 0 {
		t.Errorf("expected clamp to 0, got %f", det)
	}
}

// TestExpectedCostOfBreach_ExcludesReputation verifies that only seizable
// value counts toward the recoverable breach cost.
func TestExpectedCostOfBreach_ExcludesReputation(t *testing.T) {
	cost, err := ExpectedCostOfBreach(HonestyParameters{
		Stake:                1000,
		DetectionProbability: 0.5,
		ReputationValue:      999,
		Coburn:               25,
	})
	if err != nil {
		t.Fatalf("ExpectedCostOfBreach failed: %v", err)
	}
	if cost != 525 {
		t.Errorf("expected 1000*0.5 + 25 = 525, got %f", cost)
	}
}

// TestHonestyMargin_Monotone verifies margin is non-decreasing in stake
// and in detection probability with the other parameters fixed.
func TestHonestyMargin_Monotone(t *testing.T) {
	base := HonestyParameters{
		Stake:                100,
		DetectionProbability: 0.4,
		ReputationValue:      10,
		MaxViolationGain:     200,
	}

	prev := math.Inf(-1)
	for stake := 0.0; stake <= 1000; stake += 50 {
		p := base
		p.Stake = stake
		margin, err := HonestyMargin(p)
		if err != nil {
			t.Fatalf("stake %f: %v", stake, err)
		}
		if margin < prev {
			t.Fatalf("margin decreased at stake %f: %f -> %f", stake, prev, margin)
		}
		prev = margin
	}

	prev = math.Inf(-1)
	for i := 0; i <= 20; i++ {
		det := float64(i) / 20
		p := base
		p.DetectionProbability = det
		margin, err := HonestyMargin(p)
		if err != nil {
			t.Fatalf("detection %f: %v", det, err)
		}
		if margin < prev {
			t.Fatalf("margin decreased at detection %f: %f -> %f", det, prev, margin)
		}
		prev = margin
	}
}

func TestHonestyMargin_MatchesProof(t *testing.T) {
	params := HonestyParameters{
		Stake:                300,
		DetectionProbability: 0.7,
		ReputationValue:      40,
		MaxViolationGain:     100,
		Coburn:               10,
	}

	margin, err := HonestyMargin(params)
	if err != nil {
		t.Fatalf("HonestyMargin failed: %v", err)
	}
	proof, err := ProveHonesty(params)
	if err != nil {
		t.Fatalf("ProveHonesty failed: %v", err)
	}
	if margin != proof.Margin {
		t.Errorf("margin mismatch: %f vs %f", margin, proof.Margin)
	}
}

func TestProveHonesty_InvalidInput(t *testing.T) {
	cases := []struct {
		name   string
		params HonestyParameters
	}{
		{"negative stake", HonestyParameters{Stake: -1, DetectionProbability: 0.5}},
		{"detection above one", HonestyParameters{Stake: 10, DetectionProbability: 1.5}},
		{"negative detection", HonestyParameters{Stake: 10, DetectionProbability: -0.1}},
		{"negative reputation", HonestyParameters{Stake: 10, DetectionProbability: 0.5, ReputationValue: -1}},
		{"negative gain", HonestyParameters{Stake: 10, DetectionProbability: 0.5, MaxViolationGain: -1}},
		{"negative burn", HonestyParameters{Stake: 10, DetectionProbability: 0.5, Coburn: -1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ProveHonesty(tc.params)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}
