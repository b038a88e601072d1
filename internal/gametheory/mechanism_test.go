package gametheory

import (
	"errors"
	"math"
	"testing"
)

func TestMinimumPenalty_Standard(t *testing.T) {
	result, err := MinimumPenalty(100, 20, 0.5)
	if err != nil {
		t.Fatalf("MinimumPenalty failed: %v", err)
	}

	// (100 - 20) / 0.5 = 160
	if result.MinimumPenalty != 160 {
		t.Errorf("expected penalty 160, got %f", result.MinimumPenalty)
	}
	if !result.Enforceable {
		t.Error("expected enforceable with positive detection")
	}
}

func TestMinimumPenalty_HonestyAlreadyPreferred(t *testing.T) {
	result, err := MinimumPenalty(20, 100, 0.5)
	if err != nil {
		t.Fatalf("MinimumPenalty failed: %v", err)
	}

	if result.MinimumPenalty != 0 {
		t.Errorf("expected zero penalty when net gain <= 0, got %f", result.MinimumPenalty)
	}
	if !result.Enforceable {
		t.Error("expected enforceable")
	}
}

func TestMinimumPenalty_Undetectable(t *testing.T) {
	result, err := MinimumPenalty(100, 20, 0)
	if err != nil {
		t.Fatalf("MinimumPenalty failed: %v", err)
	}

	if !math.IsInf(result.MinimumPenalty, 1) {
		t.Errorf("expected +Inf penalty for undetectable breach, got %f", result.MinimumPenalty)
	}
	if result.Enforceable {
		t.Error("undetectable breach with positive gain must be unenforceable")
	}
}

func TestMinimumPenalty_InvalidInput(t *testing.T) {
	if _, err := MinimumPenalty(-1, 0, 0.5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for negative gain, got %v", err)
	}
	if _, err := MinimumPenalty(1, 0, 1.5); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for detection > 1, got %v", err)
	}
}

func TestAnalyzePrincipalAgent_Basic(t *testing.T) {
	result, err := AnalyzePrincipalAgent(PrincipalAgentParams{
		BaseBreachRate:          0.1,
		MonitoringEffectiveness: 0.8,
		BreachCost:              1000,
		MonitoringBudget:        50,
		MonitoringUnitCost:      20,
		LiabilityExposure:       500,
	})
	if err != nil {
		t.Fatalf("AnalyzePrincipalAgent failed: %v", err)
	}

	if math.Abs(result.BreachProbability-0.02) > 1e-12 {
		t.Errorf("expected breach probability 0.02, got %f", result.BreachProbability)
	}
	if math.Abs(result.ExpectedOperatorCost-70) > 1e-9 {
		t.Errorf("expected cost 70, got %f", result.ExpectedOperatorCost)
	}

	// spend* = sqrt(0.1*1000*20) - 20
	wantSpend := math.Sqrt(2000) - 20
	if math.Abs(result.OptimalMonitoringSpend-wantSpend) > 1e-9 {
		t.Errorf("expected optimal spend %f, got %f", wantSpend, result.OptimalMonitoringSpend)
	}
	if !result.IncentiveCompatible {
		t.Error("expected incentive compatibility: cost 70 < liability 500")
	}
}

// TestAnalyzePrincipalAgent_ZeroSpendFloor verifies that when monitoring
// is not worth its unit cost the optimal spend clamps to 0.
func TestAnalyzePrincipalAgent_ZeroSpendFloor(t *testing.T) {
	result, err := AnalyzePrincipalAgent(PrincipalAgentParams{
		BaseBreachRate:          0.01,
		MonitoringEffectiveness: 0,
		BreachCost:              1,
		MonitoringBudget:        0,
		MonitoringUnitCost:      100,
		LiabilityExposure:       10,
	})
	if err != nil {
		t.Fatalf("AnalyzePrincipalAgent failed: %v", err)
	}

	if result.OptimalMonitoringSpend != 0 {
		t.Errorf("expected zero optimal spend, got %f", result.OptimalMonitoringSpend)
	}
}

func TestAnalyzePrincipalAgent_InvalidInput(t *testing.T) {
	_, err := AnalyzePrincipalAgent(PrincipalAgentParams{
		BaseBreachRate:          1.5,
		MonitoringEffectiveness: 0.5,
		BreachCost:              10,
		MonitoringUnitCost:      1,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
