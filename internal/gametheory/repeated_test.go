package gametheory

import (
	"errors"
	"math"
	"testing"
)

func standardDilemma(delta float64) RepeatedGameParams {
	return RepeatedGameParams{
		CooperatePayoff:  3,
		DefectPayoff:     1,
		TemptationPayoff: 5,
		SuckerPayoff:     0,
		DiscountFactor:   delta,
	}
}

func TestAnalyzeFolkTheorem_Sustainable(t *testing.T) {
	result, err := AnalyzeFolkTheorem(standardDilemma(0.9))
	if err != nil {
		t.Fatalf("AnalyzeFolkTheorem failed: %v", err)
	}

	// delta_min = (5-3)/(5-1) = 0.5
	if result.MinDiscountFactor != 0.5 {
		t.Errorf("expected delta_min 0.5, got %f", result.MinDiscountFactor)
	}
	if !result.CooperationSustainable {
		t.Error("expected cooperation sustainable at delta 0.9")
	}
	if math.Abs(result.Margin-0.4) > 1e-12 {
		t.Errorf("expected margin 0.4, got %f", result.Margin)
	}
}

// TestAnalyzeFolkTheorem_Boundary verifies the threshold itself sustains:
// at delta = delta_min the agent is indifferent and the trigger holds.
func TestAnalyzeFolkTheorem_Boundary(t *testing.T) {
	result, err := AnalyzeFolkTheorem(standardDilemma(0.5))
	if err != nil {
		t.Fatalf("AnalyzeFolkTheorem failed: %v", err)
	}

	if !result.CooperationSustainable {
		t.Error("expected cooperation sustainable at exactly delta_min")
	}
	if result.Margin != 0 {
		t.Errorf("expected margin 0 at the boundary, got %f", result.Margin)
	}
}

func TestAnalyzeFolkTheorem_Unsustainable(t *testing.T) {
	result, err := AnalyzeFolkTheorem(standardDilemma(0.3))
	if err != nil {
		t.Fatalf("AnalyzeFolkTheorem failed: %v", err)
	}

	if result.CooperationSustainable {
		t.Error("expected cooperation unsustainable at delta 0.3")
	}
	if result.Margin >= 0 {
		t.Errorf("expected negative margin, got %f", result.Margin)
	}
}

func TestAnalyzeFolkTheorem_InvalidOrdering(t *testing.T) {
	// Temptation below cooperation breaks the dilemma ordering.
	_, err := AnalyzeFolkTheorem(RepeatedGameParams{
		CooperatePayoff:  5,
		DefectPayoff:     1,
		TemptationPayoff: 3,
		SuckerPayoff:     0,
		DiscountFactor:   0.9,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnalyzeFolkTheorem_InvalidDiscount(t *testing.T) {
	for _, delta := range []float64{0, 1, -0.5, 1.5} {
		_, err := AnalyzeFolkTheorem(standardDilemma(delta))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("delta %g: expected ErrInvalidInput, got %v", delta, err)
		}
	}
}
