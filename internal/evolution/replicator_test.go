package evolution

import (
	"errors"
	"math"
	"testing"

	"agenttrust/internal/gametheory"
)

func TestSimulateReplicatorDynamics_DishonestExtinct(t *testing.T) {
	result, err := SimulateReplicatorDynamics(EvolutionSimulationParams{
		InitialHonestFraction: 0.5,
		Payoffs:               PayoffMatrix{{5, 1}, {3, 2}},
		Generations:           200,
	})
	if err != nil {
		t.Fatalf("SimulateReplicatorDynamics failed: %v", err)
	}

	if !result.DishonestExtinct {
		final := result.Snapshots[len(result.Snapshots)-1]
		t.Fatalf("expected dishonest extinction, final dishonest fraction %g", final.DishonestFraction)
	}
	if result.HonestExtinct {
		t.Error("honest cannot also be extinct")
	}
	if result.ExtinctionGeneration < 1 {
		t.Errorf("expected recorded extinction generation, got %d", result.ExtinctionGeneration)
	}

	final := result.Snapshots[len(result.Snapshots)-1]
	if final.HonestFraction != 1 || final.DishonestFraction != 0 {
		t.Errorf("expected snap to exactly (1, 0), got (%g, %g)",
			final.HonestFraction, final.DishonestFraction)
	}
}

func TestSimulateReplicatorDynamics_HonestExtinct(t *testing.T) {
	// Prisoner's dilemma: defection dominates at every mix.
	result, err := SimulateReplicatorDynamics(EvolutionSimulationParams{
		InitialHonestFraction: 0.5,
		Payoffs:               PayoffMatrix{{3, 0}, {5, 1}},
		Generations:           200,
	})
	if err != nil {
		t.Fatalf("SimulateReplicatorDynamics failed: %v", err)
	}

	if !result.HonestExtinct {
		final := result.Snapshots[len(result.Snapshots)-1]
		t.Fatalf("expected honest extinction, final honest fraction %g", final.HonestFraction)
	}
}

// TestSimulateReplicatorDynamics_Monotone verifies that with honest
// fitness above dishonest fitness at every mix, the honest fraction never
// decreases.
func TestSimulateReplicatorDynamics_Monotone(t *testing.T) {
	// Honest fitness 2+3h strictly exceeds dishonest fitness 1+2h
	// everywhere, so there is no interior equilibrium to cross.
	result, err := SimulateReplicatorDynamics(EvolutionSimulationParams{
		InitialHonestFraction: 0.2,
		Payoffs:               PayoffMatrix{{5, 2}, {3, 1}},
		Generations:           50,
	})
	if err != nil {
		t.Fatalf("SimulateReplicatorDynamics failed: %v", err)
	}

	prev := 0.2
	for _, s := range result.Snapshots {
		if s.HonestFraction < prev {
			t.Fatalf("generation %d: honest fraction decreased %g -> %g",
				s.Generation, prev, s.HonestFraction)
		}
		prev = s.HonestFraction
	}
}

// TestSimulateReplicatorDynamics_NegativePayoffs verifies the positivity
// shift: all-negative payoffs still select the fitter strategy.
func TestSimulateReplicatorDynamics_NegativePayoffs(t *testing.T) {
	result, err := SimulateReplicatorDynamics(EvolutionSimulationParams{
		InitialHonestFraction: 0.5,
		Payoffs:               PayoffMatrix{{-1, -3}, {-2, -4}},
		Generations:           300,
	})
	if err != nil {
		t.Fatalf("SimulateReplicatorDynamics failed: %v", err)
	}

	if !result.DishonestExtinct {
		final := result.Snapshots[len(result.Snapshots)-1]
		t.Errorf("expected dishonest extinction under negative payoffs, final %g",
			final.DishonestFraction)
	}
}

func TestSimulateReplicatorDynamics_SnapshotInvariants(t *testing.T) {
	result, err := SimulateReplicatorDynamics(EvolutionSimulationParams{
		InitialHonestFraction: 0.3,
		Payoffs:               PayoffMatrix{{3, 0}, {5, 1}},
		Generations:           25,
	})
	if err != nil {
		t.Fatalf("SimulateReplicatorDynamics failed: %v", err)
	}

	if len(result.Snapshots) != 25 {
		t.Fatalf("expected 25 snapshots, got %d", len(result.Snapshots))
	}
	for i, s := range result.Snapshots {
		if s.Generation != i+1 {
			t.Errorf("snapshot %d: generation %d", i, s.Generation)
		}
		if math.Abs(s.HonestFraction+s.DishonestFraction-1) > 1e-12 {
			t.Errorf("generation %d: fractions sum to %g",
				s.Generation, s.HonestFraction+s.DishonestFraction)
		}
	}
}

func TestSimulateReplicatorDynamics_InvalidInput(t *testing.T) {
	cases := []EvolutionSimulationParams{
		{InitialHonestFraction: 0, Generations: 10},
		{InitialHonestFraction: 1, Generations: 10},
		{InitialHonestFraction: 0.5, Generations: 0},
	}
	for _, p := range cases {
		if _, err := SimulateReplicatorDynamics(p); !errors.Is(err, gametheory.ErrInvalidInput) {
			t.Errorf("params %+v: expected ErrInvalidInput, got %v", p, err)
		}
	}
}
