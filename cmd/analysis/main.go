package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"agenttrust/internal/evolution"
	"agenttrust/internal/gametheory"
	"agenttrust/internal/montecarlo"
)

func main() {
	// Command line flags
	var (
		mode = flag.String("mode", "dominance", "Analysis mode: dominance, folk, coalition, mechanism, tiers, conjectures, ess, replicator, byzantine, montecarlo, copula")

		stake      = flag.Float64("stake", 1000, "Agent stake")
		detection  = flag.Float64("detection", 0.8, "Detection probability")
		reputation = flag.Float64("reputation", 200, "Discounted reputation value")
		gain       = flag.Float64("gain", 500, "Maximum violation gain")
		coburn     = flag.Float64("coburn", 0, "Coburn adjustment term")

		cooperate  = flag.Float64("cooperate", 3, "Cooperate payoff R")
		defect     = flag.Float64("defect", 1, "Defect payoff P")
		temptation = flag.Float64("temptation", 5, "Temptation payoff T")
		sucker     = flag.Float64("sucker", 0, "Sucker payoff S")
		discount   = flag.Float64("discount", 0.9, "Discount factor delta")

		population  = flag.Int("population", 1000, "Population size")
		mutants     = flag.Float64("mutants", 0.01, "Mutant fraction")
		initial     = flag.Float64("initial", 0.5, "Initial honest fraction")
		generations = flag.Int("generations", 200, "Number of generations")
		evasion     = flag.Float64("evasion", 0.3, "Byzantine evasion capability")
		strategy    = flag.String("strategy", "adaptive", "Adversary strategy: random, strategic, adaptive")

		coalitionFile = flag.String("coalitions", "data/coalitions.json", "Characteristic function JSON file")
		allocation    = flag.String("allocation", "3,4,3", "Comma-separated per-agent allocation")

		runs          = flag.Int("runs", 1000, "Monte Carlo simulation runs")
		agents        = flag.Int("agents", 10, "Agents per simulation run")
		interactions  = flag.Int("interactions", 10, "Interactions per agent")
		violationProb = flag.Float64("violation-prob", 0.1, "Violation probability per interaction")
		seed          = flag.Uint64("seed", 0, "RNG seed (0 selects the default)")
		correlation   = flag.Float64("correlation", 0.5, "Off-diagonal layer correlation for copula mode")
	)
	flag.Parse()

	payoffs := evolution.PayoffMatrix{
		{*cooperate, *sucker},
		{*temptation, *defect},
	}

	switch *mode {
	case "dominance":
		runDominance(*stake, *detection, *reputation, *gain, *coburn)

	case "folk":
		runFolkTheorem(*cooperate, *defect, *temptation, *sucker, *discount)

	case "coalition":
		runCoalition(*coalitionFile, *allocation)

	case "mechanism":
		runMechanism(*gain, *coburn, *detection, *stake)

	case "tiers":
		runTiers(*detection, *stake, *gain, *population)

	case "conjectures":
		runConjectures(*stake, *detection, *gain)

	case "ess":
		runESS(*population, *mutants, payoffs)

	case "replicator":
		runReplicator(*initial, payoffs, *generations)

	case "byzantine":
		runByzantine(*initial, payoffs, *generations, *detection, *evasion, *strategy)

	case "montecarlo":
		runMonteCarlo(*runs, *agents, *interactions, *violationProb, *seed)

	case "copula":
		runCopula(*runs, *agents, *interactions, *violationProb, *seed, *correlation)

	default:
		log.Fatalf("Unknown mode: %s", *mode)
	}
}

func runDominance(stake, detection, reputation, gain, coburn float64) {
	fmt.Println("Honesty Dominance Analysis")
	fmt.Println("==========================")

	proof, err := gametheory.ProveHonesty(gametheory.HonestyParameters{
		Stake:                stake,
		DetectionProbability: detection,
		ReputationValue:      reputation,
		MaxViolationGain:     gain,
		Coburn:               coburn,
	})
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Printf("Stake:               %.4f\n", stake)
	fmt.Printf("Detection:           %.4f\n", detection)
	fmt.Printf("Reputation:          %.4f\n", reputation)
	fmt.Printf("Violation Gain:      %.4f\n", gain)
	fmt.Println()
	fmt.Printf("Dominant Strategy:   %v\n", proof.IsDominantStrategy)
	fmt.Printf("Margin:              %.4f\n", proof.Margin)
	fmt.Printf("Required Stake:      %.4f\n", proof.RequiredStake)
	fmt.Printf("Required Detection:  %.4f\n", proof.RequiredDetection)
	fmt.Printf("\nDerivation: %s\n", proof.Derivation)
}

func runFolkTheorem(cooperate, defect, temptation, sucker, discount float64) {
	fmt.Println("Folk Theorem Analysis (grim trigger)")
	fmt.Println("====================================")

	result, err := gametheory.AnalyzeFolkTheorem(gametheory.RepeatedGameParams{
		CooperatePayoff:  cooperate,
		DefectPayoff:     defect,
		TemptationPayoff: temptation,
		SuckerPayoff:     sucker,
		DiscountFactor:   discount,
	})
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Printf("Payoffs (T,R,P,S):   %.2f, %.2f, %.2f, %.2f\n", temptation, cooperate, defect, sucker)
	fmt.Printf("Discount Factor:     %.4f\n", discount)
	fmt.Printf("Minimum Discount:    %.4f\n", result.MinDiscountFactor)
	fmt.Printf("Sustainable:         %v\n", result.CooperationSustainable)
	fmt.Printf("Margin:              %.4f\n", result.Margin)
	fmt.Printf("\nDerivation: %s\n", result.Derivation)
}

func runCoalition(file, allocationCSV string) {
	fmt.Println("Coalition Stability Analysis")
	fmt.Println("============================")

	values, err := loadCoalitionsFromFile(file)
	if err != nil {
		log.Fatalf("Failed to load coalitions: %v", err)
	}

	allocation, err := parseAllocation(allocationCSV)
	if err != nil {
		log.Fatalf("Invalid allocation: %v", err)
	}

	result, err := gametheory.CheckCoalitionStability(len(allocation), allocation, values)
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Printf("Agents:              %d\n", len(allocation))
	fmt.Printf("Allocation:          %v\n", allocation)
	fmt.Printf("In Core:             %v\n", result.IsStable)
	fmt.Printf("Efficiency:          %.4f\n", result.Efficiency)

	if len(result.BlockingCoalitions) > 0 {
		fmt.Println("\nBlocking Coalitions:")
		for _, b := range result.BlockingCoalitions {
			fmt.Printf("  %v: value=%.4f allocated=%.4f surplus=%.4f\n",
				b.Members, b.Value, b.AllocatedSum, b.Surplus)
		}
	}
	fmt.Printf("\nDerivation: %s\n", result.Derivation)
}

func loadCoalitionsFromFile(filename string) ([]gametheory.CoalitionValue, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var values []gametheory.CoalitionValue
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}

	return values, nil
}

func parseAllocation(csv string) ([]float64, error) {
	parts := strings.Split(csv, ",")
	allocation := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("bad allocation entry %q: %w", part, err)
		}
		allocation = append(allocation, v)
	}
	return allocation, nil
}

func runMechanism(gain, honestyCost, detection, liability float64) {
	fmt.Println("Mechanism Design Analysis")
	fmt.Println("=========================")

	penalty, err := gametheory.MinimumPenalty(gain, honestyCost, detection)
	if err != nil {
		log.Fatalf("Penalty analysis failed: %v", err)
	}

	fmt.Printf("Minimum Penalty:     %.4f\n", penalty.MinimumPenalty)
	fmt.Printf("Enforceable:         %v\n", penalty.Enforceable)
	fmt.Printf("Derivation: %s\n", penalty.Derivation)

	agent, err := gametheory.AnalyzePrincipalAgent(gametheory.PrincipalAgentParams{
		BaseBreachRate:          0.1,
		MonitoringEffectiveness: detection,
		BreachCost:              gain,
		MonitoringBudget:        gain * 0.05,
		MonitoringUnitCost:      gain * 0.02,
		LiabilityExposure:       liability,
	})
	if err != nil {
		log.Fatalf("Principal-agent analysis failed: %v", err)
	}

	fmt.Println("\nPrincipal-Agent Model")
	fmt.Println("=====================")
	fmt.Printf("Breach Probability:  %.4f\n", agent.BreachProbability)
	fmt.Printf("Expected Cost:       %.4f\n", agent.ExpectedOperatorCost)
	fmt.Printf("Optimal Spend:       %.4f\n", agent.OptimalMonitoringSpend)
	fmt.Printf("Incentive Compat.:   %v\n", agent.IncentiveCompatible)
}

func runTiers(detection, stake, gain float64, participants int) {
	fmt.Println("Tier Equilibrium Analysis")
	fmt.Println("=========================")

	for _, tier := range []gametheory.Tier{gametheory.TierSolo, gametheory.TierBilateral, gametheory.TierNetwork} {
		result, err := gametheory.AnalyzeTier(tier, detection, stake, gain, participants)
		if err != nil {
			log.Fatalf("Tier %s failed: %v", tier, err)
		}

		fmt.Printf("\nTier: %s\n", result.Tier)
		fmt.Printf("Detection Band:      [%.3f, %.3f]\n", result.DetectionFloor, result.DetectionCeiling)
		fmt.Printf("Effective Detection: %.4f\n", result.EffectiveDetection)
		fmt.Printf("Adjusted Stake:      %.4f\n", result.AdjustedStake)
		fmt.Printf("Honest Equilibrium:  %v\n", result.HonestEquilibrium)
		fmt.Printf("Game Theory Applies: %v\n", result.GameTheoryApplicable)
	}
}

func runConjectures(stake, detection, gain float64) {
	fmt.Println("Impossibility Conjecture Catalog")
	fmt.Println("================================")

	for _, c := range gametheory.Conjectures() {
		fmt.Printf("\n%s [%s, confidence %.2f]\n", c.Name, c.Status, c.Confidence)
		fmt.Printf("  %s\n", c.Statement)
	}

	bounds, err := gametheory.EvaluateConjectureBounds(gametheory.ConjectureBoundParams{
		Stake:                 stake,
		DetectionProbability:  detection,
		MaxViolationGain:      gain,
		ObservableActionShare: 0.9,
		PrivacyBudget:         0.5,
		CompositionDepth:      3,
	})
	if err != nil {
		log.Fatalf("Bound evaluation failed: %v", err)
	}

	fmt.Println("\nNumeric Bounds")
	fmt.Println("==============")
	for _, b := range bounds {
		fmt.Printf("%-28s achieved=%.4f bound=%.4f ratio=%.4f satisfied=%v\n",
			b.Conjecture, b.Achieved, b.Bound, b.Ratio, b.Satisfied)
	}
}

func runESS(population int, mutants float64, payoffs evolution.PayoffMatrix) {
	fmt.Println("Evolutionary Stability Analysis")
	fmt.Println("===============================")

	result, err := evolution.AnalyzeESS(evolution.ESSParameters{
		PopulationSize: population,
		MutantFraction: mutants,
		Payoffs:        payoffs,
	})
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Printf("Population:          %d\n", population)
	fmt.Printf("Mutant Fraction:     %.4f\n", mutants)
	fmt.Println()
	fmt.Printf("Is ESS:              %v\n", result.IsESS)
	fmt.Printf("Strict Nash:         %v\n", result.StrictNashCondition)
	fmt.Printf("Stability Condition: %v\n", result.StabilityCondition)
	fmt.Printf("Invasion Fitness:    %.6f\n", result.InvasionFitness)
	fmt.Printf("Critical Fraction:   %.6f\n", result.CriticalMutantFraction)
	fmt.Printf("Extinction (gens):   %.2f\n", result.ExpectedExtinctionGenerations)
	fmt.Printf("\nDerivation: %s\n", result.Derivation)
}

func runReplicator(initial float64, payoffs evolution.PayoffMatrix, generations int) {
	fmt.Printf("Replicator Dynamics (%d generations)\n", generations)
	fmt.Println("=====================================")

	result, err := evolution.SimulateReplicatorDynamics(evolution.EvolutionSimulationParams{
		InitialHonestFraction: initial,
		Payoffs:               payoffs,
		Generations:           generations,
	})
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	printTrajectory(result.Snapshots)

	fmt.Println()
	fmt.Printf("Honest Extinct:      %v\n", result.HonestExtinct)
	fmt.Printf("Dishonest Extinct:   %v\n", result.DishonestExtinct)
	if result.ExtinctionGeneration >= 0 {
		fmt.Printf("Extinction At:       generation %d\n", result.ExtinctionGeneration)
	}
	final := result.Snapshots[len(result.Snapshots)-1]
	fmt.Printf("Final Honest Share:  %.6f\n", final.HonestFraction)
}

func runByzantine(initial float64, payoffs evolution.PayoffMatrix, generations int, detection, evasion float64, strategy string) {
	fmt.Printf("Byzantine Adversary Simulation (%s, %d generations)\n", strategy, generations)
	fmt.Println("====================================================")

	result, err := evolution.SimulateByzantineAdversary(evolution.ByzantineAdversaryParams{
		InitialByzantineFraction: 1 - initial,
		Payoffs:                  payoffs,
		Generations:              generations,
		BaseDetectionRate:        detection,
		EvasionCapability:        evasion,
		Strategy:                 evolution.AdversaryStrategy(strategy),
	})
	if err != nil {
		log.Fatalf("Simulation failed: %v", err)
	}

	// Print first 10 and last 10
	snaps := result.Snapshots
	fmt.Println("\nFirst 10 generations:")
	for i := 0; i < 10 && i < len(snaps); i++ {
		s := snaps[i]
		fmt.Printf("Gen %d: honest=%.4f byzantine=%.4f evasion=%.4f detection=%.4f\n",
			s.Generation, s.HonestFraction, s.ByzantineFraction, s.Evasion, s.EffectiveDetection)
	}
	if len(snaps) > 10 {
		fmt.Println("\nLast 10 generations:")
		for i := len(snaps) - 10; i < len(snaps); i++ {
			s := snaps[i]
			fmt.Printf("Gen %d: honest=%.4f byzantine=%.4f evasion=%.4f detection=%.4f\n",
				s.Generation, s.HonestFraction, s.ByzantineFraction, s.Evasion, s.EffectiveDetection)
		}
	}

	fmt.Println()
	fmt.Printf("Byzantine Extinct:   %v\n", result.ByzantineExtinct)
	if result.ExtinctionGeneration >= 0 {
		fmt.Printf("Extinction At:       generation %d\n", result.ExtinctionGeneration)
	}
	fmt.Printf("Nash Honest Share:   %.4f\n", result.NashEquilibriumHonestFraction)
}

func runMonteCarlo(runs, agents, interactions int, violationProb float64, seed uint64) {
	fmt.Printf("Monte Carlo Detection Validation (%d runs)\n", runs)
	fmt.Println("==========================================")

	result, err := montecarlo.ValidateDetectionRates(montecarlo.DetectionValidationParams{
		SimulationRuns:       runs,
		AgentCount:           agents,
		InteractionsPerAgent: interactions,
		ViolationProbability: violationProb,
		Seed:                 seed,
	})
	if err != nil {
		log.Fatalf("Validation failed: %v", err)
	}

	fmt.Printf("Seed:                %d\n", result.Seed)
	for _, tier := range result.Tiers {
		fmt.Printf("\nTier: %s\n", tier.Tier)
		fmt.Printf("Violations:          %d (%d detected)\n", tier.TotalViolations, tier.DetectedViolations)
		fmt.Printf("Empirical Rate:      %.4f (expected %.4f)\n",
			tier.EmpiricalRate, montecarlo.ExpectedTierRate(tier.Tier))
		fmt.Printf("95%% CI:              [%.4f, %.4f]\n", tier.ConfidenceLow, tier.ConfidenceHigh)
		fmt.Printf("Claimed Band:        [%.4f, %.4f]\n", tier.ClaimedLow, tier.ClaimedHigh)
		fmt.Printf("Passed:              %v\n", tier.Passed)
	}
	fmt.Printf("\nAll Passed:          %v\n", result.AllPassed)
}

func runCopula(runs, agents, interactions int, violationProb float64, seed uint64, rho float64) {
	fmt.Printf("Correlated Detection Validation (rho=%.2f, %d runs)\n", rho, runs)
	fmt.Println("====================================================")

	result, err := montecarlo.ValidateCorrelatedDetection(montecarlo.CorrelatedDetectionParams{
		DetectionValidationParams: montecarlo.DetectionValidationParams{
			SimulationRuns:       runs,
			AgentCount:           agents,
			InteractionsPerAgent: interactions,
			ViolationProbability: violationProb,
			Seed:                 seed,
		},
		Correlation: [3][3]float64{
			{1, rho, rho},
			{rho, 1, rho},
			{rho, rho, 1},
		},
	})
	if err != nil {
		log.Fatalf("Validation failed: %v", err)
	}

	fmt.Printf("Seed:                %d\n", result.Seed)
	for _, tier := range result.Tiers {
		fmt.Printf("\nTier: %s\n", tier.Tier)
		fmt.Printf("Correlated Rate:     %.4f\n", tier.CorrelatedRate)
		fmt.Printf("Independent Rate:    %.4f\n", tier.IndependentRate)
		fmt.Printf("Rate Difference:     %.4f\n", tier.RateDifference)
		fmt.Printf("95%% CI:              [%.4f, %.4f]\n", tier.ConfidenceLow, tier.ConfidenceHigh)
		fmt.Printf("Claimed Band:        [%.4f, %.4f]\n", tier.ClaimedLow, tier.ClaimedHigh)
		fmt.Printf("Passed:              %v\n", tier.Passed)
	}
	fmt.Printf("\nAll Passed:          %v\n", result.AllPassed)
}

func printTrajectory(snaps []evolution.GenerationSnapshot) {
	// Print first 10 and last 10
	fmt.Println("\nFirst 10 generations:")
	for i := 0; i < 10 && i < len(snaps); i++ {
		s := snaps[i]
		fmt.Printf("Gen %d: honest=%.4f dishonest=%.4f fitness(h)=%.4f fitness(d)=%.4f\n",
			s.Generation, s.HonestFraction, s.DishonestFraction, s.HonestFitness, s.DishonestFitness)
	}
	if len(snaps) > 10 {
		fmt.Println("\nLast 10 generations:")
		for i := len(snaps) - 10; i < len(snaps); i++ {
			s := snaps[i]
			fmt.Printf("Gen %d: honest=%.4f dishonest=%.4f fitness(h)=%.4f fitness(d)=%.4f\n",
				s.Generation, s.HonestFraction, s.DishonestFraction, s.HonestFitness, s.DishonestFitness)
		}
	}
}
