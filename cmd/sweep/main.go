package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"sort"
	"strings"

	"agenttrust/internal/scenario"
)

func main() {
	var (
		dir      = flag.String("dir", "data/scenarios", "Directory of scenario JSON files")
		workers  = flag.Int("workers", 8, "Number of concurrent workers")
		progress = flag.Int("progress", 100, "Report progress every N scenarios (0 disables)")
	)
	flag.Parse()

	fmt.Println("=======================================================")
	fmt.Println("AGENTTRUST — SCENARIO SWEEP")
	fmt.Println("=======================================================")
	fmt.Println()

	fmt.Printf("Loading scenarios from: %s\n", *dir)

	records, err := scenario.ParseScenarioDirectory(*dir)
	if err != nil {
		log.Fatalf("Failed to load scenarios: %v", err)
	}

	if len(records) == 0 {
		log.Fatal("No scenarios found. Add *.json scenario files first.")
	}

	fmt.Printf("✓ Loaded %d scenarios\n", len(records))
	fmt.Println()

	config := scenario.RunConfig{
		WorkerCount:    *workers,
		ProgressReport: *progress,
		Progress: func(done, total int) {
			fmt.Printf("  evaluated %d/%d scenarios\n", done, total)
		},
	}

	result, err := scenario.EvaluateParallel(context.Background(), records, config)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}

	fmt.Println("=======================================================")
	fmt.Println("SWEEP RESULTS")
	fmt.Println("=======================================================")
	fmt.Println()

	fmt.Printf("Scenarios:           %d\n", len(records))
	fmt.Printf("Honesty dominant:    %d (%.1f%%)\n",
		result.DominantCount, 100*float64(result.DominantCount)/float64(len(records)))
	fmt.Printf("Failed:              %d\n", len(result.Failed))
	fmt.Printf("Duration:            %s (%d workers)\n", result.Duration, *workers)
	fmt.Println()

	printMarginDistribution(result)
	printWeakest(result, 5)
	printFailures(result)

	fmt.Println("=======================================================")
	fmt.Println("CRITICAL DISCLAIMER")
	fmt.Println("=======================================================")
	fmt.Println()
	fmt.Println("These results are computed under EXPLICIT ASSUMPTIONS:")
	fmt.Println("  - Detection probabilities are INPUTS, not measurements")
	fmt.Println("  - Reputation values assume a liquid reputation market")
	fmt.Println("  - Collusion between agents is NOT modeled here")
	fmt.Println("  - Off-protocol side payments are NOT factored")
	fmt.Println()
	fmt.Println("A dominant-strategy margin demonstrates economic BOUNDS,")
	fmt.Println("not operational safety. Real deployments need defense in")
	fmt.Println("depth beyond staking.")
	fmt.Println()
}

func printMarginDistribution(result *scenario.RunResult) {
	var margins []float64
	for _, e := range result.Evaluations {
		if _, failed := result.Failed[e.Record.Name]; failed {
			continue
		}
		margins = append(margins, e.Proof.Margin)
	}
	if len(margins) == 0 {
		return
	}
	sort.Float64s(margins)

	fmt.Println("Margin Distribution")
	fmt.Println(strings.Repeat("-", 55))
	fmt.Printf("  Min:     %.4f\n", margins[0])
	fmt.Printf("  Median:  %.4f\n", margins[len(margins)/2])
	fmt.Printf("  Max:     %.4f\n", margins[len(margins)-1])
	fmt.Println()
}

func printWeakest(result *scenario.RunResult, n int) {
	evals := make([]scenario.Evaluation, 0, len(result.Evaluations))
	for _, e := range result.Evaluations {
		if _, failed := result.Failed[e.Record.Name]; failed {
			continue
		}
		evals = append(evals, e)
	}
	sort.Slice(evals, func(i, j int) bool {
		return evals[i].Proof.Margin < evals[j].Proof.Margin
	})

	if n > len(evals) {
		n = len(evals)
	}
	if n == 0 {
		return
	}

	fmt.Printf("Weakest %d Scenarios by Margin\n", n)
	fmt.Println(strings.Repeat("-", 55))
	for _, e := range evals[:n] {
		marker := "✓"
		if !e.Proof.IsDominantStrategy {
			marker = "✗"
		}
		required := fmt.Sprintf("%.2f", e.Proof.RequiredStake)
		if math.IsInf(e.Proof.RequiredStake, 1) {
			required = "unattainable (detection 0)"
		}
		fmt.Printf("  %s %-24s margin=%.4f required stake=%s\n",
			marker, e.Record.Name, e.Proof.Margin, required)
	}
	fmt.Println()
}

func printFailures(result *scenario.RunResult) {
	if len(result.Failed) == 0 {
		return
	}

	names := make([]string, 0, len(result.Failed))
	for name := range result.Failed {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Failed Scenarios")
	fmt.Println(strings.Repeat("-", 55))
	for _, name := range names {
		fmt.Printf("  ⚠ %s: %v\n", name, result.Failed[name])
	}
	fmt.Println()
}
