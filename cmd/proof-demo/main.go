package main

import (
	"fmt"
	"log"

	"agenttrust/internal/gametheory"
)

func main() {
	params := gametheory.HonestyParameters{
		Stake:                1000,
		DetectionProbability: 0.8,
		ReputationValue:      200,
		MaxViolationGain:     500,
	}

	proof, err := gametheory.ProveHonesty(params)
	if err != nil {
		log.Fatalf("proof failed: %v", err)
	}

	fmt.Printf("Honesty dominant: %v (margin %.2f)\n", proof.IsDominantStrategy, proof.Margin)
	fmt.Println(proof.Derivation)
}
