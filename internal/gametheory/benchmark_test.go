package gametheory

import "testing"

// BenchmarkProveHonesty measures the single-shot dominance analysis.
func BenchmarkProveHonesty(b *testing.B) {
	params := HonestyParameters{
		Stake:                1000,
		DetectionProbability: 0.8,
		ReputationValue:      200,
		MaxViolationGain:     500,
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := ProveHonesty(params)
		if err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkCheckCoalitionStability measures the 2^n subset enumeration at
// a mid-size agent count.
func BenchmarkCheckCoalitionStability(b *testing.B) {
	const agents = 16

	allocation := make([]float64, agents)
	members := make([]int, agents)
	for i := 0; i < agents; i++ {
		allocation[i] = 1
		members[i] = i
	}
	values := []CoalitionValue{
		{Members: members, Value: float64(agents)},
		{Members: []int{0, 1}, Value: 1.5},
		{Members: []int{2, 3, 4}, Value: 2.5},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := CheckCoalitionStability(agents, allocation, values)
		if err != nil {
			b.Fatal(err)
		}
	}
}
