package gametheory

import (
	"fmt"
	"sort"
	"strings"
)

// MaxCoalitionAgents bounds the bitmask representation. The enumeration is
// O(2^n) and intended for single-digit agent counts; 30 is the hard
// representational ceiling, not a performance promise.
const MaxCoalitionAgents = 30

// CoalitionValue assigns an achievable payoff to a set of agents
// (0-based indices). Coalitions absent from the input are worth 0.
// Values carry no sign constraint; cost-style games are admissible.
type CoalitionValue struct {
	Members []int
	Value   float64
}

// BlockingCoalition records a coalition that can improve on the current
// allocation by breaking away.
type BlockingCoalition struct {
	Members      []int
	Value        float64
	AllocatedSum float64
	Surplus      float64 // Value - AllocatedSum, strictly positive
}

// CoalitionStabilityResult reports whether an allocation lies in the core.
type CoalitionStabilityResult struct {
	IsStable           bool
	BlockingCoalitions []BlockingCoalition
	Efficiency         float64 // totalAllocation / grandCoalitionValue (1 when grand value is 0)
	Derivation         string
}

// CheckCoalitionStability tests core membership of an allocation against a
// sparse characteristic function.
//
// The characteristic function must define the grand coalition (all agents).
// Every non-empty proper subset is enumerated by bitmask; a coalition
// blocks iff its value strictly exceeds the sum of its members'
// allocations. Complexity is O(2^n) by construction: exact cooperative
// game theory, intended for small agent counts.
func CheckCoalitionStability(agentCount int, allocation []float64, values []CoalitionValue) (CoalitionStabilityResult, error) {
	if agentCount < 1 {
		return CoalitionStabilityResult{}, invalidf("agentCount must be >= 1, got %d", agentCount)
	}
	if agentCount > MaxCoalitionAgents {
		return CoalitionStabilityResult{}, invalidf("agentCount must be <= %d, got %d", MaxCoalitionAgents, agentCount)
	}
	if len(allocation) != agentCount {
		return CoalitionStabilityResult{}, invalidf(
			"allocation length must equal agentCount %d, got %d", agentCount, len(allocation))
	}

	valueByMask, err := indexCharacteristicFunction(agentCount, values)
	if err != nil {
		return CoalitionStabilityResult{}, err
	}

	grandMask := uint32(1)<<uint(agentCount) - 1
	grandValue, ok := valueByMask[grandMask]
	if !ok {
		return CoalitionStabilityResult{}, invalidf(
			"characteristic function must define the grand coalition of all %d agents", agentCount)
	}

	var blocking []BlockingCoalition
	for mask := uint32(1); mask < grandMask; mask++ {
		value := valueByMask[mask] // absent coalitions default to 0

		var allocated float64
		for i := 0; i < agentCount; i++ {
			if mask&(1<<uint(i)) != 0 {
				allocated += allocation[i]
			}
		}

		if value > allocated {
			blocking = append(blocking, BlockingCoalition{
				Members:      maskToMembers(mask, agentCount),
				Value:        value,
				AllocatedSum: allocated,
				Surplus:      value - allocated,
			})
		}
	}

	var totalAllocation float64
	for _, a := range allocation {
		totalAllocation += a
	}

	efficiency := 1.0
	if grandValue != 0 {
		efficiency = totalAllocation / grandValue
	}

	result := CoalitionStabilityResult{
		IsStable:           len(blocking) == 0,
		BlockingCoalitions: blocking,
		Efficiency:         efficiency,
		Derivation: fmt.Sprintf(
			"enumerated %d proper coalitions of %d agents; %d blocking; "+
				"efficiency = %g/%g = %g",
			int(grandMask)-1, agentCount, len(blocking),
			totalAllocation, grandValue, efficiency),
	}
	return result, nil
}

// indexCharacteristicFunction converts the sparse coalition list into a
// bitmask-keyed map, validating member indices along the way.
func indexCharacteristicFunction(agentCount int, values []CoalitionValue) (map[uint32]float64, error) {
	byMask := make(map[uint32]float64, len(values))

	for _, cv := range values {
		if len(cv.Members) == 0 {
			return nil, invalidf("coalition with empty member set (value %g)", cv.Value)
		}

		var mask uint32
		for _, m := range cv.Members {
			if m < 0 || m >= agentCount {
				return nil, invalidf(
					"coalition member index %d out of range [0, %d)", m, agentCount)
			}
			bit := uint32(1) << uint(m)
			if mask&bit != 0 {
				return nil, invalidf("coalition %s repeats member %d", formatMembers(cv.Members), m)
			}
			mask |= bit
		}

		if _, dup := byMask[mask]; dup {
			return nil, invalidf("coalition %s specified more than once", formatMembers(cv.Members))
		}
		byMask[mask] = cv.Value
	}

	return byMask, nil
}

func maskToMembers(mask uint32, agentCount int) []int {
	members := make([]int, 0, agentCount)
	for i := 0; i < agentCount; i++ {
		if mask&(1<<uint(i)) != 0 {
			members = append(members, i)
		}
	}
	return members
}

func formatMembers(members []int) string {
	sorted := append([]int(nil), members...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, m := range sorted {
		parts[i] = fmt.Sprintf("%d", m)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
