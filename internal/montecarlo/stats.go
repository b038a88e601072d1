package montecarlo

import (
	"math"
	"sort"
)

// wilsonZ95 is the two-sided 97.5% standard normal quantile used for the
// 95% Wilson score interval.
const wilsonZ95 = 1.959963984540054

// WilsonInterval computes the 95% Wilson score confidence interval for a
// binomial proportion with the given success and trial counts.
//
// Preferred over the normal approximation because it stays inside [0, 1]
// and remains well-behaved near 0% and 100%. With zero trials the
// interval is exactly [0, 1]: no evidence constrains nothing.
func WilsonInterval(successes, trials int) (lo, hi float64) {
	if trials == 0 {
		return 0, 1
	}

	n := float64(trials)
	p := float64(successes) / n
	z := wilsonZ95
	z2 := z * z

	denom := 1 + z2/n
	center := (p + z2/(2*n)) / denom
	half := z * math.Sqrt(p*(1-p)/n+z2/(4*n*n)) / denom

	lo = math.Max(0, center-half)
	hi = math.Min(1, center+half)
	return lo, hi
}

// Percentile returns the nearest-rank percentile of values. p is in
// [0, 100]. The input is not modified. An empty input yields 0.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}
