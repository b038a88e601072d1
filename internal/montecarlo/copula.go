package montecarlo

import (
	"fmt"
	"math"

	"agenttrust/internal/gametheory"
)

// Layer indices into the correlation matrix.
const (
	LayerRuntime     = 0
	LayerAttestation = 1
	LayerNetwork     = 2
)

// symmetryTolerance bounds the allowed asymmetry/diagonal error when
// validating a caller-supplied correlation matrix.
const symmetryTolerance = 1e-12

func computationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", gametheory.ErrComputationFailure, fmt.Sprintf(format, args...))
}

// CorrelatedDetectionParams extends the plain validation parameters with a
// 3x3 correlation matrix over the detection layers (runtime, attestation,
// network). The matrix must be symmetric, unit-diagonal, with entries in
// [0, 1], and positive-definite.
type CorrelatedDetectionParams struct {
	DetectionValidationParams
	Correlation [3][3]float64
}

// Validate checks the base parameters and the cheap matrix conditions.
// Positive-definiteness is only established by the Cholesky decomposition
// at run time.
func (p CorrelatedDetectionParams) Validate() error {
	if err := p.DetectionValidationParams.Validate(); err != nil {
		return err
	}
	for i := 0; i < 3; i++ {
		if math.Abs(p.Correlation[i][i]-1) > symmetryTolerance {
			return invalidf("correlation[%d][%d] must be 1, got %g", i, i, p.Correlation[i][i])
		}
		for j := 0; j < 3; j++ {
			v := p.Correlation[i][j]
			if v < 0 || v > 1 {
				return invalidf("correlation[%d][%d] must be in [0, 1], got %g", i, j, v)
			}
			if math.Abs(v-p.Correlation[j][i]) > symmetryTolerance {
				return invalidf(
					"correlation matrix must be symmetric: [%d][%d]=%g vs [%d][%d]=%g",
					i, j, v, j, i, p.Correlation[j][i])
			}
		}
	}
	return nil
}

// CorrelatedTierResult reports one tier under correlated layer failures,
// alongside the independent-draw rate for comparison.
type CorrelatedTierResult struct {
	Tier               gametheory.Tier
	TotalViolations    int
	DetectedViolations int
	CorrelatedRate     float64
	IndependentRate    float64
	RateDifference     float64 // independent minus correlated
	ConfidenceLow      float64 // 95% Wilson interval on the correlated rate
	ConfidenceHigh     float64
	ClaimedLow         float64
	ClaimedHigh        float64
	Passed             bool
}

// CorrelatedDetectionResult aggregates the copula run and the embedded
// independent comparison run.
type CorrelatedDetectionResult struct {
	Tiers       []CorrelatedTierResult
	Independent DetectionValidationResult
	AllPassed   bool
	Seed        uint64
}

// ValidateCorrelatedDetection repeats the detection validation with the
// three layer draws coupled through a Gaussian copula.
//
// Each violation draws two Box-Muller pairs of standard normals, takes
// the first three, correlates them through the Cholesky factor of the
// correlation matrix, and maps each through the standard normal CDF to
// obtain three correlated uniforms, one per layer. Detection logic is
// otherwise identical to the independent validator; the five-verifier
// network layer collapses to its combined rate since the copula assigns
// it a single uniform.
func ValidateCorrelatedDetection(p CorrelatedDetectionParams) (CorrelatedDetectionResult, error) {
	if err := p.Validate(); err != nil {
		return CorrelatedDetectionResult{}, err
	}

	chol, err := cholesky3(p.Correlation)
	if err != nil {
		return CorrelatedDetectionResult{}, err
	}

	independent, err := ValidateDetectionRates(p.DetectionValidationParams)
	if err != nil {
		return CorrelatedDetectionResult{}, err
	}

	seed := p.seedOrDefault()
	rng := newLCG(seed)
	interactions := p.SimulationRuns * p.AgentCount * p.InteractionsPerAgent

	result := CorrelatedDetectionResult{
		Tiers:       make([]CorrelatedTierResult, 0, len(validatedTiers)),
		Independent: independent,
		AllPassed:   true,
		Seed:        seed,
	}

	networkLayerRate := 1 - math.Pow(1-NetworkVerifierRate, NetworkVerifierCount)

	for ti, vt := range validatedTiers {
		var total, detected int
		for i := 0; i < interactions; i++ {
			if rng.Float64() >= p.ViolationProbability {
				continue
			}
			total++

			u := correlatedUniforms(rng, chol)
			switch {
			case u[LayerRuntime] < RuntimeLayerRate:
				detected++
			case vt.tier == gametheory.TierSolo:
				// runtime is the solo tier's only layer
			case u[LayerAttestation] < AttestationLayerRate:
				detected++
			case vt.tier == gametheory.TierNetwork && u[LayerNetwork] < networkLayerRate:
				detected++
			}
		}

		base := summarizeTier(vt.tier, total, detected, vt.low, vt.high)
		tr := CorrelatedTierResult{
			Tier:               base.Tier,
			TotalViolations:    base.TotalViolations,
			DetectedViolations: base.DetectedViolations,
			CorrelatedRate:     base.EmpiricalRate,
			IndependentRate:    independent.Tiers[ti].EmpiricalRate,
			RateDifference:     independent.Tiers[ti].EmpiricalRate - base.EmpiricalRate,
			ConfidenceLow:      base.ConfidenceLow,
			ConfidenceHigh:     base.ConfidenceHigh,
			ClaimedLow:         base.ClaimedLow,
			ClaimedHigh:        base.ClaimedHigh,
			Passed:             base.Passed,
		}
		result.AllPassed = result.AllPassed && tr.Passed
		result.Tiers = append(result.Tiers, tr)
	}

	return result, nil
}

// correlatedUniforms draws three correlated U(0,1) values: two Box-Muller
// pairs of independent standard normals, the first three correlated by
// the Cholesky factor, each mapped through the normal CDF.
func correlatedUniforms(rng *lcg, chol [3][3]float64) [3]float64 {
	z0, z1 := boxMuller(rng)
	z2, _ := boxMuller(rng)
	z := [3]float64{z0, z1, z2}

	var u [3]float64
	for i := 0; i < 3; i++ {
		var x float64
		for j := 0; j <= i; j++ {
			x += chol[i][j] * z[j]
		}
		u[i] = normalCDF(x)
	}
	return u
}

// boxMuller converts two uniform draws into a pair of independent
// standard normals.
func boxMuller(rng *lcg) (float64, float64) {
	u1 := rng.Float64()
	u2 := rng.Float64()
	if u1 < 1e-12 {
		// log(0) guard; the LCG can emit exactly 0.
		u1 = 1e-12
	}
	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	return r * math.Cos(theta), r * math.Sin(theta)
}

// cholesky3 decomposes a 3x3 symmetric matrix into its lower-triangular
// Cholesky factor. A non-positive pivot means the matrix is not
// positive-definite despite passing the cheaper symmetry/range checks;
// that is a computation failure, not an input validation error.
func cholesky3(m [3][3]float64) ([3][3]float64, error) {
	var l [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j <= i; j++ {
			sum := m[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum <= 0 {
					return l, computationf(
						"correlation matrix is not positive-definite: pivot %d is %g", i, sum)
				}
				l[i][j] = math.Sqrt(sum)
			} else {
				l[i][j] = sum / l[j][j]
			}
		}
	}
	return l, nil
}

// Abramowitz-Stegun 7.1.25 erf constants, |error| <= 2.5e-5.
const (
	asP  = 0.47047
	asA1 = 0.3480242
	asA2 = -0.0958798
	asA3 = 0.7478556
)

// normalCDF evaluates the standard normal CDF via the Abramowitz-Stegun
// rational erf approximation.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + erfAS(x/math.Sqrt2))
}

func erfAS(x float64) float64 {
	if x < 0 {
		return -erfAS(-x)
	}
	t := 1 / (1 + asP*x)
	poly := t * (asA1 + t*(asA2+t*asA3))
	return 1 - poly*math.Exp(-x*x)
}
