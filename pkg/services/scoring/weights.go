package scoring

import "math"

// Weight table for the global aggregate. The values are fixed and sum
// to 1.0 exactly; WeightSum is validated by tests.
const (
	WeightTechnical     = 0.15
	WeightSemantic      = 0.20
	WeightLinkAuthority = 0.15
	WeightSchema        = 0.10
	WeightMonetization  = 0.10
	WeightTrustSignals  = 0.10
	WeightFreshness     = 0.05
	WeightShareability  = 0.05
	WeightExperience    = 0.10
)

// Weights returns the table keyed by dimension label, in no
// particular order.
func Weights() map[string]float64 {
	return map[string]float64{
		"technical":      WeightTechnical,
		"semantic":       WeightSemantic,
		"link_authority": WeightLinkAuthority,
		"schema":         WeightSchema,
		"monetization":   WeightMonetization,
		"trust_signals":  WeightTrustSignals,
		"freshness":      WeightFreshness,
		"shareability":   WeightShareability,
		"experience":     WeightExperience,
	}
}

// WeightSum returns the sum of all dimension weights.
func WeightSum() float64 {
	sum := 0.0
	for _, w := range Weights() {
		sum += w
	}
	return sum
}

// clampScore bounds a running score to [0,100] and rounds it.
func clampScore(v float64) int {
	return int(math.Round(math.Min(100, math.Max(0, v))))
}
