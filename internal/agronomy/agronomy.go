package agronomy

import "math"

// #region denormalize
// Denormalize maps a normalized regression vector to physical units: raw*Std + Mean.
func Denormalize(raw [NumTargets]float64) [NumTargets]float64 {
	var out [NumTargets]float64
	for i := range out {
		out[i] = raw[i]*Std[i] + Mean[i]
	}
	return out
}

// Normalize is the inverse of Denormalize.
func Normalize(physical [NumTargets]float64) [NumTargets]float64 {
	var out [NumTargets]float64
	for i := range out {
		out[i] = (physical[i] - Mean[i]) / Std[i]
	}
	return out
}

// #endregion denormalize

// #region compute
// Compute derives production, urea and cost for a field.
//
// The fertilizer score is clamped to [0,1] because the regression head is
// unconstrained; the requirement therefore stays within [0, 110] kg per acre.
func Compute(grainWeight, fertilizerScore, fieldAreaAcres, fertilizerRateInr float64) (Metrics, error) {
	inputs := [...]struct {
		name string
		v    float64
	}{
		{"grain_weight", grainWeight},
		{"fertilizer_score", fertilizerScore},
		{"field_area", fieldAreaAcres},
		{"fertilizer_rate", fertilizerRateInr},
	}
	for _, in := range inputs {
		if math.IsNaN(in.v) || math.IsInf(in.v, 0) {
			return Metrics{}, invalid("%s must be finite, got %v", in.name, in.v)
		}
	}
	if fieldAreaAcres < 0 {
		return Metrics{}, invalid("field area must not be negative, got %v", fieldAreaAcres)
	}

	production := (grainWeight * PlantDensityPerAcre * fieldAreaAcres) / MgPerQuintal

	score := ClampScore(fertilizerScore)
	ureaPerAcre := (1 - score) * BaselineUreaKgPerAcre
	urea := ureaPerAcre * fieldAreaAcres

	return Metrics{
		TotalProductionQuintals: production,
		UreaRequiredKg:          urea,
		FertilizerCostInr:       urea * fertilizerRateInr,
	}, nil
}

// ComputeFor is Compute driven by a Traits value.
func ComputeFor(t Traits, fieldAreaAcres, fertilizerRateInr float64) (Metrics, error) {
	return Compute(t.GrainWeight, t.FertilizerScore, fieldAreaAcres, fertilizerRateInr)
}

// ClampScore bounds a fertilizer score to [ScoreMin, ScoreMax].
func ClampScore(s float64) float64 {
	return max(ScoreMin, min(ScoreMax, s))
}

// #endregion compute
