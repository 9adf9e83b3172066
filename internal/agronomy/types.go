package agronomy

import (
	"errors"
	"fmt"
)

// #region fields
// Regression targets in model output order. The order is part of the external contract.
const (
	GrainWeight = iota
	Gsw
	PhiPS2
	FertilizerScore
	NumTargets
)

// FieldNames labels the regression targets in output order.
var FieldNames = [NumTargets]string{"GrainWeight", "Gsw", "PhiPS2", "FertilizerScore"}

// #endregion fields

// #region stats
// Mean and Std are the training-set statistics the regression head was normalized with.
var (
	Mean = [NumTargets]float64{6355.478, 0.0580, 0.5530, 0.5786}
	Std  = [NumTargets]float64{2109.6545, 0.0307, 0.1059, 0.4678}
)

// #endregion stats

// #region farming-constants
const (
	PlantDensityPerAcre   = 1_200_000   // plants per acre
	MgPerQuintal          = 100_000_000 // milligrams in one quintal
	BaselineUreaKgPerAcre = 110         // urea needed at fertilizer score 0
	ScoreMin              = 0.0
	ScoreMax              = 1.0
)

// #endregion farming-constants

// #region traits
// Traits is the denormalized regression output in physical units.
type Traits struct {
	GrainWeight     float64 `json:"grain_weight" yaml:"grain_weight"` // mg per plant
	Gsw             float64 `json:"gsw" yaml:"gsw"`                   // stomatal conductance
	PhiPS2          float64 `json:"phips2" yaml:"phips2"`             // PSII quantum yield
	FertilizerScore float64 `json:"fertilizer_score" yaml:"fertilizer_score"`
}

// TraitsFrom names a denormalized vector.
func TraitsFrom(v [NumTargets]float64) Traits {
	return Traits{GrainWeight: v[GrainWeight], Gsw: v[Gsw], PhiPS2: v[PhiPS2], FertilizerScore: v[FertilizerScore]}
}

// Vector returns the traits in output order.
func (t Traits) Vector() [NumTargets]float64 {
	return [NumTargets]float64{t.GrainWeight, t.Gsw, t.PhiPS2, t.FertilizerScore}
}

// #endregion traits

// #region metrics
// Metrics are the farming quantities derived from traits and field inputs.
type Metrics struct {
	TotalProductionQuintals float64 `json:"total_production_quintals"`
	UreaRequiredKg          float64 `json:"urea_required_kg"`
	FertilizerCostInr       float64 `json:"fertilizer_cost_inr"`
}

// #endregion metrics

// #region errors
// ErrInvalidArgument is the sentinel for unusable agronomy inputs.
var ErrInvalidArgument = errors.New("invalid argument")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// #endregion errors
