package replay

import "github.com/hyperleaf/hyperleaf-go/internal/agronomy"

// #region fixture-types

// Fixture is the top-level JSON structure for an agronomy replay fixture.
type Fixture struct {
	Description string `json:"description"`
	Cases       []Case `json:"cases"`
}

// Case is one calculator input with its expected metrics.
type Case struct {
	Name              string           `json:"name"`
	GrainWeight       float64          `json:"grain_weight"`
	FertilizerScore   float64          `json:"fertilizer_score"`
	FieldAreaAcres    float64          `json:"field_area_acres"`
	FertilizerRateInr float64          `json:"fertilizer_rate_inr"`
	Expected          agronomy.Metrics `json:"expected"`
	Tolerance         float64          `json:"tolerance,omitempty"`
	ExpectError       bool             `json:"expect_error,omitempty"`
}

// DefaultTolerance applies when a case leaves tolerance unset.
const DefaultTolerance = 1e-6

// #endregion fixture-types

// #region result-types

// CaseResult is the outcome of replaying one case.
type CaseResult struct {
	Name   string
	Pass   bool
	Got    agronomy.Metrics
	Err    error
	Reason string
}

// Summary aggregates a replay run.
type Summary struct {
	Total  int
	Passed int
	Failed int
}

// #endregion result-types
