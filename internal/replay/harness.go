package replay

import (
	"errors"
	"fmt"
	"math"

	"github.com/hyperleaf/hyperleaf-go/internal/agronomy"
)

// #region replay

// Run evaluates every case against the agronomy calculator, in order.
func Run(f *Fixture) []CaseResult {
	results := make([]CaseResult, 0, len(f.Cases))
	for _, c := range f.Cases {
		results = append(results, runCase(c))
	}
	return results
}

func runCase(c Case) CaseResult {
	res := CaseResult{Name: c.Name}
	got, err := agronomy.Compute(c.GrainWeight, c.FertilizerScore, c.FieldAreaAcres, c.FertilizerRateInr)
	res.Got, res.Err = got, err

	if c.ExpectError {
		if errors.Is(err, agronomy.ErrInvalidArgument) {
			res.Pass = true
		} else {
			res.Reason = fmt.Sprintf("expected invalid argument, got %v", err)
		}
		return res
	}
	if err != nil {
		res.Reason = err.Error()
		return res
	}

	tol := c.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	for _, chk := range []struct {
		name      string
		got, want float64
	}{
		{"total_production_quintals", got.TotalProductionQuintals, c.Expected.TotalProductionQuintals},
		{"urea_required_kg", got.UreaRequiredKg, c.Expected.UreaRequiredKg},
		{"fertilizer_cost_inr", got.FertilizerCostInr, c.Expected.FertilizerCostInr},
	} {
		// Tolerance is absolute up to magnitude 1 and relative above it.
		if math.Abs(chk.got-chk.want) > tol*math.Max(1, math.Abs(chk.want)) {
			res.Reason = fmt.Sprintf("%s: got %v, want %v", chk.name, chk.got, chk.want)
			return res
		}
	}
	res.Pass = true
	return res
}

// Summarize counts passes and failures.
func Summarize(results []CaseResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Pass {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

// #endregion replay
