package replay

import (
	"fmt"

	"github.com/hyperleaf/hyperleaf-go/internal/agronomy"
	"github.com/hyperleaf/hyperleaf-go/internal/history"
)

// #region export

// FromRecords builds a fixture from saved predictions. Each case expects the
// metrics that were stored when the prediction was made, so replaying it
// detects drift in the calculator since then. Records are taken in the given
// order.
func FromRecords(description string, records []history.Record) *Fixture {
	f := &Fixture{Description: description, Cases: make([]Case, 0, len(records))}
	for _, rec := range records {
		name := rec.ID
		if len(name) > 8 {
			name = name[:8]
		}
		f.Cases = append(f.Cases, Case{
			Name:              fmt.Sprintf("%s_%s", rec.Cultivar, name),
			GrainWeight:       rec.Traits.GrainWeight,
			FertilizerScore:   rec.Traits.FertilizerScore,
			FieldAreaAcres:    rec.Field.AreaAcres,
			FertilizerRateInr: rec.Field.FertilizerRateInr,
			Expected: agronomy.Metrics{
				TotalProductionQuintals: rec.Metrics.TotalProductionQuintals,
				UreaRequiredKg:          rec.Metrics.UreaRequiredKg,
				FertilizerCostInr:       rec.Metrics.FertilizerCostInr,
			},
		})
	}
	return f
}

// #endregion export
