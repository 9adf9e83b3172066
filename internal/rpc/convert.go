package rpc

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hyperleaf/hyperleaf-go/internal/history"
	"github.com/hyperleaf/hyperleaf-go/internal/predict"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region struct-codec
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("build struct: %w", err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("read struct: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	return nil
}

// #endregion struct-codec

// #region conversions
func predictionFromResult(res predict.Result) Prediction {
	return Prediction{
		Cultivar:                res.Cultivar,
		Confidence:              res.Confidence,
		GrainWeight:             res.Traits.GrainWeight,
		Gsw:                     res.Traits.Gsw,
		PhiPS2:                  res.Traits.PhiPS2,
		FertilizerScore:         res.Traits.FertilizerScore,
		FieldAreaAcres:          res.Field.AreaAcres,
		FertilizerRateInr:       res.Field.FertilizerRateInr,
		UreaRequiredKg:          res.Metrics.UreaRequiredKg,
		FertilizerCostInr:       res.Metrics.FertilizerCostInr,
		TotalProductionQuintals: res.Metrics.TotalProductionQuintals,
		CultivarProbs:           append([]float64(nil), res.Probabilities[:]...),
		SpectralData:            res.MeanSpectrum,
		Rescaled:                res.Rescaled,
	}
}

func predictionFromRecord(rec history.Record) Prediction {
	return Prediction{
		ID:                      rec.ID,
		Owner:                   rec.Owner,
		ImagePath:               rec.ImagePath,
		Cultivar:                rec.Cultivar,
		Confidence:              rec.Confidence,
		GrainWeight:             rec.Traits.GrainWeight,
		Gsw:                     rec.Traits.Gsw,
		PhiPS2:                  rec.Traits.PhiPS2,
		FertilizerScore:         rec.Traits.FertilizerScore,
		FieldAreaAcres:          rec.Field.AreaAcres,
		FertilizerRateInr:       rec.Field.FertilizerRateInr,
		UreaRequiredKg:          rec.Metrics.UreaRequiredKg,
		FertilizerCostInr:       rec.Metrics.FertilizerCostInr,
		TotalProductionQuintals: rec.Metrics.TotalProductionQuintals,
		CultivarProbs:           rec.ProbabilityVector(),
		SpectralData:            rec.MeanSpectrum,
		CreatedAt:               rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// #endregion conversions
