package predict

import (
	"errors"

	"github.com/hyperleaf/hyperleaf-go/internal/agronomy"
)

// #region classes
// NumClasses is the number of cultivars the classifier scores.
const NumClasses = 4

// Cultivars labels the class logits in output order. The order is part of the external contract.
var Cultivars = [NumClasses]string{"Heerup", "Kvium", "Rembrandt", "Sheriff"}

// #endregion classes

// #region errors
// ErrModelNotLoaded is returned when inference is requested before weights are bound.
var ErrModelNotLoaded = errors.New("model not loaded")

// #endregion errors

// #region field
// Field carries the caller-supplied context for agronomy metrics.
type Field struct {
	AreaAcres         float64 `json:"field_area_acres"`
	FertilizerRateInr float64 `json:"fertilizer_rate_inr"`
}

// #endregion field

// #region inference
// Inference is the model output for one cube, before field context is applied.
type Inference struct {
	Cultivar      string                       `json:"cultivar_prediction"`
	ClassIndex    int                          `json:"class_index"`
	Confidence    float64                      `json:"confidence"`
	Probabilities [NumClasses]float64          `json:"cultivar_probs"`
	Logits        [NumClasses]float64          `json:"logits"`
	RegressionRaw [agronomy.NumTargets]float64 `json:"regression_raw"`
	Traits        agronomy.Traits              `json:"traits"`
	MeanSpectrum  []float64                    `json:"spectral_data"`
	Rescaled      bool                         `json:"rescaled"`
}

// #endregion inference

// #region result
// Result is a full prediction: inference plus farming metrics for a field.
type Result struct {
	Inference
	Field   Field            `json:"field"`
	Metrics agronomy.Metrics `json:"metrics"`
}

// #endregion result

// #region regression
// RegressionFields labels the denormalized regression outputs in order.
var RegressionFields = agronomy.FieldNames

// #endregion regression
