package history

import (
	"errors"
	"time"

	"github.com/hyperleaf/hyperleaf-go/internal/agronomy"
	"github.com/hyperleaf/hyperleaf-go/internal/predict"
)

// #region record
// Record is one saved prediction.
type Record struct {
	ID         string           `json:"id"`
	Owner      string           `json:"owner"`
	ImagePath  string           `json:"image_path"`
	Cultivar   string           `json:"cultivar_prediction"`
	Confidence float64          `json:"confidence"`
	Traits     agronomy.Traits  `json:"traits"`
	Field      predict.Field    `json:"field"`
	Metrics    agronomy.Metrics `json:"metrics"`
	CreatedAt  time.Time        `json:"created_at"`

	// Probabilities and MeanSpectrum are nil for rows written without them.
	Probabilities []float64 `json:"cultivar_probs,omitempty"`
	MeanSpectrum  []float64 `json:"spectral_data,omitempty"`
}

// FromResult builds an unsaved record from a prediction.
func FromResult(res predict.Result, owner, imagePath string) Record {
	return Record{
		Owner:         owner,
		ImagePath:     imagePath,
		Cultivar:      res.Cultivar,
		Confidence:    res.Confidence,
		Traits:        res.Traits,
		Field:         res.Field,
		Metrics:       res.Metrics,
		Probabilities: append([]float64(nil), res.Probabilities[:]...),
		MeanSpectrum:  append([]float64(nil), res.MeanSpectrum...),
	}
}

// #endregion record

// #region errors
// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("prediction not found")

// #endregion errors
