package history

import "github.com/hyperleaf/hyperleaf-go/internal/predict"

// #region reconstruct
// ReconstructProbabilities approximates a probability vector for records saved
// without one. The predicted cultivar gets its confidence (0.9 when the stored
// confidence is zero) and the rest is split evenly. An unknown cultivar yields
// all zeros.
func ReconstructProbabilities(cultivar string, confidence float64) []float64 {
	probs := make([]float64, predict.NumClasses)
	idx := -1
	for i, c := range predict.Cultivars {
		if c == cultivar {
			idx = i
			break
		}
	}
	if idx < 0 {
		return probs
	}
	if confidence == 0 {
		confidence = 0.9
	}
	probs[idx] = confidence
	rest := (1 - confidence) / float64(predict.NumClasses-1)
	for i := range probs {
		if i != idx {
			probs[i] = rest
		}
	}
	return probs
}

// ProbabilityVector returns the stored probabilities or a reconstruction.
func (r Record) ProbabilityVector() []float64 {
	if len(r.Probabilities) == predict.NumClasses {
		return r.Probabilities
	}
	return ReconstructProbabilities(r.Cultivar, r.Confidence)
}

// #endregion reconstruct
