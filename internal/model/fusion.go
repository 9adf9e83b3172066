package model

import "github.com/hyperleaf/hyperleaf-go/internal/weights"

// #region gated-fusion
// gatedFusion weights the concatenated branch embeddings with a learned,
// input-dependent sigmoid gate before projecting to the shared width.
type gatedFusion struct {
	gate   *linear
	shared *linear
}

func loadFusion(set *weights.Set, a Architecture) (*gatedFusion, error) {
	gate, err := loadLinear(set, "gate", 2*a.Hidden, 2*a.Hidden, true)
	if err != nil {
		return nil, err
	}
	shared, err := loadLinear(set, "fc_shared", 2*a.Hidden, a.Dim, true)
	if err != nil {
		return nil, err
	}
	return &gatedFusion{gate: gate, shared: shared}, nil
}

func (f *gatedFusion) forward(spectral, spatial []float64) []float64 {
	x := make([]float64, 0, len(spectral)+len(spatial))
	x = append(x, spectral...)
	x = append(x, spatial...)

	g := f.gate.forward(x)
	for i := range x {
		x[i] *= sigmoid(g[i])
	}
	out := f.shared.forward(x)
	relu(out)
	return out
}

// #endregion gated-fusion
