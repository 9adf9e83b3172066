package model

import "fmt"

// #region architecture
// Architecture fixes every parameter shape of the fusion network.
// Weights trained for one architecture cannot be loaded into another.
type Architecture struct {
	Bands         int    // spectral channels of the input cube
	Hidden        int    // width of each branch embedding
	SpatialWidths [2]int // channels after the first two spatial convolutions
	Dim           int    // fused embedding width
	Depth         int    // refinement blocks
	Heads         int    // attention heads per block
	MLPRatio      int    // feed-forward expansion factor
	Classes       int
	Targets       int
}

// DefaultArchitecture is the published FusionNet layout.
func DefaultArchitecture() Architecture {
	return Architecture{
		Bands:         204,
		Hidden:        128,
		SpatialWidths: [2]int{32, 64},
		Dim:           256,
		Depth:         2,
		Heads:         8,
		MLPRatio:      4,
		Classes:       4,
		Targets:       4,
	}
}

// HeadDim is the per-head attention width.
func (a Architecture) HeadDim() int {
	return a.Dim / a.Heads
}

// Validate rejects architectures that cannot be built.
func (a Architecture) Validate() error {
	sizes := []struct {
		name string
		v    int
	}{
		{"bands", a.Bands}, {"hidden", a.Hidden},
		{"spatial_width_1", a.SpatialWidths[0]}, {"spatial_width_2", a.SpatialWidths[1]},
		{"dim", a.Dim}, {"depth", a.Depth}, {"heads", a.Heads}, {"mlp_ratio", a.MLPRatio},
		{"classes", a.Classes}, {"targets", a.Targets},
	}
	for _, s := range sizes {
		if s.v <= 0 {
			return fmt.Errorf("architecture: %s must be positive, got %d", s.name, s.v)
		}
	}
	if a.Dim%a.Heads != 0 {
		return fmt.Errorf("architecture: dim %d not divisible by %d heads", a.Dim, a.Heads)
	}
	return nil
}

// #endregion architecture

// #region kernels
const (
	spectralKernel1 = 5
	spectralKernel2 = 3
	spatialKernel   = 3
)

// #endregion kernels

// #region output
// Output is the raw result of one forward pass.
type Output struct {
	Logits     []float64 // one score per class, before softmax
	Regression []float64 // normalized regression targets
}

// #endregion output
